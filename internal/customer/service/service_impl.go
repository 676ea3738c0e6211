package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/colorworks/lackwerk/internal/audit/domain"
	"github.com/colorworks/lackwerk/internal/customer/domain"
	"github.com/colorworks/lackwerk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Audit auditdomain.Service
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	audit auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		repo:  p.Repo,
		audit: p.Audit,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email != "" && !strings.Contains(email, "@") {
		return domain.Customer{}, domain.ErrInvalidEmail
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		ID:         s.genID.Generate(),
		Name:       name,
		Email:      email,
		Phone:      strings.TrimSpace(req.Phone),
		Street:     strings.TrimSpace(req.Street),
		PostalCode: strings.TrimSpace(req.PostalCode),
		City:       strings.TrimSpace(req.City),
		Metadata:   datatypes.JSONMap{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, err
	}

	customerID := customer.ID.String()
	if err := s.audit.AuditLog(ctx, "user", nil, "customer.created", "customer", &customerID, map[string]any{
		"name": customer.Name,
	}); err != nil {
		s.log.Warn("audit log failed", zap.Error(err))
	}

	return customer, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Customer{}, err
	}

	customer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Customer{}, domain.ErrInvalidName
		}
		customer.Name = name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email != "" && !strings.Contains(email, "@") {
			return domain.Customer{}, domain.ErrInvalidEmail
		}
		customer.Email = email
	}
	if req.Phone != nil {
		customer.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Street != nil {
		customer.Street = strings.TrimSpace(*req.Street)
	}
	if req.PostalCode != nil {
		customer.PostalCode = strings.TrimSpace(*req.PostalCode)
	}
	if req.City != nil {
		customer.City = strings.TrimSpace(*req.City)
	}
	customer.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, customer); err != nil {
		return domain.Customer{}, err
	}

	customerID := customer.ID.String()
	if err := s.audit.AuditLog(ctx, "user", nil, "customer.updated", "customer", &customerID, nil); err != nil {
		s.log.Warn("audit log failed", zap.Error(err))
	}

	return *customer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (domain.ListCustomerResponse, error) {
	filter := domain.ListCustomerFilter{
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		City:        strings.TrimSpace(req.City),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListCustomerResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(customer *domain.Customer) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        customer.ID.String(),
			CreatedAt: customer.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		customers = append(customers, *item)
	}

	resp := domain.ListCustomerResponse{Customers: customers}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetCustomerRequest) (domain.Customer, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Customer{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
