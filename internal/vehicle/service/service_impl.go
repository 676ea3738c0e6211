package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/colorworks/lackwerk/internal/customer/domain"
	"github.com/colorworks/lackwerk/internal/vehicle/domain"
	"github.com/colorworks/lackwerk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Customers customerdomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	customers customerdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("vehicle.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		customers: p.Customers,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateVehicleRequest) (domain.Vehicle, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.Vehicle{}, domain.ErrInvalidCustomer
	}

	owner, err := s.customers.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.Vehicle{}, err
	}
	if owner == nil {
		return domain.Vehicle{}, domain.ErrInvalidCustomer
	}

	if req.OdometerKM < 0 {
		return domain.Vehicle{}, domain.ErrInvalidOdometer
	}

	now := time.Now().UTC()
	vehicle := domain.Vehicle{
		ID:                s.genID.Generate(),
		CustomerID:        customerID,
		Make:              strings.TrimSpace(req.Make),
		Model:             strings.TrimSpace(req.Model),
		VIN:               strings.ToUpper(strings.TrimSpace(req.VIN)),
		LicensePlate:      strings.ToUpper(strings.TrimSpace(req.LicensePlate)),
		FirstRegistration: req.FirstRegistration,
		OdometerKM:        req.OdometerKM,
		PaintCode:         strings.TrimSpace(req.PaintCode),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Insert(ctx, s.db, &vehicle); err != nil {
		return domain.Vehicle{}, err
	}

	return vehicle, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateVehicleRequest) (domain.Vehicle, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Vehicle{}, err
	}

	vehicle, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Vehicle{}, err
	}
	if vehicle == nil {
		return domain.Vehicle{}, domain.ErrNotFound
	}

	if req.Make != nil {
		vehicle.Make = strings.TrimSpace(*req.Make)
	}
	if req.Model != nil {
		vehicle.Model = strings.TrimSpace(*req.Model)
	}
	if req.VIN != nil {
		vehicle.VIN = strings.ToUpper(strings.TrimSpace(*req.VIN))
	}
	if req.LicensePlate != nil {
		vehicle.LicensePlate = strings.ToUpper(strings.TrimSpace(*req.LicensePlate))
	}
	if req.FirstRegistration != nil {
		vehicle.FirstRegistration = *req.FirstRegistration
	}
	if req.OdometerKM != nil {
		if *req.OdometerKM < 0 {
			return domain.Vehicle{}, domain.ErrInvalidOdometer
		}
		vehicle.OdometerKM = *req.OdometerKM
	}
	if req.PaintCode != nil {
		vehicle.PaintCode = strings.TrimSpace(*req.PaintCode)
	}
	vehicle.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, vehicle); err != nil {
		return domain.Vehicle{}, err
	}

	return *vehicle, nil
}

func (s *Service) List(ctx context.Context, req domain.ListVehicleRequest) (domain.ListVehicleResponse, error) {
	filter := domain.ListVehicleFilter{
		CustomerID:   strings.TrimSpace(req.CustomerID),
		LicensePlate: strings.ToUpper(strings.TrimSpace(req.LicensePlate)),
		VIN:          strings.ToUpper(strings.TrimSpace(req.VIN)),
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
		return domain.ListVehicleResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(vehicle *domain.Vehicle) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        vehicle.ID.String(),
			CreatedAt: vehicle.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	vehicles := make([]domain.Vehicle, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		vehicles = append(vehicles, *item)
	}

	resp := domain.ListVehicleResponse{Vehicles: vehicles}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetVehicleRequest) (domain.Vehicle, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Vehicle{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Vehicle{}, err
	}
	if item == nil {
		return domain.Vehicle{}, domain.ErrNotFound
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
