package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/colorworks/lackwerk/internal/audit/domain"
	"github.com/colorworks/lackwerk/internal/clock"
	customerdomain "github.com/colorworks/lackwerk/internal/customer/domain"
	"github.com/colorworks/lackwerk/internal/pricing"
	"github.com/colorworks/lackwerk/internal/trade/domain"
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
	Clock     clock.Clock
	Repo      domain.Repository
	Customers customerdomain.Repository
	Audit     auditdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	customers customerdomain.Repository
	audit     auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("trade.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		customers: p.Customers,
		audit:     p.Audit,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTradeRequest) (domain.VehicleTrade, error) {
	if req.Type != domain.TypePurchase && req.Type != domain.TypeSale {
		return domain.VehicleTrade{}, domain.ErrInvalidType
	}
	if req.PurchasePrice.IsNegative() || req.SalePrice.IsNegative() {
		return domain.VehicleTrade{}, pricing.ErrInvalidAmount
	}

	counterparty, err := s.resolveCounterparty(ctx, req.CounterpartyCustomerID)
	if err != nil {
		return domain.VehicleTrade{}, err
	}

	now := s.clock.Now()
	trade := domain.VehicleTrade{
		ID:                     s.genID.Generate(),
		Type:                   req.Type,
		Make:                   strings.TrimSpace(req.Make),
		Model:                  strings.TrimSpace(req.Model),
		VIN:                    strings.ToUpper(strings.TrimSpace(req.VIN)),
		LicensePlate:           strings.ToUpper(strings.TrimSpace(req.LicensePlate)),
		FirstRegistration:      req.FirstRegistration,
		OdometerKM:             req.OdometerKM,
		Condition:              strings.TrimSpace(req.Condition),
		CounterpartyCustomerID: counterparty,
		PurchasePrice:          pricing.Round2(req.PurchasePrice),
		SalePrice:              pricing.Round2(req.SalePrice),
		Status:                 domain.StatusOpen,
		Remarks:                strings.TrimSpace(req.Remarks),
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	trade.Profit = pricing.Round2(trade.SalePrice.Sub(trade.PurchasePrice))

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.repo.NextTradeNumber(ctx, tx)
		if err != nil {
			return err
		}
		trade.TradeNumber = number
		return s.repo.Insert(ctx, tx, &trade)
	})
	if err != nil {
		return domain.VehicleTrade{}, err
	}

	tradeID := trade.ID.String()
	if err := s.audit.AuditLog(ctx, "user", nil, "trade.created", "vehicle_trade", &tradeID, map[string]any{
		"trade_number": trade.TradeNumber,
		"type":         string(trade.Type),
	}); err != nil {
		s.log.Warn("audit log failed", zap.Error(err))
	}

	return trade, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateTradeRequest) (domain.VehicleTrade, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.VehicleTrade{}, err
	}

	var updated domain.VehicleTrade
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trade, err := s.repo.FindByID(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if trade == nil {
			return domain.ErrNotFound
		}
		if err := domain.Lifecycle.Guard(trade.Status); err != nil {
			return err
		}

		if req.Make != nil {
			trade.Make = strings.TrimSpace(*req.Make)
		}
		if req.Model != nil {
			trade.Model = strings.TrimSpace(*req.Model)
		}
		if req.VIN != nil {
			trade.VIN = strings.ToUpper(strings.TrimSpace(*req.VIN))
		}
		if req.LicensePlate != nil {
			trade.LicensePlate = strings.ToUpper(strings.TrimSpace(*req.LicensePlate))
		}
		if req.FirstRegistration != nil {
			trade.FirstRegistration = *req.FirstRegistration
		}
		if req.OdometerKM != nil {
			trade.OdometerKM = *req.OdometerKM
		}
		if req.Condition != nil {
			trade.Condition = strings.TrimSpace(*req.Condition)
		}
		if req.CounterpartyCustomerID != nil {
			counterparty, err := s.resolveCounterparty(ctx, *req.CounterpartyCustomerID)
			if err != nil {
				return err
			}
			trade.CounterpartyCustomerID = counterparty
		}
		if req.PurchasePrice != nil {
			if req.PurchasePrice.IsNegative() {
				return pricing.ErrInvalidAmount
			}
			trade.PurchasePrice = pricing.Round2(*req.PurchasePrice)
		}
		if req.SalePrice != nil {
			if req.SalePrice.IsNegative() {
				return pricing.ErrInvalidAmount
			}
			trade.SalePrice = pricing.Round2(*req.SalePrice)
		}
		if req.Remarks != nil {
			trade.Remarks = strings.TrimSpace(*req.Remarks)
		}

		// Profit is always rederived from the prices, never hand-edited.
		trade.Profit = pricing.Round2(trade.SalePrice.Sub(trade.PurchasePrice))
		trade.UpdatedAt = s.clock.Now()

		if err := s.repo.Update(ctx, tx, trade); err != nil {
			return err
		}

		updated = *trade
		return nil
	})
	if err != nil {
		return domain.VehicleTrade{}, err
	}

	tradeID := updated.ID.String()
	if err := s.audit.AuditLog(ctx, "user", nil, "trade.updated", "vehicle_trade", &tradeID, nil); err != nil {
		s.log.Warn("audit log failed", zap.Error(err))
	}

	return updated, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (domain.VehicleTrade, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.VehicleTrade{}, err
	}

	var updated domain.VehicleTrade
	var previous domain.Status
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trade, err := s.repo.FindByID(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if trade == nil {
			return domain.ErrNotFound
		}

		if err := domain.Lifecycle.Transition(trade.Status, req.Target, req.Confirmed); err != nil {
			return err
		}

		previous = trade.Status
		trade.Status = req.Target
		trade.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, tx, trade); err != nil {
			return err
		}

		updated = *trade
		return nil
	})
	if err != nil {
		return domain.VehicleTrade{}, err
	}

	tradeID := updated.ID.String()
	if err := s.audit.AuditLog(ctx, "user", nil, "trade.status_changed", "vehicle_trade", &tradeID, map[string]any{
		"from": string(previous),
		"to":   string(updated.Status),
	}); err != nil {
		s.log.Warn("audit log failed", zap.Error(err))
	}

	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetTradeRequest) (domain.VehicleTrade, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.VehicleTrade{}, err
	}

	trade, err := s.repo.FindByID(ctx, s.db, id, false)
	if err != nil {
		return domain.VehicleTrade{}, err
	}
	if trade == nil {
		return domain.VehicleTrade{}, domain.ErrNotFound
	}

	return *trade, nil
}

func (s *Service) List(ctx context.Context, req domain.ListTradeRequest) (domain.ListTradeResponse, error) {
	filter := domain.ListTradeFilter{
		Type:   strings.TrimSpace(req.Type),
		Status: strings.TrimSpace(req.Status),
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
		return domain.ListTradeResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(trade *domain.VehicleTrade) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        trade.ID.String(),
			CreatedAt: trade.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	trades := make([]domain.VehicleTrade, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		trades = append(trades, *item)
	}

	resp := domain.ListTradeResponse{Trades: trades}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) resolveCounterparty(ctx context.Context, raw string) (*snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidCustomer
	}
	customer, err := s.customers.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrInvalidCustomer
	}
	return &id, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
