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
	settingsdomain "github.com/colorworks/lackwerk/internal/settings/domain"
	vehicledomain "github.com/colorworks/lackwerk/internal/vehicle/domain"
	"github.com/colorworks/lackwerk/internal/workorder/domain"
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
	Vehicles  vehicledomain.Repository
	Settings  settingsdomain.Service
	Audit     auditdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	customers customerdomain.Repository
	vehicles  vehicledomain.Repository
	settings  settingsdomain.Service
	audit     auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("workorder.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		customers: p.Customers,
		vehicles:  p.Vehicles,
		settings:  p.Settings,
		audit:     p.Audit,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateWorkOrderRequest) (domain.WorkOrder, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.WorkOrder{}, domain.ErrInvalidCustomer
	}
	vehicleID, err := snowflake.ParseString(strings.TrimSpace(req.VehicleID))
	if err != nil || vehicleID == 0 {
		return domain.WorkOrder{}, domain.ErrInvalidVehicle
	}

	owner, err := s.customers.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.WorkOrder{}, err
	}
	if owner == nil {
		return domain.WorkOrder{}, domain.ErrInvalidCustomer
	}
	vehicle, err := s.vehicles.FindByID(ctx, s.db, vehicleID)
	if err != nil {
		return domain.WorkOrder{}, err
	}
	if vehicle == nil {
		return domain.WorkOrder{}, domain.ErrInvalidVehicle
	}

	snapshot, err := s.settings.Snapshot(ctx)
	if err != nil {
		return domain.WorkOrder{}, err
	}

	now := s.clock.Now()
	orderDate := now
	if req.OrderDate != nil {
		orderDate = req.OrderDate.UTC()
	}

	order := domain.WorkOrder{
		ID:              s.genID.Generate(),
		CustomerID:      customerID,
		VehicleID:       vehicleID,
		OrderDate:       orderDate,
		Status:          domain.StatusOpen,
		TravelFeeActive: req.TravelFeeActive,
		ExpressActive:   req.ExpressActive,
		WeekendActive:   req.WeekendActive,
		Remarks:         strings.TrimSpace(req.Remarks),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	order.Items = s.buildItems(order.ID, req.Items, now)

	totals, err := pricing.PriceWorkOrder(order.LineItems(), order.SurchargeFlags(), snapshot.WorkOrderRates())
	if err != nil {
		return domain.WorkOrder{}, err
	}
	applyTotals(&order, totals)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.repo.NextOrderNumber(ctx, tx)
		if err != nil {
			return err
		}
		order.OrderNumber = number
		if err := s.repo.Insert(ctx, tx, &order); err != nil {
			return err
		}
		return s.repo.ReplaceItems(ctx, tx, order.ID, order.Items)
	})
	if err != nil {
		return domain.WorkOrder{}, err
	}

	orderID := order.ID.String()
	if err := s.audit.AuditLog(ctx, "user", nil, "work_order.created", "work_order", &orderID, map[string]any{
		"order_number": order.OrderNumber,
	}); err != nil {
		s.log.Warn("audit log failed", zap.Error(err))
	}

	return order, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateWorkOrderRequest) (domain.WorkOrder, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.WorkOrder{}, err
	}

	snapshot, err := s.settings.Snapshot(ctx)
	if err != nil {
		return domain.WorkOrder{}, err
	}

	var updated domain.WorkOrder
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindByID(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if err := domain.Lifecycle.Guard(order.Status); err != nil {
			return err
		}

		now := s.clock.Now()
		if req.OrderDate != nil {
			order.OrderDate = req.OrderDate.UTC()
		}
		if req.TravelFeeActive != nil {
			order.TravelFeeActive = *req.TravelFeeActive
		}
		if req.ExpressActive != nil {
			order.ExpressActive = *req.ExpressActive
		}
		if req.WeekendActive != nil {
			order.WeekendActive = *req.WeekendActive
		}
		if req.Remarks != nil {
			order.Remarks = strings.TrimSpace(*req.Remarks)
		}

		if req.ReplaceItems {
			order.Items = s.buildItems(order.ID, req.Items, now)
		} else {
			items, err := s.repo.FindItems(ctx, tx, order.ID)
			if err != nil {
				return err
			}
			order.Items = items
		}

		totals, err := pricing.PriceWorkOrder(order.LineItems(), order.SurchargeFlags(), snapshot.WorkOrderRates())
		if err != nil {
			return err
		}
		applyTotals(order, totals)
		order.UpdatedAt = now

		if err := s.repo.Update(ctx, tx, order); err != nil {
			return err
		}
		if req.ReplaceItems {
			if err := s.repo.ReplaceItems(ctx, tx, order.ID, order.Items); err != nil {
				return err
			}
		}

		updated = *order
		return nil
	})
	if err != nil {
		return domain.WorkOrder{}, err
	}

	orderID := updated.ID.String()
	if err := s.audit.AuditLog(ctx, "user", nil, "work_order.updated", "work_order", &orderID, nil); err != nil {
		s.log.Warn("audit log failed", zap.Error(err))
	}

	return updated, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (domain.WorkOrder, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.WorkOrder{}, err
	}

	var updated domain.WorkOrder
	var previous domain.Status
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindByID(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}

		if err := domain.Lifecycle.Transition(order.Status, req.Target, req.Confirmed); err != nil {
			return err
		}

		// Leaving Open finalizes the order: it must carry at least one
		// priced item by then.
		if order.Status == domain.StatusOpen {
			items, err := s.repo.FindItems(ctx, tx, order.ID)
			if err != nil {
				return err
			}
			order.Items = items
			if err := pricing.CheckWorkOrderFinalizable(order.LineItems()); err != nil {
				return err
			}
		}

		previous = order.Status
		order.Status = req.Target
		order.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, tx, order); err != nil {
			return err
		}

		updated = *order
		return nil
	})
	if err != nil {
		return domain.WorkOrder{}, err
	}

	orderID := updated.ID.String()
	if err := s.audit.AuditLog(ctx, "user", nil, "work_order.status_changed", "work_order", &orderID, map[string]any{
		"from": string(previous),
		"to":   string(updated.Status),
	}); err != nil {
		s.log.Warn("audit log failed", zap.Error(err))
	}

	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetWorkOrderRequest) (domain.WorkOrder, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.WorkOrder{}, err
	}

	order, err := s.repo.FindByID(ctx, s.db, id, false)
	if err != nil {
		return domain.WorkOrder{}, err
	}
	if order == nil {
		return domain.WorkOrder{}, domain.ErrNotFound
	}

	items, err := s.repo.FindItems(ctx, s.db, order.ID)
	if err != nil {
		return domain.WorkOrder{}, err
	}
	order.Items = items

	return *order, nil
}

func (s *Service) List(ctx context.Context, req domain.ListWorkOrderRequest) (domain.ListWorkOrderResponse, error) {
	filter := domain.ListWorkOrderFilter{
		CustomerID: strings.TrimSpace(req.CustomerID),
		Status:     strings.TrimSpace(req.Status),
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
		return domain.ListWorkOrderResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(order *domain.WorkOrder) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        order.ID.String(),
			CreatedAt: order.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	orders := make([]domain.WorkOrder, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		orders = append(orders, *item)
	}

	resp := domain.ListWorkOrderResponse{WorkOrders: orders}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) buildItems(orderID snowflake.ID, inputs []domain.LineItemInput, now time.Time) []domain.WorkOrderItem {
	items := make([]domain.WorkOrderItem, 0, len(inputs))
	for i, input := range inputs {
		items = append(items, domain.WorkOrderItem{
			ID:          s.genID.Generate(),
			WorkOrderID: orderID,
			Position:    i + 1,
			Description: strings.TrimSpace(input.Description),
			Quantity:    input.Quantity,
			Unit:        strings.TrimSpace(input.Unit),
			UnitPrice:   input.UnitPrice,
			CreatedAt:   now,
		})
	}
	return items
}

// applyTotals copies the derived money fields back onto the order. The
// pricing result is the only writer of these fields.
func applyTotals(order *domain.WorkOrder, totals pricing.WorkOrderTotals) {
	for i := range order.Items {
		order.Items[i].LineTotal = totals.Items[i].LineTotal
	}
	order.LaborNet = totals.LaborNet
	order.TravelFee = totals.TravelFee
	order.ExpressFee = totals.ExpressFee
	order.WeekendFee = totals.WeekendFee
	order.NetTotal = totals.NetTotal
	order.GrossTotal = totals.GrossTotal
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
