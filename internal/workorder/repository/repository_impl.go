package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/colorworks/lackwerk/internal/workorder/domain"
	"github.com/colorworks/lackwerk/pkg/db/option"
	"github.com/colorworks/lackwerk/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) NextOrderNumber(ctx context.Context, tx *gorm.DB) (int64, error) {
	var next int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(order_number), 0) + 1 FROM work_orders`,
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, order *domain.WorkOrder) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO work_orders (
			id, order_number, customer_id, vehicle_id, order_date, status,
			travel_fee_active, express_active, weekend_active, remarks,
			labor_net, travel_fee, express_fee, weekend_fee, net_total, gross_total,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.OrderNumber,
		order.CustomerID,
		order.VehicleID,
		order.OrderDate,
		order.Status,
		order.TravelFeeActive,
		order.ExpressActive,
		order.WeekendActive,
		order.Remarks,
		order.LaborNet,
		order.TravelFee,
		order.ExpressFee,
		order.WeekendFee,
		order.NetTotal,
		order.GrossTotal,
		order.CreatedAt,
		order.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, tx *gorm.DB, order *domain.WorkOrder) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE work_orders
		 SET order_date = ?, status = ?,
		     travel_fee_active = ?, express_active = ?, weekend_active = ?, remarks = ?,
		     labor_net = ?, travel_fee = ?, express_fee = ?, weekend_fee = ?,
		     net_total = ?, gross_total = ?, updated_at = ?
		 WHERE id = ?`,
		order.OrderDate,
		order.Status,
		order.TravelFeeActive,
		order.ExpressActive,
		order.WeekendActive,
		order.Remarks,
		order.LaborNet,
		order.TravelFee,
		order.ExpressFee,
		order.WeekendFee,
		order.NetTotal,
		order.GrossTotal,
		order.UpdatedAt,
		order.ID,
	).Error
}

func (r *repo) ReplaceItems(ctx context.Context, tx *gorm.DB, orderID snowflake.ID, items []domain.WorkOrderItem) error {
	if err := tx.WithContext(ctx).Exec(
		`DELETE FROM work_order_items WHERE work_order_id = ?`, orderID,
	).Error; err != nil {
		return err
	}
	for _, item := range items {
		if err := tx.WithContext(ctx).Exec(
			`INSERT INTO work_order_items (
				id, work_order_id, position, description, quantity, unit, unit_price, line_total, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID,
			item.WorkOrderID,
			item.Position,
			item.Description,
			item.Quantity,
			item.Unit,
			item.UnitPrice,
			item.LineTotal,
			item.CreatedAt,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID, forUpdate bool) (*domain.WorkOrder, error) {
	query := `SELECT id, order_number, customer_id, vehicle_id, order_date, status,
	                 travel_fee_active, express_active, weekend_active, remarks,
	                 labor_net, travel_fee, express_fee, weekend_fee, net_total, gross_total,
	                 created_at, updated_at
	          FROM work_orders
	          WHERE id = ?`
	if forUpdate && db.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}

	var order domain.WorkOrder
	if err := db.WithContext(ctx).Raw(query, id).Scan(&order).Error; err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) FindItems(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]domain.WorkOrderItem, error) {
	var items []domain.WorkOrderItem
	err := db.WithContext(ctx).Raw(
		`SELECT id, work_order_id, position, description, quantity, unit, unit_price, line_total, created_at
		 FROM work_order_items
		 WHERE work_order_id = ?
		 ORDER BY position ASC`,
		orderID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListWorkOrderFilter, page pagination.Pagination) ([]*domain.WorkOrder, error) {
	var orders []*domain.WorkOrder
	stmt := db.WithContext(ctx).
		Model(&domain.WorkOrder{})
	if filter.CustomerID != "" {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
