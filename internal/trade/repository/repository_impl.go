package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/colorworks/lackwerk/internal/trade/domain"
	"github.com/colorworks/lackwerk/pkg/db/option"
	"github.com/colorworks/lackwerk/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) NextTradeNumber(ctx context.Context, tx *gorm.DB) (int64, error) {
	var next int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(trade_number), 0) + 1 FROM vehicle_trades`,
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, trade *domain.VehicleTrade) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO vehicle_trades (
			id, trade_number, type, make, model, vin, license_plate,
			first_registration, odometer_km, condition, counterparty_customer_id,
			purchase_price, sale_price, profit, status, remarks, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trade.ID,
		trade.TradeNumber,
		trade.Type,
		trade.Make,
		trade.Model,
		trade.VIN,
		trade.LicensePlate,
		trade.FirstRegistration,
		trade.OdometerKM,
		trade.Condition,
		trade.CounterpartyCustomerID,
		trade.PurchasePrice,
		trade.SalePrice,
		trade.Profit,
		trade.Status,
		trade.Remarks,
		trade.CreatedAt,
		trade.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, tx *gorm.DB, trade *domain.VehicleTrade) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE vehicle_trades
		 SET make = ?, model = ?, vin = ?, license_plate = ?,
		     first_registration = ?, odometer_km = ?, condition = ?, counterparty_customer_id = ?,
		     purchase_price = ?, sale_price = ?, profit = ?, status = ?, remarks = ?, updated_at = ?
		 WHERE id = ?`,
		trade.Make,
		trade.Model,
		trade.VIN,
		trade.LicensePlate,
		trade.FirstRegistration,
		trade.OdometerKM,
		trade.Condition,
		trade.CounterpartyCustomerID,
		trade.PurchasePrice,
		trade.SalePrice,
		trade.Profit,
		trade.Status,
		trade.Remarks,
		trade.UpdatedAt,
		trade.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID, forUpdate bool) (*domain.VehicleTrade, error) {
	query := `SELECT id, trade_number, type, make, model, vin, license_plate,
	                 first_registration, odometer_km, condition, counterparty_customer_id,
	                 purchase_price, sale_price, profit, status, remarks, created_at, updated_at
	          FROM vehicle_trades
	          WHERE id = ?`
	if forUpdate && db.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}

	var trade domain.VehicleTrade
	if err := db.WithContext(ctx).Raw(query, id).Scan(&trade).Error; err != nil {
		return nil, err
	}
	if trade.ID == 0 {
		return nil, nil
	}
	return &trade, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListTradeFilter, page pagination.Pagination) ([]*domain.VehicleTrade, error) {
	var trades []*domain.VehicleTrade
	stmt := db.WithContext(ctx).
		Model(&domain.VehicleTrade{})
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&trades).Error
	if err != nil {
		return nil, err
	}
	return trades, nil
}
