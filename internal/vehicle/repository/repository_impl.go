package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/colorworks/lackwerk/internal/vehicle/domain"
	"github.com/colorworks/lackwerk/pkg/db/option"
	"github.com/colorworks/lackwerk/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, vehicle *domain.Vehicle) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO vehicles (id, customer_id, make, model, vin, license_plate, first_registration, odometer_km, paint_code, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		vehicle.ID,
		vehicle.CustomerID,
		vehicle.Make,
		vehicle.Model,
		vehicle.VIN,
		vehicle.LicensePlate,
		vehicle.FirstRegistration,
		vehicle.OdometerKM,
		vehicle.PaintCode,
		vehicle.CreatedAt,
		vehicle.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, vehicle *domain.Vehicle) error {
	return db.WithContext(ctx).Exec(
		`UPDATE vehicles
		 SET make = ?, model = ?, vin = ?, license_plate = ?, first_registration = ?, odometer_km = ?, paint_code = ?, updated_at = ?
		 WHERE id = ?`,
		vehicle.Make,
		vehicle.Model,
		vehicle.VIN,
		vehicle.LicensePlate,
		vehicle.FirstRegistration,
		vehicle.OdometerKM,
		vehicle.PaintCode,
		vehicle.UpdatedAt,
		vehicle.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id, make, model, vin, license_plate, first_registration, odometer_km, paint_code, created_at, updated_at
		 FROM vehicles WHERE id = ?`,
		id,
	).Scan(&vehicle).Error
	if err != nil {
		return nil, err
	}
	if vehicle.ID == 0 {
		return nil, nil
	}
	return &vehicle, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListVehicleFilter, page pagination.Pagination) ([]*domain.Vehicle, error) {
	var vehicles []*domain.Vehicle
	stmt := db.WithContext(ctx).
		Model(&domain.Vehicle{})
	if filter.CustomerID != "" {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.LicensePlate != "" {
		stmt = stmt.Where("license_plate = ?", filter.LicensePlate)
	}
	if filter.VIN != "" {
		stmt = stmt.Where("vin = ?", filter.VIN)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&vehicles).Error
	if err != nil {
		return nil, err
	}
	return vehicles, nil
}
