package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Vehicle struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID        snowflake.ID `gorm:"not null;index" json:"customer_id"`
	Make              string       `gorm:"column:make" json:"make,omitempty"`
	Model             string       `gorm:"column:model" json:"model,omitempty"`
	VIN               string       `gorm:"column:vin" json:"vin,omitempty"`
	LicensePlate      string       `gorm:"column:license_plate" json:"license_plate,omitempty"`
	FirstRegistration int          `gorm:"column:first_registration" json:"first_registration,omitempty"`
	OdometerKM        int          `gorm:"column:odometer_km" json:"odometer_km,omitempty"`
	PaintCode         string       `gorm:"column:paint_code" json:"paint_code,omitempty"`
	CreatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
