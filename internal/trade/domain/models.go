package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/colorworks/lackwerk/internal/lifecycle"
	"github.com/shopspring/decimal"
)

// Type distinguishes buying a vehicle into stock from selling one.
type Type string

const (
	TypePurchase Type = "PURCHASE"
	TypeSale     Type = "SALE"
)

// Status is the trade lifecycle state.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Lifecycle is the trade transition table. Completed and Cancelled are
// terminal, matching the work order locking rule.
var Lifecycle = lifecycle.New(map[Status][]Status{
	StatusOpen:      {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
})

type VehicleTrade struct {
	ID                     snowflake.ID    `gorm:"primaryKey" json:"id"`
	TradeNumber            int64           `gorm:"not null;uniqueIndex" json:"trade_number"`
	Type                   Type            `gorm:"not null" json:"type"`
	Make                   string          `gorm:"column:make" json:"make,omitempty"`
	Model                  string          `gorm:"column:model" json:"model,omitempty"`
	VIN                    string          `gorm:"column:vin" json:"vin,omitempty"`
	LicensePlate           string          `gorm:"column:license_plate" json:"license_plate,omitempty"`
	FirstRegistration      int             `gorm:"column:first_registration" json:"first_registration,omitempty"`
	OdometerKM             int             `gorm:"column:odometer_km" json:"odometer_km,omitempty"`
	Condition              string          `gorm:"column:condition" json:"condition,omitempty"`
	CounterpartyCustomerID *snowflake.ID   `gorm:"index" json:"counterparty_customer_id,omitempty"`
	PurchasePrice          decimal.Decimal `gorm:"type:decimal(18,2)" json:"purchase_price"`
	SalePrice              decimal.Decimal `gorm:"type:decimal(18,2)" json:"sale_price"`
	Profit                 decimal.Decimal `gorm:"type:decimal(18,2)" json:"profit"`
	Status                 Status          `gorm:"not null;default:'OPEN'" json:"status"`
	Remarks                string          `gorm:"column:remarks" json:"remarks,omitempty"`
	CreatedAt              time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt              time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (VehicleTrade) TableName() string { return "vehicle_trades" }
