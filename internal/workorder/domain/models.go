package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/colorworks/lackwerk/internal/lifecycle"
	"github.com/colorworks/lackwerk/internal/pricing"
	"github.com/shopspring/decimal"
)

// Status is the work order lifecycle state.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Lifecycle is the work order transition table. Completed and Cancelled
// are terminal; once entered the order is locked for good.
var Lifecycle = lifecycle.New(map[Status][]Status{
	StatusOpen:       {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusOpen, StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
})

type WorkOrder struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrderNumber     int64           `gorm:"not null;uniqueIndex" json:"order_number"`
	CustomerID      snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	VehicleID       snowflake.ID    `gorm:"not null;index" json:"vehicle_id"`
	OrderDate       time.Time       `gorm:"not null" json:"order_date"`
	Status          Status          `gorm:"not null;default:'OPEN'" json:"status"`
	TravelFeeActive bool            `gorm:"not null;default:false" json:"travel_fee_active"`
	ExpressActive   bool            `gorm:"not null;default:false" json:"express_active"`
	WeekendActive   bool            `gorm:"not null;default:false" json:"weekend_active"`
	Remarks         string          `gorm:"column:remarks" json:"remarks,omitempty"`
	LaborNet        decimal.Decimal `gorm:"type:decimal(18,2)" json:"labor_net"`
	TravelFee       decimal.Decimal `gorm:"type:decimal(18,2)" json:"travel_fee"`
	ExpressFee      decimal.Decimal `gorm:"type:decimal(18,2)" json:"express_fee"`
	WeekendFee      decimal.Decimal `gorm:"type:decimal(18,2)" json:"weekend_fee"`
	NetTotal        decimal.Decimal `gorm:"type:decimal(18,2)" json:"net_total"`
	GrossTotal      decimal.Decimal `gorm:"type:decimal(18,2)" json:"gross_total"`
	Items           []WorkOrderItem `gorm:"-" json:"items"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (WorkOrder) TableName() string { return "work_orders" }

type WorkOrderItem struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	WorkOrderID snowflake.ID    `gorm:"not null;index" json:"work_order_id"`
	Position    int             `gorm:"not null" json:"position"`
	Description string          `gorm:"not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,3)" json:"quantity"`
	Unit        string          `gorm:"column:unit" json:"unit,omitempty"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2)" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,2)" json:"line_total"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (WorkOrderItem) TableName() string { return "work_order_items" }

// LineItems maps the stored rows into pricing inputs. Work orders carry
// labor items only, taxed at the single configured VAT rate.
func (w WorkOrder) LineItems() []pricing.LineItem {
	items := make([]pricing.LineItem, 0, len(w.Items))
	for _, item := range w.Items {
		items = append(items, pricing.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			Category:    pricing.CategoryLabor,
		})
	}
	return items
}

// SurchargeFlags maps the stored flags into pricing inputs.
func (w WorkOrder) SurchargeFlags() pricing.SurchargeFlags {
	return pricing.SurchargeFlags{
		TravelFeeActive: w.TravelFeeActive,
		ExpressActive:   w.ExpressActive,
		WeekendActive:   w.WeekendActive,
	}
}
