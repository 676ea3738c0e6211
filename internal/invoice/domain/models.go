package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/colorworks/lackwerk/internal/lifecycle"
	"github.com/colorworks/lackwerk/internal/pricing"
	"github.com/shopspring/decimal"
)

// Status is the invoice lifecycle state.
type Status string

const (
	StatusOpen          Status = "OPEN"
	StatusPartiallyPaid Status = "PARTIALLY_PAID"
	StatusPaid          Status = "PAID"
	StatusDunning       Status = "DUNNING"
	StatusCancelled     Status = "CANCELLED"
)

// Lifecycle is the invoice transition table. Paid, Dunning and Cancelled
// are all terminal; a dunned invoice cannot be marked paid afterwards.
var Lifecycle = lifecycle.New(map[Status][]Status{
	StatusOpen:          {StatusPartiallyPaid, StatusPaid, StatusDunning, StatusCancelled},
	StatusPartiallyPaid: {StatusOpen, StatusPaid, StatusDunning, StatusCancelled},
	StatusPaid:          {},
	StatusDunning:       {},
	StatusCancelled:     {},
})

type Invoice struct {
	ID               snowflake.ID     `gorm:"primaryKey" json:"id"`
	InvoiceNumber    int64            `gorm:"not null;uniqueIndex" json:"invoice_number"`
	SourceOrderID    *snowflake.ID    `gorm:"index" json:"source_order_id,omitempty"`
	CustomerID       snowflake.ID     `gorm:"not null;index" json:"customer_id"`
	VehicleID        *snowflake.ID    `gorm:"index" json:"vehicle_id,omitempty"`
	InvoiceDate      time.Time        `gorm:"not null" json:"invoice_date"`
	OrderDate        *time.Time       `json:"order_date,omitempty"`
	DueDate          *time.Time       `json:"due_date,omitempty"`
	Status           Status           `gorm:"not null;default:'OPEN'" json:"status"`
	DiscountPercent  decimal.Decimal  `gorm:"type:decimal(5,2)" json:"discount_percent"`
	DepositAmount    decimal.Decimal  `gorm:"type:decimal(18,2)" json:"deposit_amount"`
	DepositDate      *time.Time       `json:"deposit_date,omitempty"`
	Subtotal         decimal.Decimal  `gorm:"type:decimal(18,2)" json:"subtotal"`
	DiscountAmount   decimal.Decimal  `gorm:"type:decimal(18,2)" json:"discount_amount"`
	NetAfterDiscount decimal.Decimal  `gorm:"type:decimal(18,2)" json:"net_after_discount"`
	GrandTotal       decimal.Decimal  `gorm:"type:decimal(18,2)" json:"grand_total"`
	RemainingBalance decimal.Decimal  `gorm:"type:decimal(18,2)" json:"remaining_balance"`
	Remarks          string           `gorm:"column:remarks" json:"remarks,omitempty"`
	Items            []InvoiceItem    `gorm:"-" json:"items"`
	TaxLines         []InvoiceTaxLine `gorm:"-" json:"tax_lines"`
	CreatedAt        time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

type InvoiceItem struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID      snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	Position       int             `gorm:"not null" json:"position"`
	Description    string          `gorm:"not null" json:"description"`
	Quantity       decimal.Decimal `gorm:"type:decimal(12,3)" json:"quantity"`
	Unit           string          `gorm:"column:unit" json:"unit,omitempty"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,2)" json:"unit_price"`
	TaxRatePercent decimal.Decimal `gorm:"type:decimal(5,2)" json:"tax_rate_percent"`
	Category       string          `gorm:"column:category" json:"category,omitempty"`
	LineTotal      decimal.Decimal `gorm:"type:decimal(18,2)" json:"line_total"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }

type InvoiceTaxLine struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID   snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	RatePercent decimal.Decimal `gorm:"type:decimal(5,2)" json:"rate_percent"`
	Base        decimal.Decimal `gorm:"type:decimal(18,2)" json:"base"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceTaxLine) TableName() string { return "invoice_tax_lines" }

// LineItems maps the stored rows into pricing inputs.
func (inv Invoice) LineItems() []pricing.LineItem {
	items := make([]pricing.LineItem, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, pricing.LineItem{
			Description:    item.Description,
			Quantity:       item.Quantity,
			Unit:           item.Unit,
			UnitPrice:      item.UnitPrice,
			TaxRatePercent: item.TaxRatePercent,
			Category:       item.Category,
		})
	}
	return items
}
