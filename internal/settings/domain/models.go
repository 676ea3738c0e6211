// Package domain contains the settings store models and the snapshot type
// consumed by the pricing engine.
package domain

import (
	"time"

	"github.com/colorworks/lackwerk/internal/pricing"
	"github.com/shopspring/decimal"
)

// Setting is one string-typed key-value row. Values are parsed and
// validated by the settings service before anything numeric sees them.
type Setting struct {
	Key       string    `gorm:"primaryKey;type:text" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Setting) TableName() string { return "settings" }

// Setting keys.
const (
	KeyVATPercent              = "vat_percent"
	KeyReducedVATPercent       = "reduced_vat_percent"
	KeyBaseHourlyRate          = "base_hourly_rate"
	KeyTravelFeeAmount         = "travel_fee_amount"
	KeyExpressSurchargePercent = "express_surcharge_percent"
	KeyWeekendSurchargePercent = "weekend_surcharge_percent"
	KeyDiscountDefaultPercent  = "discount_default_percent"
	KeyPaymentTermDays         = "payment_term_days"
	KeyCashDiscountDays        = "cash_discount_days"
	KeyCashDiscountPercent     = "cash_discount_percent"
)

// Snapshot is an immutable, fully parsed view of the settings store,
// resolved once per request and passed explicitly into every pricing and
// conversion call. The engine never reads ambient state.
type Snapshot struct {
	VATPercent              decimal.Decimal
	ReducedVATPercent       decimal.Decimal
	BaseHourlyRate          decimal.Decimal
	TravelFeeAmount         decimal.Decimal
	ExpressSurchargePercent decimal.Decimal
	WeekendSurchargePercent decimal.Decimal
	DiscountDefaultPercent  decimal.Decimal
	PaymentTermDays         int
	CashDiscountDays        int
	CashDiscountPercent     decimal.Decimal
}

// WorkOrderRates is the slice of the snapshot that work order pricing needs.
func (s Snapshot) WorkOrderRates() pricing.WorkOrderRates {
	return pricing.WorkOrderRates{
		VATPercent:      s.VATPercent,
		TravelFeeAmount: s.TravelFeeAmount,
		ExpressPercent:  s.ExpressSurchargePercent,
		WeekendPercent:  s.WeekendSurchargePercent,
	}
}
