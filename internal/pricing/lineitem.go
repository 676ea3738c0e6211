package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Line item categories as they appear on invoices. Work orders carry labor
// items only.
const (
	CategoryLabor     = "LABOR"
	CategoryMaterial  = "MATERIAL"
	CategorySurcharge = "SURCHARGE"
)

// LineItem is one priced row of a document. LineTotal is always derived
// from Quantity and UnitPrice; it is never an independent source of truth.
type LineItem struct {
	Description    string
	Quantity       decimal.Decimal
	Unit           string
	UnitPrice      decimal.Decimal
	TaxRatePercent decimal.Decimal
	Category       string
	LineTotal      decimal.Decimal
}

// PriceLineItem returns the item with LineTotal recomputed as
// Round2(Quantity * UnitPrice). Negative quantity or unit price is a
// validation failure.
func PriceLineItem(item LineItem) (LineItem, error) {
	if item.Quantity.IsNegative() || item.UnitPrice.IsNegative() {
		return LineItem{}, ErrInvalidAmount
	}
	item.LineTotal = Round2(item.Quantity.Mul(item.UnitPrice))
	return item, nil
}

// priceAll recomputes every line total, failing on the first invalid item.
func priceAll(items []LineItem) ([]LineItem, decimal.Decimal, error) {
	priced := make([]LineItem, 0, len(items))
	sum := zero
	for _, item := range items {
		p, err := PriceLineItem(item)
		if err != nil {
			return nil, zero, err
		}
		priced = append(priced, p)
		sum = sum.Add(p.LineTotal)
	}
	return priced, sum, nil
}

// qualifies reports whether an item counts toward the finalize check.
func qualifies(item LineItem, requireDescription bool) bool {
	if !item.Quantity.IsPositive() {
		return false
	}
	if requireDescription && strings.TrimSpace(item.Description) == "" {
		return false
	}
	return true
}
