package pricing

import "github.com/shopspring/decimal"

// SurchargeFlags are the conditional add-ons a work order can carry.
type SurchargeFlags struct {
	TravelFeeActive bool
	ExpressActive   bool
	WeekendActive   bool
}

// WorkOrderRates is the slice of the settings snapshot that work order
// pricing needs. Express and weekend surcharges are percentages of the
// labor net; the travel fee is a flat amount.
type WorkOrderRates struct {
	VATPercent      decimal.Decimal
	TravelFeeAmount decimal.Decimal
	ExpressPercent  decimal.Decimal
	WeekendPercent  decimal.Decimal
}

// WorkOrderTotals are the derived money fields of a work order.
type WorkOrderTotals struct {
	Items      []LineItem
	LaborNet   decimal.Decimal
	TravelFee  decimal.Decimal
	ExpressFee decimal.Decimal
	WeekendFee decimal.Decimal
	NetTotal   decimal.Decimal
	GrossTotal decimal.Decimal
}

// PriceWorkOrder recomputes a work order from its labor items, surcharge
// flags and rates. Surcharges are computed off the labor net only;
// materials never appear on work orders. The computation is idempotent:
// the same inputs always produce identical totals.
func PriceWorkOrder(items []LineItem, flags SurchargeFlags, rates WorkOrderRates) (WorkOrderTotals, error) {
	priced, laborNet, err := priceAll(items)
	if err != nil {
		return WorkOrderTotals{}, err
	}

	totals := WorkOrderTotals{
		Items:      priced,
		LaborNet:   laborNet,
		TravelFee:  zero,
		ExpressFee: zero,
		WeekendFee: zero,
	}
	if flags.TravelFeeActive {
		totals.TravelFee = Round2(rates.TravelFeeAmount)
	}
	if flags.ExpressActive {
		totals.ExpressFee = Round2(percentOf(laborNet, rates.ExpressPercent))
	}
	if flags.WeekendActive {
		totals.WeekendFee = Round2(percentOf(laborNet, rates.WeekendPercent))
	}

	totals.NetTotal = Round2(laborNet.Add(totals.TravelFee).Add(totals.ExpressFee).Add(totals.WeekendFee))
	totals.GrossTotal = Round2(totals.NetTotal.Mul(one.Add(rates.VATPercent.Div(hundred))))
	return totals, nil
}

// CheckWorkOrderFinalizable enforces the finalize precondition: at least
// one item with quantity > 0 before the order may leave Open.
func CheckWorkOrderFinalizable(items []LineItem) error {
	for _, item := range items {
		if qualifies(item, false) {
			return nil
		}
	}
	return ErrEmptyDocument
}
