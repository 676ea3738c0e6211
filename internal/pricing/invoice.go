package pricing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TaxLine is one tax bucket of an invoice: all line totals carrying the
// same rate, with the discount applied proportionally inside the bucket.
type TaxLine struct {
	RatePercent decimal.Decimal
	Base        decimal.Decimal
	Amount      decimal.Decimal
}

// InvoiceTotals are the derived money fields of an invoice.
type InvoiceTotals struct {
	Items            []LineItem
	Subtotal         decimal.Decimal
	DiscountAmount   decimal.Decimal
	NetAfterDiscount decimal.Decimal
	TaxLines         []TaxLine
	GrandTotal       decimal.Decimal
	DepositAmount    decimal.Decimal
	DepositDate      *time.Time
	RemainingBalance decimal.Decimal
}

// PriceInvoice recomputes an invoice from already tax-rated line items, a
// discount percentage and the recorded deposit. Tax is bucketed per
// distinct rate so a 0%-rate bucket never accrues tax regardless of
// discount; bucket intermediates stay unrounded until the bucket amount is
// emitted. A deposit above the grand total is clamped down to it, stamping
// the deposit date with now if unset. Idempotent by construction.
func PriceInvoice(items []LineItem, discountPercent, depositAmount decimal.Decimal, depositDate *time.Time, now time.Time) (InvoiceTotals, error) {
	if discountPercent.IsNegative() || discountPercent.GreaterThan(hundred) {
		return InvoiceTotals{}, ErrInvalidAmount
	}
	if depositAmount.IsNegative() {
		return InvoiceTotals{}, ErrInvalidAmount
	}

	priced, subtotal, err := priceAll(items)
	if err != nil {
		return InvoiceTotals{}, err
	}

	totals := InvoiceTotals{
		Items:          priced,
		Subtotal:       subtotal,
		DiscountAmount: Round2(percentOf(subtotal, discountPercent)),
	}
	totals.NetAfterDiscount = Round2(subtotal.Sub(totals.DiscountAmount))

	// Bucket line totals per distinct tax rate, keyed on the normalized
	// string form so 19 and 19.00 land in the same bucket.
	bases := map[string]decimal.Decimal{}
	rates := map[string]decimal.Decimal{}
	for _, item := range priced {
		key := item.TaxRatePercent.String()
		bases[key] = bases[key].Add(item.LineTotal)
		rates[key] = item.TaxRatePercent
	}

	keys := make([]string, 0, len(bases))
	for key := range bases {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return rates[keys[i]].GreaterThan(rates[keys[j]])
	})

	discountFactor := one.Sub(discountPercent.Div(hundred))
	taxSum := zero
	for _, key := range keys {
		line := TaxLine{
			RatePercent: rates[key],
			Base:        bases[key],
			Amount:      Round2(bases[key].Mul(discountFactor).Mul(rates[key]).Div(hundred)),
		}
		totals.TaxLines = append(totals.TaxLines, line)
		taxSum = taxSum.Add(line.Amount)
	}

	totals.GrandTotal = Round2(totals.NetAfterDiscount.Add(taxSum))

	totals.DepositAmount = Round2(depositAmount)
	totals.DepositDate = depositDate
	if totals.DepositAmount.GreaterThan(totals.GrandTotal) {
		totals.DepositAmount = totals.GrandTotal
		if totals.DepositDate == nil {
			today := now
			totals.DepositDate = &today
		}
	}

	remaining := totals.GrandTotal.Sub(totals.DepositAmount)
	if remaining.IsNegative() {
		remaining = zero
	}
	totals.RemainingBalance = Round2(remaining)
	return totals, nil
}

// CheckInvoiceFinalizable enforces the finalize precondition: at least one
// item with quantity > 0 and a non-empty description before the invoice
// may leave Open.
func CheckInvoiceFinalizable(items []LineItem) error {
	for _, item := range items {
		if qualifies(item, true) {
			return nil
		}
	}
	return ErrEmptyDocument
}
