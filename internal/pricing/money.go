// Package pricing implements the document pricing engine: deterministic
// money rounding, line item pricing, and the work order and invoice
// aggregation rules. Everything in here is pure computation over an
// immutable settings snapshot; persistence and transport live elsewhere.
package pricing

import "github.com/shopspring/decimal"

var (
	zero    = decimal.Zero
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Round2 rounds a monetary value to 2 decimal places, half up. Every
// monetary output of the engine passes through here exactly once, at the
// point the value is computed.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// percentOf returns base * rate/100, unrounded. Callers round the final
// output via Round2.
func percentOf(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).Div(hundred)
}
