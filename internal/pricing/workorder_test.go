package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func laborItem(desc, qty, unitPrice string) LineItem {
	return LineItem{
		Description: desc,
		Quantity:    dec(qty),
		Unit:        "h",
		UnitPrice:   dec(unitPrice),
		Category:    CategoryLabor,
	}
}

func TestPriceLineItem(t *testing.T) {
	t.Run("rounds half up", func(t *testing.T) {
		item, err := PriceLineItem(laborItem("Polieren", "1.5", "33.33"))
		require.NoError(t, err)
		// 1.5 * 33.33 = 49.995 -> 50.00
		assert.True(t, item.LineTotal.Equal(dec("50.00")), item.LineTotal.String())
	})

	t.Run("negative quantity rejected", func(t *testing.T) {
		_, err := PriceLineItem(laborItem("Fehler", "-1", "10"))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("negative unit price rejected", func(t *testing.T) {
		_, err := PriceLineItem(laborItem("Fehler", "1", "-10"))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestPriceWorkOrder(t *testing.T) {
	rates := WorkOrderRates{
		VATPercent:      dec("19"),
		TravelFeeAmount: dec("25"),
		ExpressPercent:  dec("10"),
		WeekendPercent:  dec("15"),
	}
	items := []LineItem{
		laborItem("Stossstange lackieren", "4", "40"),
		laborItem("Kotfluegel spachteln", "2", "20"),
	}

	t.Run("no surcharges", func(t *testing.T) {
		totals, err := PriceWorkOrder(items, SurchargeFlags{}, rates)
		require.NoError(t, err)
		assert.True(t, totals.LaborNet.Equal(dec("200")), totals.LaborNet.String())
		assert.True(t, totals.NetTotal.Equal(dec("200")))
		assert.True(t, totals.GrossTotal.Equal(dec("238")), totals.GrossTotal.String())
	})

	t.Run("all surcharges off labor net only", func(t *testing.T) {
		flags := SurchargeFlags{TravelFeeActive: true, ExpressActive: true, WeekendActive: true}
		totals, err := PriceWorkOrder(items, flags, rates)
		require.NoError(t, err)
		assert.True(t, totals.TravelFee.Equal(dec("25")))
		assert.True(t, totals.ExpressFee.Equal(dec("20")))
		assert.True(t, totals.WeekendFee.Equal(dec("30")))
		// 200 + 25 + 20 + 30 = 275; gross 275 * 1.19 = 327.25
		assert.True(t, totals.NetTotal.Equal(dec("275")))
		assert.True(t, totals.GrossTotal.Equal(dec("327.25")), totals.GrossTotal.String())
	})

	t.Run("idempotent recompute", func(t *testing.T) {
		flags := SurchargeFlags{ExpressActive: true}
		first, err := PriceWorkOrder(items, flags, rates)
		require.NoError(t, err)
		second, err := PriceWorkOrder(first.Items, flags, rates)
		require.NoError(t, err)
		assert.Equal(t, first.NetTotal.String(), second.NetTotal.String())
		assert.Equal(t, first.GrossTotal.String(), second.GrossTotal.String())
		for i := range first.Items {
			assert.Equal(t, first.Items[i].LineTotal.String(), second.Items[i].LineTotal.String())
		}
	})

	t.Run("invalid item propagates", func(t *testing.T) {
		_, err := PriceWorkOrder([]LineItem{laborItem("x", "1", "-5")}, SurchargeFlags{}, rates)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestCheckWorkOrderFinalizable(t *testing.T) {
	t.Run("zero items", func(t *testing.T) {
		assert.ErrorIs(t, CheckWorkOrderFinalizable(nil), ErrEmptyDocument)
	})

	t.Run("only zero-quantity items", func(t *testing.T) {
		err := CheckWorkOrderFinalizable([]LineItem{laborItem("leer", "0", "50")})
		assert.ErrorIs(t, err, ErrEmptyDocument)
	})

	t.Run("one priced item suffices", func(t *testing.T) {
		err := CheckWorkOrderFinalizable([]LineItem{
			laborItem("leer", "0", "50"),
			laborItem("Lackieren", "1", "50"),
		})
		assert.NoError(t, err)
	})
}
