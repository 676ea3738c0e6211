package service

import (
	"context"
	"testing"

	"github.com/colorworks/lackwerk/internal/config"
	"github.com/colorworks/lackwerk/internal/settings/domain"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func dec(value string) decimal.Decimal {
	d, _ := decimal.NewFromString(value)
	return d
}

func setupService(t *testing.T) (domain.Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	db.Exec(`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)

	holder, err := config.NewShopDefaultsHolder()
	require.NoError(t, err)

	svc := NewService(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Defaults: holder,
	})
	return svc, db
}

func TestSettingsSnapshotFallsBackToDefaults(t *testing.T) {
	svc, _ := setupService(t)

	// Empty store: every value comes from the shop defaults.
	snapshot, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, snapshot.VATPercent.Equal(dec("19")))
	assert.True(t, snapshot.ReducedVATPercent.Equal(dec("7")))
	assert.True(t, snapshot.BaseHourlyRate.Equal(dec("58")))
	assert.True(t, snapshot.TravelFeeAmount.Equal(dec("25")))
	assert.True(t, snapshot.ExpressSurchargePercent.Equal(dec("10")))
	assert.True(t, snapshot.WeekendSurchargePercent.Equal(dec("20")))
	assert.Equal(t, 14, snapshot.PaymentTermDays)
	assert.Equal(t, 7, snapshot.CashDiscountDays)
}

func TestSettingsEnsureDefaultsSeedsOnce(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaults(ctx))

	settings, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, settings, 10)

	// A manual change survives a second seeding pass.
	require.NoError(t, db.Exec(`UPDATE settings SET value = '21' WHERE key = ?`, domain.KeyVATPercent).Error)
	require.NoError(t, svc.EnsureDefaults(ctx))

	snapshot, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snapshot.VATPercent.Equal(dec("21")))
}

func TestSettingsUpdate(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	t.Run("valid values are stored", func(t *testing.T) {
		require.NoError(t, svc.Update(ctx, map[string]string{
			domain.KeyVATPercent:      "20",
			domain.KeyPaymentTermDays: "30",
			domain.KeyTravelFeeAmount: "35.50",
		}))

		snapshot, err := svc.Snapshot(ctx)
		require.NoError(t, err)
		assert.True(t, snapshot.VATPercent.Equal(dec("20")))
		assert.Equal(t, 30, snapshot.PaymentTermDays)
		assert.True(t, snapshot.TravelFeeAmount.Equal(dec("35.50")))
	})

	t.Run("unknown key", func(t *testing.T) {
		err := svc.Update(ctx, map[string]string{"service_fee": "10"})
		assert.ErrorIs(t, err, domain.ErrUnknownKey)
	})

	t.Run("non-numeric value", func(t *testing.T) {
		err := svc.Update(ctx, map[string]string{domain.KeyVATPercent: "abc"})
		assert.ErrorIs(t, err, domain.ErrInvalidValue)
	})

	t.Run("out-of-range values", func(t *testing.T) {
		err := svc.Update(ctx, map[string]string{domain.KeyVATPercent: "-100"})
		assert.ErrorIs(t, err, domain.ErrValueOutOfRange)

		err = svc.Update(ctx, map[string]string{domain.KeyDiscountDefaultPercent: "101"})
		assert.ErrorIs(t, err, domain.ErrValueOutOfRange)

		err = svc.Update(ctx, map[string]string{domain.KeyPaymentTermDays: "14.5"})
		assert.ErrorIs(t, err, domain.ErrValueOutOfRange)

		err = svc.Update(ctx, map[string]string{domain.KeyTravelFeeAmount: "-1"})
		assert.ErrorIs(t, err, domain.ErrValueOutOfRange)
	})

	t.Run("nothing is written when one value is invalid", func(t *testing.T) {
		err := svc.Update(ctx, map[string]string{
			domain.KeyVATPercent:       "7",
			domain.KeyCashDiscountDays: "-3",
		})
		require.Error(t, err)

		snapshot, err := svc.Snapshot(ctx)
		require.NoError(t, err)
		assert.True(t, snapshot.VATPercent.Equal(dec("20")))
	})
}
