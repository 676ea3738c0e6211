package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/colorworks/lackwerk/internal/config"
	"github.com/colorworks/lackwerk/internal/settings/domain"
	"github.com/colorworks/lackwerk/pkg/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Defaults *config.ShopDefaultsHolder
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	defaults *config.ShopDefaultsHolder
	repo     repository.Repository[domain.Setting]
}

func NewService(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("settings.service"),
		defaults: p.Defaults,
		repo:     repository.ProvideStore[domain.Setting](p.DB),
	}
}

// knownKeys maps each setting key to its validation rule.
var knownKeys = map[string]func(decimal.Decimal) error{
	domain.KeyVATPercent:              validateRate,
	domain.KeyReducedVATPercent:       validateRate,
	domain.KeyBaseHourlyRate:          validateAmount,
	domain.KeyTravelFeeAmount:         validateAmount,
	domain.KeyExpressSurchargePercent: validateAmount,
	domain.KeyWeekendSurchargePercent: validateAmount,
	domain.KeyDiscountDefaultPercent:  validatePercentRange,
	domain.KeyPaymentTermDays:         validateDays,
	domain.KeyCashDiscountDays:        validateDays,
	domain.KeyCashDiscountPercent:     validatePercentRange,
}

func (s *Service) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	values, err := s.values(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	snapshot := domain.Snapshot{}
	fields := []struct {
		key    string
		target *decimal.Decimal
	}{
		{domain.KeyVATPercent, &snapshot.VATPercent},
		{domain.KeyReducedVATPercent, &snapshot.ReducedVATPercent},
		{domain.KeyBaseHourlyRate, &snapshot.BaseHourlyRate},
		{domain.KeyTravelFeeAmount, &snapshot.TravelFeeAmount},
		{domain.KeyExpressSurchargePercent, &snapshot.ExpressSurchargePercent},
		{domain.KeyWeekendSurchargePercent, &snapshot.WeekendSurchargePercent},
		{domain.KeyDiscountDefaultPercent, &snapshot.DiscountDefaultPercent},
		{domain.KeyCashDiscountPercent, &snapshot.CashDiscountPercent},
	}
	for _, field := range fields {
		value, err := parseSetting(field.key, values[field.key])
		if err != nil {
			return domain.Snapshot{}, err
		}
		*field.target = value
	}

	days, err := parseSetting(domain.KeyPaymentTermDays, values[domain.KeyPaymentTermDays])
	if err != nil {
		return domain.Snapshot{}, err
	}
	snapshot.PaymentTermDays = int(days.IntPart())

	days, err = parseSetting(domain.KeyCashDiscountDays, values[domain.KeyCashDiscountDays])
	if err != nil {
		return domain.Snapshot{}, err
	}
	snapshot.CashDiscountDays = int(days.IntPart())

	return snapshot, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Setting, error) {
	items, err := s.repo.Find(ctx, &domain.Setting{})
	if err != nil {
		return nil, err
	}
	settings := make([]domain.Setting, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		settings = append(settings, *item)
	}
	return settings, nil
}

func (s *Service) Update(ctx context.Context, values map[string]string) error {
	for key, raw := range values {
		if _, ok := knownKeys[key]; !ok {
			return domain.ErrUnknownKey
		}
		if _, err := parseSetting(key, strings.TrimSpace(raw)); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, raw := range values {
			result := tx.Exec(
				`UPDATE settings SET value = ?, updated_at = ? WHERE key = ?`,
				strings.TrimSpace(raw), now, key,
			)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				if err := tx.Exec(
					`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)`,
					key, strings.TrimSpace(raw), now,
				).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (s *Service) EnsureDefaults(ctx context.Context) error {
	defaults := s.defaults.Get()
	seed := map[string]string{
		domain.KeyVATPercent:              formatFloat(defaults.VATPercent),
		domain.KeyReducedVATPercent:       formatFloat(defaults.ReducedVATPercent),
		domain.KeyBaseHourlyRate:          formatFloat(defaults.BaseHourlyRate),
		domain.KeyTravelFeeAmount:         formatFloat(defaults.TravelFeeAmount),
		domain.KeyExpressSurchargePercent: formatFloat(defaults.ExpressSurchargePercent),
		domain.KeyWeekendSurchargePercent: formatFloat(defaults.WeekendSurchargePercent),
		domain.KeyDiscountDefaultPercent:  formatFloat(defaults.DiscountDefaultPercent),
		domain.KeyPaymentTermDays:         strconv.Itoa(defaults.PaymentTermDays),
		domain.KeyCashDiscountDays:        strconv.Itoa(defaults.CashDiscountDays),
		domain.KeyCashDiscountPercent:     formatFloat(defaults.CashDiscountPercent),
	}

	now := time.Now().UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range seed {
			var count int64
			if err := tx.Model(&domain.Setting{}).Where("key = ?", key).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			if err := tx.Exec(
				`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)`,
				key, value, now,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) values(ctx context.Context) (map[string]string, error) {
	items, err := s.repo.Find(ctx, &domain.Setting{})
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		values[item.Key] = item.Value
	}

	// Missing keys fall back to the shop defaults file so a partially
	// seeded store never breaks a pricing call.
	defaults := s.defaults.Get()
	fallback := map[string]string{
		domain.KeyVATPercent:              formatFloat(defaults.VATPercent),
		domain.KeyReducedVATPercent:       formatFloat(defaults.ReducedVATPercent),
		domain.KeyBaseHourlyRate:          formatFloat(defaults.BaseHourlyRate),
		domain.KeyTravelFeeAmount:         formatFloat(defaults.TravelFeeAmount),
		domain.KeyExpressSurchargePercent: formatFloat(defaults.ExpressSurchargePercent),
		domain.KeyWeekendSurchargePercent: formatFloat(defaults.WeekendSurchargePercent),
		domain.KeyDiscountDefaultPercent:  formatFloat(defaults.DiscountDefaultPercent),
		domain.KeyPaymentTermDays:         strconv.Itoa(defaults.PaymentTermDays),
		domain.KeyCashDiscountDays:        strconv.Itoa(defaults.CashDiscountDays),
		domain.KeyCashDiscountPercent:     formatFloat(defaults.CashDiscountPercent),
	}
	for key, value := range fallback {
		if _, ok := values[key]; !ok {
			values[key] = value
		}
	}
	return values, nil
}

func parseSetting(key, raw string) (decimal.Decimal, error) {
	validate, ok := knownKeys[key]
	if !ok {
		return decimal.Zero, domain.ErrUnknownKey
	}
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, domain.ErrInvalidValue
	}
	if err := validate(value); err != nil {
		return decimal.Zero, err
	}
	return value, nil
}

func validateRate(v decimal.Decimal) error {
	// The VAT-to-net conversion divides by 1+rate/100.
	if v.LessThanOrEqual(decimal.NewFromInt(-100)) {
		return domain.ErrValueOutOfRange
	}
	return nil
}

func validateAmount(v decimal.Decimal) error {
	if v.IsNegative() {
		return domain.ErrValueOutOfRange
	}
	return nil
}

func validatePercentRange(v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThan(decimal.NewFromInt(100)) {
		return domain.ErrValueOutOfRange
	}
	return nil
}

func validateDays(v decimal.Decimal) error {
	if v.IsNegative() || !v.Equal(v.Truncate(0)) {
		return domain.ErrValueOutOfRange
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
