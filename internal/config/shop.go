package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ShopDefaults are the fallback values seeded into the settings store on
// first start. Runtime setting changes go through the settings service;
// this file only covers defaults for a fresh installation.
type ShopDefaults struct {
	VATPercent              float64 `mapstructure:"vatPercent"`
	ReducedVATPercent       float64 `mapstructure:"reducedVatPercent"`
	BaseHourlyRate          float64 `mapstructure:"baseHourlyRate"`
	TravelFeeAmount         float64 `mapstructure:"travelFeeAmount"`
	ExpressSurchargePercent float64 `mapstructure:"expressSurchargePercent"`
	WeekendSurchargePercent float64 `mapstructure:"weekendSurchargePercent"`
	DiscountDefaultPercent  float64 `mapstructure:"discountDefaultPercent"`
	PaymentTermDays         int     `mapstructure:"paymentTermDays"`
	CashDiscountDays        int     `mapstructure:"cashDiscountDays"`
	CashDiscountPercent     float64 `mapstructure:"cashDiscountPercent"`
}

func DefaultShopDefaults() ShopDefaults {
	return ShopDefaults{
		VATPercent:              19,
		ReducedVATPercent:       7,
		BaseHourlyRate:          58,
		TravelFeeAmount:         25,
		ExpressSurchargePercent: 10,
		WeekendSurchargePercent: 20,
		DiscountDefaultPercent:  0,
		PaymentTermDays:         14,
		CashDiscountDays:        7,
		CashDiscountPercent:     2,
	}
}

// ShopDefaultsHolder serves the current defaults and hot-reloads them when
// the config file changes on disk.
type ShopDefaultsHolder struct {
	current atomic.Value // holds ShopDefaults
}

func NewShopDefaultsHolder() (*ShopDefaultsHolder, error) {
	v := viper.New()

	v.SetConfigName("shop")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/lackwerk/config")
	v.AddConfigPath("/etc/lackwerk")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LACKWERK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultShopDefaults()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		v.SetDefault("shop.vatPercent", defaults.VATPercent)
		v.SetDefault("shop.reducedVatPercent", defaults.ReducedVATPercent)
		v.SetDefault("shop.baseHourlyRate", defaults.BaseHourlyRate)
		v.SetDefault("shop.travelFeeAmount", defaults.TravelFeeAmount)
		v.SetDefault("shop.expressSurchargePercent", defaults.ExpressSurchargePercent)
		v.SetDefault("shop.weekendSurchargePercent", defaults.WeekendSurchargePercent)
		v.SetDefault("shop.discountDefaultPercent", defaults.DiscountDefaultPercent)
		v.SetDefault("shop.paymentTermDays", defaults.PaymentTermDays)
		v.SetDefault("shop.cashDiscountDays", defaults.CashDiscountDays)
		v.SetDefault("shop.cashDiscountPercent", defaults.CashDiscountPercent)
	}

	var cfg ShopDefaults
	if err := v.UnmarshalKey("shop", &cfg); err != nil {
		return nil, err
	}
	if err := validateShopDefaults(cfg); err != nil {
		return nil, err
	}

	holder := &ShopDefaultsHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ShopDefaults
		if err := v.UnmarshalKey("shop", &updated); err != nil {
			log.Printf("[shop-config] reload failed: %v", err)
			return
		}
		if err := validateShopDefaults(updated); err != nil {
			log.Printf("[shop-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[shop-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *ShopDefaultsHolder) Get() ShopDefaults {
	return h.current.Load().(ShopDefaults)
}

func validateShopDefaults(cfg ShopDefaults) error {
	if cfg.VATPercent <= -100 {
		return errors.New("shop.vatPercent must be greater than -100")
	}
	if cfg.DiscountDefaultPercent < 0 || cfg.DiscountDefaultPercent > 100 {
		return errors.New("shop.discountDefaultPercent must be within [0,100]")
	}
	if cfg.TravelFeeAmount < 0 || cfg.BaseHourlyRate < 0 {
		return errors.New("shop amounts must not be negative")
	}
	return nil
}
