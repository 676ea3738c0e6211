package domain

import (
	"context"
	"errors"
)

type Service interface {
	// Snapshot resolves the current settings into a validated snapshot.
	Snapshot(ctx context.Context) (Snapshot, error)
	List(ctx context.Context) ([]Setting, error)
	// Update validates and stores the given key-value pairs.
	Update(ctx context.Context, values map[string]string) error
	// EnsureDefaults seeds missing keys from the shop defaults file.
	EnsureDefaults(ctx context.Context) error
}

var (
	ErrUnknownKey      = errors.New("unknown_setting")
	ErrInvalidValue    = errors.New("invalid_setting_value")
	ErrValueOutOfRange = errors.New("setting_value_out_of_range")
)
