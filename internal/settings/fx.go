package settings

import (
	"context"

	"github.com/colorworks/lackwerk/internal/settings/domain"
	"github.com/colorworks/lackwerk/internal/settings/service"
	"go.uber.org/fx"
)

// Module wires the settings store and seeds defaults on startup.
var Module = fx.Module("settings.service",
	fx.Provide(service.NewService),
	fx.Invoke(func(lc fx.Lifecycle, svc domain.Service) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return svc.EnsureDefaults(ctx)
			},
		})
	}),
)
