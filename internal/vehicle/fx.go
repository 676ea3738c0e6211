package vehicle

import (
	"github.com/colorworks/lackwerk/internal/vehicle/repository"
	"github.com/colorworks/lackwerk/internal/vehicle/service"
	"go.uber.org/fx"
)

var Module = fx.Module("vehicle.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
