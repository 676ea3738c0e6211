package workorder

import (
	"github.com/colorworks/lackwerk/internal/workorder/repository"
	"github.com/colorworks/lackwerk/internal/workorder/service"
	"go.uber.org/fx"
)

var Module = fx.Module("workorder.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
