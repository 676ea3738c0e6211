package trade

import (
	"github.com/colorworks/lackwerk/internal/trade/repository"
	"github.com/colorworks/lackwerk/internal/trade/service"
	"go.uber.org/fx"
)

var Module = fx.Module("trade.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
