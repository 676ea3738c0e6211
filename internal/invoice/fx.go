package invoice

import (
	"github.com/colorworks/lackwerk/internal/invoice/repository"
	"github.com/colorworks/lackwerk/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
