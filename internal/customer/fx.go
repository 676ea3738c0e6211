package customer

import (
	"github.com/colorworks/lackwerk/internal/customer/repository"
	"github.com/colorworks/lackwerk/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
