package audit

import (
	"github.com/colorworks/lackwerk/internal/audit/repository"
	"github.com/colorworks/lackwerk/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
