package tenant

import (
	"github.com/ordemtec/ordemtec/internal/tenant/repository"
	"github.com/ordemtec/ordemtec/internal/tenant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
