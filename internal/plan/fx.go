package plan

import (
	"github.com/ordemtec/ordemtec/internal/plan/repository"
	"github.com/ordemtec/ordemtec/internal/plan/service"
	"go.uber.org/fx"
)

var Module = fx.Module("plan.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
