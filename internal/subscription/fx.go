package subscription

import (
	"github.com/ordemtec/ordemtec/internal/subscription/repository"
	"github.com/ordemtec/ordemtec/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
