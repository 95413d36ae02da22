package usage

import (
	"github.com/ordemtec/ordemtec/internal/usage/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("usage.counter",
	fx.Provide(repository.Provide),
)
