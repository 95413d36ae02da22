package entitlement

import (
	"github.com/ordemtec/ordemtec/internal/entitlement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("entitlement.evaluator",
	fx.Provide(service.NewEvaluator),
)
