package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	entitlementdomain "github.com/ordemtec/ordemtec/internal/entitlement/domain"
	plandomain "github.com/ordemtec/ordemtec/internal/plan/domain"
	subscriptiondomain "github.com/ordemtec/ordemtec/internal/subscription/domain"
	tenantdomain "github.com/ordemtec/ordemtec/internal/tenant/domain"
	usagedomain "github.com/ordemtec/ordemtec/internal/usage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	SubSvc  subscriptiondomain.Service
	PlanSvc plandomain.Service
	Counter usagedomain.Counter
}

type Evaluator struct {
	db      *gorm.DB
	log     *zap.Logger
	subsvc  subscriptiondomain.Service
	plansvc plandomain.Service
	counter usagedomain.Counter
}

func NewEvaluator(p ServiceParam) entitlementdomain.Service {
	return &Evaluator{
		db:      p.DB,
		log:     p.Log.Named("entitlement.evaluator"),
		subsvc:  p.SubSvc,
		plansvc: p.PlanSvc,
		counter: p.Counter,
	}
}

func (e *Evaluator) CanCreate(ctx context.Context, tenantID snowflake.ID, kind usagedomain.ResourceKind) (bool, error) {
	if tenantID == 0 {
		return false, tenantdomain.ErrInvalidTenant
	}
	if !kind.Valid() {
		return false, usagedomain.ErrUnknownResourceKind
	}

	resolution, err := e.subsvc.ResolveCurrent(ctx, tenantID)
	if err != nil {
		// Includes ErrStoreUnavailable: never allow privileged creation
		// on an unresolvable state.
		return false, err
	}

	// Limits gate active trials only. Expired trials and delinquent
	// accounts are handled by the tenant block sweep, and a tenant with
	// no subscription row is intentionally unrestricted here.
	if !resolution.State.InTrial() {
		return true, nil
	}

	plan, err := e.plansvc.Get(ctx, resolution.Subscription.PlanID.String())
	if err != nil {
		if errors.Is(err, plandomain.ErrPlanNotFound) || errors.Is(err, plandomain.ErrInvalidPlan) {
			// Catalog misconfiguration must not lock tenants out; let the
			// action through and leave a trail for operators.
			e.log.Warn("entitlement.plan_misconfigured",
				zap.String("tenant_id", tenantID.String()),
				zap.String("plan_id", resolution.Subscription.PlanID.String()),
				zap.Error(err),
			)
			return true, nil
		}
		return false, err
	}

	limit, configured := plan.LimitFor(string(kind))
	if !configured {
		return true, nil
	}

	count, err := e.counter.CountByTenant(ctx, e.db, tenantID, kind)
	if err != nil {
		return false, err
	}

	// An explicit zero limit blocks even the first creation; only a
	// missing key means unlimited.
	return count < limit, nil
}
