package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/ordemtec/ordemtec/internal/clock"
	"github.com/ordemtec/ordemtec/internal/config"
	plandomain "github.com/ordemtec/ordemtec/internal/plan/domain"
	signupdomain "github.com/ordemtec/ordemtec/internal/signup/domain"
	subscriptiondomain "github.com/ordemtec/ordemtec/internal/subscription/domain"
	tenantdomain "github.com/ordemtec/ordemtec/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Cfg        config.Config
	TrialCfg   *config.TrialConfigHolder
	GenID      *snowflake.Node
	Clock      clock.Clock
	TenantRepo tenantdomain.Repository
	SubRepo    subscriptiondomain.Repository
	PlanSvc    plandomain.Service
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	cfg        config.Config
	trialCfg   *config.TrialConfigHolder
	genID      *snowflake.Node
	clock      clock.Clock
	tenantRepo tenantdomain.Repository
	subRepo    subscriptiondomain.Repository
	plansvc    plandomain.Service
}

func NewService(p ServiceParam) signupdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("signup.service"),
		cfg:        p.Cfg,
		trialCfg:   p.TrialCfg,
		genID:      p.GenID,
		clock:      p.Clock,
		tenantRepo: p.TenantRepo,
		subRepo:    p.SubRepo,
		plansvc:    p.PlanSvc,
	}
}

func (s *Service) Signup(ctx context.Context, req signupdomain.SignupRequest) (signupdomain.SignupResult, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return signupdomain.SignupResult{}, signupdomain.ErrInvalidSignup
	}

	planCode := strings.TrimSpace(req.PlanCode)
	if planCode == "" {
		planCode = s.cfg.DefaultPlanCode
	}
	plan, err := s.plansvc.GetByCode(ctx, planCode)
	if err != nil {
		return signupdomain.SignupResult{}, err
	}

	trialDays := plan.TrialDays
	if trialDays <= 0 {
		trialDays = s.trialCfg.Get().DefaultTrialDays
	}

	now := s.clock.Now()
	tenant := tenantdomain.Tenant{
		ID:              s.genID.Generate(),
		Name:            name,
		Email:           email,
		Status:          tenantdomain.TenantStatusActive,
		TrialActive:     trialDays > 0,
		PaymentUpToDate: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	subscription := subscriptiondomain.Subscription{
		ID:        s.genID.Generate(),
		TenantID:  tenant.ID,
		PlanID:    plan.ID,
		Status:    subscriptiondomain.SubscriptionStatusTrial,
		StartAt:   now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if trialDays > 0 {
		trialEnd := now.AddDate(0, 0, trialDays)
		subscription.TrialEndsAt = &trialEnd
		tenant.TrialEndsAt = &trialEnd
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.tenantRepo.Insert(ctx, tx, &tenant); err != nil {
			return err
		}
		return s.subRepo.Insert(ctx, tx, &subscription)
	}); err != nil {
		return signupdomain.SignupResult{}, err
	}

	s.log.Info("signup.completed",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("plan_code", plan.Code),
		zap.Int("trial_days", trialDays),
	)
	return signupdomain.SignupResult{Tenant: tenant, Subscription: subscription}, nil
}
