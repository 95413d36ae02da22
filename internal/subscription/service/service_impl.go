package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ordemtec/ordemtec/internal/clock"
	plandomain "github.com/ordemtec/ordemtec/internal/plan/domain"
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
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       subscriptiondomain.Repository
	TenantRepo tenantdomain.Repository
	PlanSvc    plandomain.Service
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       subscriptiondomain.Repository
	tenantRepo tenantdomain.Repository
	plansvc    plandomain.Service
}

func NewService(p ServiceParam) subscriptiondomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("subscription.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		tenantRepo: p.TenantRepo,
		plansvc:    p.PlanSvc,
	}
}

func (s *Service) ResolveCurrent(ctx context.Context, tenantID snowflake.ID) (subscriptiondomain.Resolution, error) {
	if tenantID == 0 {
		return subscriptiondomain.Resolution{}, tenantdomain.ErrInvalidTenant
	}

	subscription, err := s.repo.FindLatestByTenant(ctx, s.db, tenantID)
	if err != nil {
		return subscriptiondomain.Resolution{}, fmt.Errorf("%w: %v", subscriptiondomain.ErrStoreUnavailable, err)
	}

	return subscriptiondomain.Resolution{
		Subscription: subscription,
		State:        subscriptiondomain.Derive(subscription, s.clock.Now()),
	}, nil
}

func (s *Service) CreateTrial(ctx context.Context, req subscriptiondomain.CreateTrialRequest) (subscriptiondomain.Subscription, error) {
	if req.TenantID == 0 || req.PlanID == 0 || req.TrialDays < 0 {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrInvalidSubscription
	}

	now := s.clock.Now()
	subscription := subscriptiondomain.Subscription{
		ID:        s.genID.Generate(),
		TenantID:  req.TenantID,
		PlanID:    req.PlanID,
		Status:    subscriptiondomain.SubscriptionStatusTrial,
		StartAt:   now,
		Amount:    req.Amount,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.TrialDays > 0 {
		trialEnd := now.AddDate(0, 0, req.TrialDays)
		subscription.TrialEndsAt = &trialEnd
	}

	if err := s.repo.Insert(ctx, s.db, &subscription); err != nil {
		return subscriptiondomain.Subscription{}, err
	}
	return subscription, nil
}

func (s *Service) Upgrade(ctx context.Context, req subscriptiondomain.UpgradeRequest) (subscriptiondomain.Subscription, error) {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(req.TenantID))
	if err != nil || tenantID == 0 {
		return subscriptiondomain.Subscription{}, tenantdomain.ErrInvalidTenant
	}

	plan, err := s.plansvc.Get(ctx, req.PlanID)
	if err != nil {
		return subscriptiondomain.Subscription{}, err
	}

	tenant, err := s.tenantRepo.FindByID(ctx, s.db, tenantID)
	if err != nil {
		return subscriptiondomain.Subscription{}, err
	}
	if tenant == nil {
		return subscriptiondomain.Subscription{}, tenantdomain.ErrTenantNotFound
	}

	now := s.clock.Now()
	nextBilling := nextBillingDate(now, plan.BillingPeriod)
	subscription := subscriptiondomain.Subscription{
		ID:            s.genID.Generate(),
		TenantID:      tenantID,
		PlanID:        plan.ID,
		Status:        subscriptiondomain.SubscriptionStatusActive,
		StartAt:       now,
		NextBillingAt: &nextBilling,
		Amount:        plan.Price,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &subscription); err != nil {
			return err
		}
		if err := s.tenantRepo.MarkPaid(ctx, tx, tenantID, now); err != nil {
			return err
		}
		if tenant.Blocked() {
			return s.tenantRepo.Unblock(ctx, tx, tenantID, now)
		}
		return nil
	}); err != nil {
		return subscriptiondomain.Subscription{}, err
	}

	s.log.Info("subscription.upgraded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("plan_id", plan.ID.String()),
		zap.String("subscription_id", subscription.ID.String()),
	)
	return subscription, nil
}

var allowedTransitions = map[subscriptiondomain.SubscriptionStatus][]subscriptiondomain.SubscriptionStatus{
	subscriptiondomain.SubscriptionStatusTrial: {
		subscriptiondomain.SubscriptionStatusActive,
		subscriptiondomain.SubscriptionStatusSuspended,
		subscriptiondomain.SubscriptionStatusPendingPayment,
		subscriptiondomain.SubscriptionStatusCancelled,
	},
	subscriptiondomain.SubscriptionStatusActive: {
		subscriptiondomain.SubscriptionStatusSuspended,
		subscriptiondomain.SubscriptionStatusPendingPayment,
		subscriptiondomain.SubscriptionStatusCancelled,
	},
	subscriptiondomain.SubscriptionStatusPendingPayment: {
		subscriptiondomain.SubscriptionStatusActive,
		subscriptiondomain.SubscriptionStatusSuspended,
		subscriptiondomain.SubscriptionStatusCancelled,
	},
	subscriptiondomain.SubscriptionStatusSuspended: {
		subscriptiondomain.SubscriptionStatusActive,
		subscriptiondomain.SubscriptionStatusCancelled,
	},
	// cancelled is terminal
}

func isTransitionAllowed(from, to subscriptiondomain.SubscriptionStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func isValidStatus(status subscriptiondomain.SubscriptionStatus) bool {
	switch status {
	case subscriptiondomain.SubscriptionStatusTrial,
		subscriptiondomain.SubscriptionStatusActive,
		subscriptiondomain.SubscriptionStatusSuspended,
		subscriptiondomain.SubscriptionStatusPendingPayment,
		subscriptiondomain.SubscriptionStatusCancelled:
		return true
	default:
		return false
	}
}

func (s *Service) Transition(ctx context.Context, id string, target subscriptiondomain.SubscriptionStatus, reason subscriptiondomain.TransitionReason) error {
	subscriptionID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || subscriptionID == 0 {
		return subscriptiondomain.ErrInvalidSubscription
	}
	if !isValidStatus(target) {
		return subscriptiondomain.ErrInvalidTargetStatus
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subscription, err := s.repo.FindByID(ctx, tx, subscriptionID)
		if err != nil {
			return err
		}
		if subscription == nil {
			return subscriptiondomain.ErrSubscriptionNotFound
		}
		if subscription.Status == target {
			return nil
		}
		if !isTransitionAllowed(subscription.Status, target) {
			return subscriptiondomain.ErrInvalidTransition
		}

		now := s.clock.Now()
		if err := s.repo.UpdateStatus(ctx, tx, subscriptionID, target, now); err != nil {
			return err
		}
		s.log.Info("subscription.transition",
			zap.String("subscription_id", subscriptionID.String()),
			zap.String("from", string(subscription.Status)),
			zap.String("to", string(target)),
			zap.String("reason", string(reason)),
		)
		return nil
	})
}

func (s *Service) ListByTenant(ctx context.Context, tenantID snowflake.ID) ([]subscriptiondomain.Subscription, error) {
	if tenantID == 0 {
		return nil, tenantdomain.ErrInvalidTenant
	}
	return s.repo.ListByTenant(ctx, s.db, tenantID)
}

func nextBillingDate(from time.Time, period string) time.Time {
	if strings.EqualFold(period, "yearly") {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}
