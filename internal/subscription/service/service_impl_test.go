package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ordemtec/ordemtec/internal/clock"
	subscriptiondomain "github.com/ordemtec/ordemtec/internal/subscription/domain"
	subscriptionrepo "github.com/ordemtec/ordemtec/internal/subscription/repository"
	tenantrepo "github.com/ordemtec/ordemtec/internal/tenant/repository"
	dbpkg "github.com/ordemtec/ordemtec/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, fake *clock.FakeClock) (subscriptiondomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := dbpkg.NewTest()
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	if err := db.AutoMigrate(&subscriptiondomain.Subscription{}); err != nil {
		t.Fatalf("failed to migrate subscriptions: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create id generator: %v", err)
	}

	svc := NewService(ServiceParam{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fake,
		Repo:       subscriptionrepo.Provide(),
		TenantRepo: tenantrepo.Provide(),
	})
	return svc, db, node
}

func insertSubscription(t *testing.T, db *gorm.DB, sub subscriptiondomain.Subscription) {
	t.Helper()
	if err := subscriptionrepo.Provide().Insert(context.Background(), db, &sub); err != nil {
		t.Fatalf("failed to insert subscription: %v", err)
	}
}

func TestResolveCurrentNoSubscription(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	svc, _, node := newTestService(t, fake)

	resolution, err := svc.ResolveCurrent(context.Background(), node.Generate())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolution.Subscription != nil {
		t.Fatalf("expected nil subscription, got %+v", resolution.Subscription)
	}
	if resolution.State != subscriptiondomain.StateNoSubscription {
		t.Fatalf("expected %s, got %s", subscriptiondomain.StateNoSubscription, resolution.State)
	}
}

func TestResolveCurrentPicksLatestRow(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	fake := clock.NewFakeClock(start)
	svc, db, node := newTestService(t, fake)

	tenantID := node.Generate()
	older := node.Generate()
	newer := node.Generate()

	insertSubscription(t, db, subscriptiondomain.Subscription{
		ID: older, TenantID: tenantID, PlanID: node.Generate(),
		Status:  subscriptiondomain.SubscriptionStatusCancelled,
		StartAt: start.AddDate(0, -2, 0), CreatedAt: start.AddDate(0, -2, 0), UpdatedAt: start.AddDate(0, -2, 0),
	})
	insertSubscription(t, db, subscriptiondomain.Subscription{
		ID: newer, TenantID: tenantID, PlanID: node.Generate(),
		Status:  subscriptiondomain.SubscriptionStatusActive,
		StartAt: start.AddDate(0, -1, 0), CreatedAt: start.AddDate(0, -1, 0), UpdatedAt: start.AddDate(0, -1, 0),
	})

	resolution, err := svc.ResolveCurrent(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolution.Subscription == nil || resolution.Subscription.ID != newer {
		t.Fatalf("expected latest row %d, got %+v", newer, resolution.Subscription)
	}
	if resolution.State != subscriptiondomain.StateActive {
		t.Fatalf("expected %s, got %s", subscriptiondomain.StateActive, resolution.State)
	}
}

func TestResolveCurrentBreaksCreatedAtTiesByID(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	fake := clock.NewFakeClock(start)
	svc, db, node := newTestService(t, fake)

	tenantID := node.Generate()
	lower := node.Generate()
	higher := node.Generate()
	createdAt := start.AddDate(0, -1, 0)

	insertSubscription(t, db, subscriptiondomain.Subscription{
		ID: lower, TenantID: tenantID, PlanID: node.Generate(),
		Status:  subscriptiondomain.SubscriptionStatusTrial,
		StartAt: createdAt, CreatedAt: createdAt, UpdatedAt: createdAt,
	})
	insertSubscription(t, db, subscriptiondomain.Subscription{
		ID: higher, TenantID: tenantID, PlanID: node.Generate(),
		Status:  subscriptiondomain.SubscriptionStatusActive,
		StartAt: createdAt, CreatedAt: createdAt, UpdatedAt: createdAt,
	})

	resolution, err := svc.ResolveCurrent(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolution.Subscription == nil || resolution.Subscription.ID != higher {
		t.Fatalf("expected higher id %d to win the tie, got %+v", higher, resolution.Subscription)
	}
}

func TestResolveCurrentStoreUnavailable(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	svc, db, node := newTestService(t, fake)

	if err := db.Exec(`DROP TABLE subscriptions`).Error; err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}

	_, err := svc.ResolveCurrent(context.Background(), node.Generate())
	if !errors.Is(err, subscriptiondomain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestCreateTrialSetsTrialEnd(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	fake := clock.NewFakeClock(start)
	svc, _, node := newTestService(t, fake)

	tenantID := node.Generate()
	sub, err := svc.CreateTrial(context.Background(), subscriptiondomain.CreateTrialRequest{
		TenantID:  tenantID,
		PlanID:    node.Generate(),
		TrialDays: 7,
	})
	if err != nil {
		t.Fatalf("create trial failed: %v", err)
	}
	if sub.Status != subscriptiondomain.SubscriptionStatusTrial {
		t.Fatalf("expected trial status, got %s", sub.Status)
	}
	if sub.TrialEndsAt == nil || !sub.TrialEndsAt.Equal(start.AddDate(0, 0, 7)) {
		t.Fatalf("unexpected trial end: %v", sub.TrialEndsAt)
	}

	resolution, err := svc.ResolveCurrent(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolution.State != subscriptiondomain.StateTrialActive {
		t.Fatalf("expected %s, got %s", subscriptiondomain.StateTrialActive, resolution.State)
	}

	// Past the trial end the same row derives as expired.
	fake.Advance(8 * 24 * time.Hour)
	resolution, err = svc.ResolveCurrent(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolution.State != subscriptiondomain.StateTrialExpired {
		t.Fatalf("expected %s, got %s", subscriptiondomain.StateTrialExpired, resolution.State)
	}
}

func TestTransitionRules(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	fake := clock.NewFakeClock(start)
	svc, db, node := newTestService(t, fake)

	cancelled := node.Generate()
	insertSubscription(t, db, subscriptiondomain.Subscription{
		ID: cancelled, TenantID: node.Generate(), PlanID: node.Generate(),
		Status:  subscriptiondomain.SubscriptionStatusCancelled,
		StartAt: start, CreatedAt: start, UpdatedAt: start,
	})

	err := svc.Transition(context.Background(), cancelled.String(), subscriptiondomain.SubscriptionStatusActive, "test")
	if !errors.Is(err, subscriptiondomain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition out of cancelled, got %v", err)
	}

	trial := node.Generate()
	insertSubscription(t, db, subscriptiondomain.Subscription{
		ID: trial, TenantID: node.Generate(), PlanID: node.Generate(),
		Status:  subscriptiondomain.SubscriptionStatusTrial,
		StartAt: start, CreatedAt: start, UpdatedAt: start,
	})

	if err := svc.Transition(context.Background(), trial.String(), subscriptiondomain.SubscriptionStatusActive, "test"); err != nil {
		t.Fatalf("trial to active should be allowed: %v", err)
	}
	// Same-status transition is a no-op, not an error.
	if err := svc.Transition(context.Background(), trial.String(), subscriptiondomain.SubscriptionStatusActive, "test"); err != nil {
		t.Fatalf("same-status transition should be a no-op: %v", err)
	}

	err = svc.Transition(context.Background(), trial.String(), "paused", "test")
	if !errors.Is(err, subscriptiondomain.ErrInvalidTargetStatus) {
		t.Fatalf("expected ErrInvalidTargetStatus, got %v", err)
	}
}
