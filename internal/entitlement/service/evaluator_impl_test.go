package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/ordemtec/ordemtec/internal/plan/domain"
	subscriptiondomain "github.com/ordemtec/ordemtec/internal/subscription/domain"
	usagedomain "github.com/ordemtec/ordemtec/internal/usage/domain"
	usagerepo "github.com/ordemtec/ordemtec/internal/usage/repository"
	dbpkg "github.com/ordemtec/ordemtec/pkg/db"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type mockSubscriptionSvc struct {
	resolution subscriptiondomain.Resolution
	err        error
}

func (m *mockSubscriptionSvc) ResolveCurrent(context.Context, snowflake.ID) (subscriptiondomain.Resolution, error) {
	return m.resolution, m.err
}
func (m *mockSubscriptionSvc) CreateTrial(context.Context, subscriptiondomain.CreateTrialRequest) (subscriptiondomain.Subscription, error) {
	return subscriptiondomain.Subscription{}, nil
}
func (m *mockSubscriptionSvc) Upgrade(context.Context, subscriptiondomain.UpgradeRequest) (subscriptiondomain.Subscription, error) {
	return subscriptiondomain.Subscription{}, nil
}
func (m *mockSubscriptionSvc) Transition(context.Context, string, subscriptiondomain.SubscriptionStatus, subscriptiondomain.TransitionReason) error {
	return nil
}
func (m *mockSubscriptionSvc) ListByTenant(context.Context, snowflake.ID) ([]subscriptiondomain.Subscription, error) {
	return nil, nil
}

type mockPlanSvc struct {
	plan plandomain.Plan
	err  error
}

func (m *mockPlanSvc) Create(context.Context, plandomain.CreatePlanRequest) (plandomain.Plan, error) {
	return plandomain.Plan{}, nil
}
func (m *mockPlanSvc) Get(context.Context, string) (plandomain.Plan, error) {
	return m.plan, m.err
}
func (m *mockPlanSvc) GetByCode(context.Context, string) (plandomain.Plan, error) {
	return m.plan, m.err
}
func (m *mockPlanSvc) List(context.Context) ([]plandomain.Plan, error) {
	return nil, nil
}

func newEvaluatorTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := dbpkg.NewTest()
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	for _, kind := range usagedomain.Kinds() {
		err := db.Exec(`CREATE TABLE ` + kind.Table() + ` (
			id INTEGER PRIMARY KEY,
			tenant_id INTEGER NOT NULL,
			nome TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`).Error
		if err != nil {
			t.Fatalf("create %s table: %v", kind.Table(), err)
		}
	}
	return db
}

func seedResources(t *testing.T, db *gorm.DB, node *snowflake.Node, tenantID snowflake.ID, kind usagedomain.ResourceKind, n int) {
	t.Helper()
	_, recorder := usagerepo.Provide()
	for i := 0; i < n; i++ {
		record := usagedomain.Record{
			ID:        node.Generate(),
			TenantID:  tenantID,
			Name:      fmt.Sprintf("registro %d", i),
			CreatedAt: time.Now().UTC(),
		}
		if err := recorder.Insert(context.Background(), db, kind, &record); err != nil {
			t.Fatalf("insert resource: %v", err)
		}
	}
}

func trialResolution(planID snowflake.ID) subscriptiondomain.Resolution {
	return subscriptiondomain.Resolution{
		Subscription: &subscriptiondomain.Subscription{
			ID:     snowflake.ID(10),
			PlanID: planID,
			Status: subscriptiondomain.SubscriptionStatusTrial,
		},
		State: subscriptiondomain.StateTrialActive,
	}
}

func newTestEvaluator(db *gorm.DB, subsvc subscriptiondomain.Service, plansvc plandomain.Service) *Evaluator {
	counter, _ := usagerepo.Provide()
	return NewEvaluator(ServiceParam{
		DB:      db,
		Log:     zap.NewNop(),
		SubSvc:  subsvc,
		PlanSvc: plansvc,
		Counter: counter,
	}).(*Evaluator)
}

func TestCanCreateAllowsNonTrialStates(t *testing.T) {
	db := newEvaluatorTestDB(t)
	node, _ := snowflake.NewNode(1)
	tenantID := node.Generate()

	states := []subscriptiondomain.State{
		subscriptiondomain.StateActive,
		subscriptiondomain.StateTrialExpired,
		subscriptiondomain.StateSuspended,
		subscriptiondomain.StatePendingPayment,
		subscriptiondomain.StateCancelled,
	}
	for _, state := range states {
		subsvc := &mockSubscriptionSvc{resolution: subscriptiondomain.Resolution{
			Subscription: &subscriptiondomain.Subscription{ID: 1, PlanID: 2},
			State:        state,
		}}
		evaluator := newTestEvaluator(db, subsvc, &mockPlanSvc{})

		allowed, err := evaluator.CanCreate(context.Background(), tenantID, usagedomain.ResourceProdutos)
		if err != nil {
			t.Fatalf("state %s: unexpected error: %v", state, err)
		}
		if !allowed {
			t.Fatalf("state %s should not be limited by the evaluator", state)
		}
	}

	// No subscription at all is unrestricted too.
	subsvc := &mockSubscriptionSvc{resolution: subscriptiondomain.Resolution{State: subscriptiondomain.StateNoSubscription}}
	evaluator := newTestEvaluator(db, subsvc, &mockPlanSvc{})
	allowed, err := evaluator.CanCreate(context.Background(), tenantID, usagedomain.ResourceProdutos)
	if err != nil || !allowed {
		t.Fatalf("no subscription should be allowed, got allowed=%v err=%v", allowed, err)
	}
}

func TestCanCreateTrialLimit(t *testing.T) {
	db := newEvaluatorTestDB(t)
	node, _ := snowflake.NewNode(1)
	tenantID := node.Generate()
	planID := node.Generate()

	plansvc := &mockPlanSvc{plan: plandomain.Plan{
		ID:     planID,
		Limits: datatypes.JSONMap{"produtos": int64(3)},
	}}
	evaluator := newTestEvaluator(db, &mockSubscriptionSvc{resolution: trialResolution(planID)}, plansvc)

	seedResources(t, db, node, tenantID, usagedomain.ResourceProdutos, 2)

	allowed, err := evaluator.CanCreate(context.Background(), tenantID, usagedomain.ResourceProdutos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatalf("2 of 3 used should allow creation")
	}

	seedResources(t, db, node, tenantID, usagedomain.ResourceProdutos, 1)

	allowed, err = evaluator.CanCreate(context.Background(), tenantID, usagedomain.ResourceProdutos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("3 of 3 used should deny creation")
	}
}

func TestCanCreateDistinguishesZeroFromAbsent(t *testing.T) {
	db := newEvaluatorTestDB(t)
	node, _ := snowflake.NewNode(1)
	tenantID := node.Generate()
	planID := node.Generate()

	plansvc := &mockPlanSvc{plan: plandomain.Plan{
		ID:     planID,
		Limits: datatypes.JSONMap{"fornecedores": int64(0)},
	}}
	evaluator := newTestEvaluator(db, &mockSubscriptionSvc{resolution: trialResolution(planID)}, plansvc)

	// Explicit zero blocks even the first creation.
	allowed, err := evaluator.CanCreate(context.Background(), tenantID, usagedomain.ResourceFornecedores)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("explicit zero limit should deny creation")
	}

	// A kind missing from the limits map is unlimited.
	allowed, err = evaluator.CanCreate(context.Background(), tenantID, usagedomain.ResourceClientes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatalf("absent limit should mean unlimited")
	}
}

func TestCanCreateFailsOpenOnMissingPlan(t *testing.T) {
	db := newEvaluatorTestDB(t)
	node, _ := snowflake.NewNode(1)
	planID := node.Generate()

	plansvc := &mockPlanSvc{err: plandomain.ErrPlanNotFound}
	evaluator := newTestEvaluator(db, &mockSubscriptionSvc{resolution: trialResolution(planID)}, plansvc)

	allowed, err := evaluator.CanCreate(context.Background(), node.Generate(), usagedomain.ResourceOrdens)
	if err != nil {
		t.Fatalf("missing plan must not surface an error: %v", err)
	}
	if !allowed {
		t.Fatalf("missing plan must fail open")
	}
}

func TestCanCreateFailsClosedOnStoreError(t *testing.T) {
	db := newEvaluatorTestDB(t)
	node, _ := snowflake.NewNode(1)

	storeErr := fmt.Errorf("%w: connection refused", subscriptiondomain.ErrStoreUnavailable)
	evaluator := newTestEvaluator(db, &mockSubscriptionSvc{err: storeErr}, &mockPlanSvc{})

	allowed, err := evaluator.CanCreate(context.Background(), node.Generate(), usagedomain.ResourceUsuarios)
	if !errors.Is(err, subscriptiondomain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if allowed {
		t.Fatalf("store failure must never authorize a creation")
	}
}
