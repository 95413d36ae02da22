package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ordemtec/ordemtec/internal/clock"
	"github.com/ordemtec/ordemtec/internal/config"
	subscriptiondomain "github.com/ordemtec/ordemtec/internal/subscription/domain"
	subscriptionrepo "github.com/ordemtec/ordemtec/internal/subscription/repository"
	tenantdomain "github.com/ordemtec/ordemtec/internal/tenant/domain"
	tenantrepo "github.com/ordemtec/ordemtec/internal/tenant/repository"
	dbpkg "github.com/ordemtec/ordemtec/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newSweepFixture(t *testing.T, fake *clock.FakeClock, trialCfg config.TrialConfig) (*Scheduler, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := dbpkg.NewTest()
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	if err := db.AutoMigrate(&tenantdomain.Tenant{}, &subscriptiondomain.Subscription{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create id generator: %v", err)
	}

	s := New(Config{}, Params{
		DB:         db,
		Log:        zap.NewNop(),
		Clock:      fake,
		TrialCfg:   config.NewStaticTrialConfigHolder(trialCfg),
		TenantRepo: tenantrepo.Provide(),
	})
	return s, db, node
}

func insertTenant(t *testing.T, db *gorm.DB, tenant tenantdomain.Tenant) {
	t.Helper()
	if err := tenantrepo.Provide().Insert(context.Background(), db, &tenant); err != nil {
		t.Fatalf("failed to insert tenant: %v", err)
	}
}

func loadTenant(t *testing.T, db *gorm.DB, id snowflake.ID) *tenantdomain.Tenant {
	t.Helper()
	tenant, err := tenantrepo.Provide().FindByID(context.Background(), db, id)
	if err != nil {
		t.Fatalf("failed to load tenant: %v", err)
	}
	if tenant == nil {
		t.Fatalf("tenant %d not found", id)
	}
	return tenant
}

func TestTenantBlockSweep(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	fake := clock.NewFakeClock(now)
	s, db, node := newSweepFixture(t, fake, config.DefaultTrialConfig())

	created := now.AddDate(0, 0, -10)
	expiredEnd := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	endsToday := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	expired := node.Generate()
	insertTenant(t, db, tenantdomain.Tenant{
		ID: expired, Name: "Oficina Expirada", Email: "a@x.com",
		Status: tenantdomain.TenantStatusActive, TrialActive: true, TrialEndsAt: &expiredEnd,
		PaymentUpToDate: true, CreatedAt: created, UpdatedAt: created,
	})

	stillInTrial := node.Generate()
	insertTenant(t, db, tenantdomain.Tenant{
		ID: stillInTrial, Name: "Oficina No Prazo", Email: "b@x.com",
		Status: tenantdomain.TenantStatusActive, TrialActive: true, TrialEndsAt: &endsToday,
		PaymentUpToDate: true, CreatedAt: created, UpdatedAt: created,
	})

	delinquent := node.Generate()
	insertTenant(t, db, tenantdomain.Tenant{
		ID: delinquent, Name: "Oficina Inadimplente", Email: "c@x.com",
		Status: tenantdomain.TenantStatusActive, TrialActive: false,
		PaymentUpToDate: false, CreatedAt: created, UpdatedAt: created,
	})

	healthy := node.Generate()
	insertTenant(t, db, tenantdomain.Tenant{
		ID: healthy, Name: "Oficina Saudável", Email: "d@x.com",
		Status: tenantdomain.TenantStatusActive, TrialActive: false,
		PaymentUpToDate: true, CreatedAt: created, UpdatedAt: created,
	})

	report, err := s.TenantBlockSweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if report.TenantsExamined != 2 {
		t.Fatalf("expected 2 tenants examined, got %d", report.TenantsExamined)
	}
	if report.TenantsUpdated != 2 {
		t.Fatalf("expected 2 tenants updated, got %d", report.TenantsUpdated)
	}
	if len(report.Failures) != 0 {
		t.Fatalf("expected no failures, got %v", report.Failures)
	}

	got := loadTenant(t, db, expired)
	if !got.Blocked() || got.BlockReason == nil || *got.BlockReason != tenantdomain.BlockReasonTrialExpired {
		t.Fatalf("expired tenant: status=%s reason=%v", got.Status, got.BlockReason)
	}
	if got.TrialActive {
		t.Fatalf("blocking must clear the trial flag")
	}

	got = loadTenant(t, db, delinquent)
	if !got.Blocked() || got.BlockReason == nil || *got.BlockReason != tenantdomain.BlockReasonPaymentOverdue {
		t.Fatalf("delinquent tenant: status=%s reason=%v", got.Status, got.BlockReason)
	}

	// Trial that ends today is not expired on a date-only comparison.
	got = loadTenant(t, db, stillInTrial)
	if got.Blocked() {
		t.Fatalf("tenant whose trial ends today must not be blocked")
	}

	got = loadTenant(t, db, healthy)
	if got.Blocked() {
		t.Fatalf("healthy tenant must not be blocked")
	}
}

func TestTenantBlockSweepIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	fake := clock.NewFakeClock(now)
	s, db, node := newSweepFixture(t, fake, config.DefaultTrialConfig())

	expiredEnd := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	expired := node.Generate()
	insertTenant(t, db, tenantdomain.Tenant{
		ID: expired, Name: "Oficina", Email: "a@x.com",
		Status: tenantdomain.TenantStatusActive, TrialActive: true, TrialEndsAt: &expiredEnd,
		PaymentUpToDate: true, CreatedAt: now.AddDate(0, 0, -30), UpdatedAt: now.AddDate(0, 0, -30),
	})
	delinquent := node.Generate()
	insertTenant(t, db, tenantdomain.Tenant{
		ID: delinquent, Name: "Oficina 2", Email: "b@x.com",
		Status: tenantdomain.TenantStatusActive, TrialActive: false,
		PaymentUpToDate: false, CreatedAt: now.AddDate(0, 0, -30), UpdatedAt: now.AddDate(0, 0, -30),
	})

	first, err := s.TenantBlockSweep(context.Background())
	if err != nil {
		t.Fatalf("first sweep failed: %v", err)
	}
	if first.TenantsUpdated != 2 {
		t.Fatalf("expected 2 updates on first run, got %d", first.TenantsUpdated)
	}

	firstBlocked := loadTenant(t, db, expired)

	second, err := s.TenantBlockSweep(context.Background())
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if second.TenantsUpdated != 0 {
		t.Fatalf("rerun must update nothing, got %d", second.TenantsUpdated)
	}

	// The stored reason and timestamps survive the rerun untouched.
	stillBlocked := loadTenant(t, db, expired)
	if *stillBlocked.BlockReason != *firstBlocked.BlockReason || !stillBlocked.UpdatedAt.Equal(firstBlocked.UpdatedAt) {
		t.Fatalf("rerun mutated an already-blocked tenant")
	}
}

func TestTenantBlockSweepPrefersTrialReason(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	fake := clock.NewFakeClock(now)
	s, db, node := newSweepFixture(t, fake, config.DefaultTrialConfig())

	expiredEnd := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	both := node.Generate()
	insertTenant(t, db, tenantdomain.Tenant{
		ID: both, Name: "Oficina", Email: "a@x.com",
		Status: tenantdomain.TenantStatusActive, TrialActive: true, TrialEndsAt: &expiredEnd,
		PaymentUpToDate: false, CreatedAt: now.AddDate(0, 0, -30), UpdatedAt: now.AddDate(0, 0, -30),
	})

	if _, err := s.TenantBlockSweep(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	got := loadTenant(t, db, both)
	if got.BlockReason == nil || *got.BlockReason != tenantdomain.BlockReasonTrialExpired {
		t.Fatalf("expected trial reason to win, got %v", got.BlockReason)
	}
}

func TestTenantBlockSweepHonorsGraceDays(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	fake := clock.NewFakeClock(now)
	s, db, node := newSweepFixture(t, fake, config.TrialConfig{DefaultTrialDays: 7, GraceDays: 3})

	endedYesterday := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	tenant := node.Generate()
	insertTenant(t, db, tenantdomain.Tenant{
		ID: tenant, Name: "Oficina", Email: "a@x.com",
		Status: tenantdomain.TenantStatusActive, TrialActive: true, TrialEndsAt: &endedYesterday,
		PaymentUpToDate: true, CreatedAt: now.AddDate(0, 0, -10), UpdatedAt: now.AddDate(0, 0, -10),
	})

	report, err := s.TenantBlockSweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if report.TenantsUpdated != 0 {
		t.Fatalf("inside the grace window nothing should be blocked, got %d", report.TenantsUpdated)
	}

	fake.Advance(4 * 24 * time.Hour)
	report, err = s.TenantBlockSweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if report.TenantsUpdated != 1 {
		t.Fatalf("past the grace window the tenant should be blocked, got %d", report.TenantsUpdated)
	}
}

func TestSweepAgreesWithResolver(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	fake := clock.NewFakeClock(now)
	s, db, node := newSweepFixture(t, fake, config.DefaultTrialConfig())

	expiredEnd := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	tenant := node.Generate()
	insertTenant(t, db, tenantdomain.Tenant{
		ID: tenant, Name: "Oficina", Email: "a@x.com",
		Status: tenantdomain.TenantStatusActive, TrialActive: true, TrialEndsAt: &expiredEnd,
		PaymentUpToDate: true, CreatedAt: now.AddDate(0, 0, -10), UpdatedAt: now.AddDate(0, 0, -10),
	})
	sub := subscriptiondomain.Subscription{
		ID: node.Generate(), TenantID: tenant, PlanID: node.Generate(),
		Status: subscriptiondomain.SubscriptionStatusTrial, TrialEndsAt: &expiredEnd,
		StartAt: now.AddDate(0, 0, -10), CreatedAt: now.AddDate(0, 0, -10), UpdatedAt: now.AddDate(0, 0, -10),
	}
	if err := subscriptionrepo.Provide().Insert(context.Background(), db, &sub); err != nil {
		t.Fatalf("failed to insert subscription: %v", err)
	}

	report, err := s.TenantBlockSweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if report.TenantsUpdated != 1 {
		t.Fatalf("expected the tenant to be blocked, got %d updates", report.TenantsUpdated)
	}

	// The read path classifies the same subscription as expired at the
	// same instant the sweep acted on.
	if state := subscriptiondomain.Derive(&sub, fake.Now()); state != subscriptiondomain.StateTrialExpired {
		t.Fatalf("resolver disagrees with sweep: %s", state)
	}
}
