// Package scheduler runs the periodic tenant lifecycle jobs.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/ordemtec/ordemtec/internal/clock"
	"github.com/ordemtec/ordemtec/internal/config"
	"github.com/ordemtec/ordemtec/internal/observability/metrics"
	tenantdomain "github.com/ordemtec/ordemtec/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Report summarizes one sweep run. Failures carries one message per
// tenant that could not be updated; the run itself still succeeds.
type Report struct {
	TenantsExamined int      `json:"tenants_examined"`
	TenantsUpdated  int      `json:"tenants_updated"`
	Failures        []string `json:"failures,omitempty"`
}

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	TrialCfg   *config.TrialConfigHolder
	TenantRepo tenantdomain.Repository
}

type Scheduler struct {
	cfg        Config
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	trialCfg   *config.TrialConfigHolder
	tenantRepo tenantdomain.Repository
}

func New(cfg Config, p Params) *Scheduler {
	return &Scheduler{
		cfg:        cfg.withDefaults(),
		db:         p.DB,
		log:        p.Log.Named("scheduler"),
		clock:      p.Clock,
		trialCfg:   p.TrialCfg,
		tenantRepo: p.TenantRepo,
	}
}

const jobTenantBlockSweep = "tenant_block_sweep"

// TenantBlockSweep blocks tenants whose trial ended before today or
// whose payment flag is down. Per-tenant failures are collected rather
// than aborting the run; a rerun over the same data updates nothing.
func (s *Scheduler) TenantBlockSweep(ctx context.Context) (Report, error) {
	now := s.clock.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	// The grace window shifts the cutoff backwards: with N grace days a
	// trial that ended yesterday survives N more sweeps.
	cutoff := today.AddDate(0, 0, -s.trialCfg.Get().GraceDays)

	candidates, err := s.tenantRepo.FindNeedingBlock(ctx, s.db, cutoff)
	if err != nil {
		return Report{}, err
	}
	if len(candidates) > s.cfg.BatchSize {
		candidates = candidates[:s.cfg.BatchSize]
	}

	report := Report{TenantsExamined: len(candidates)}
	var errs []error
	for i := range candidates {
		tenant := &candidates[i]
		reason := blockReason(tenant, cutoff)

		updated, err := s.tenantRepo.UpdateBlockStatus(ctx, s.db, tenant.ID, reason, now)
		if err != nil {
			errs = append(errs, err)
			report.Failures = append(report.Failures, tenant.ID.String()+": "+err.Error())
			metrics.Sweep().IncJobError(jobTenantBlockSweep)
			continue
		}
		if !updated {
			continue
		}

		report.TenantsUpdated++
		metrics.Sweep().IncTenantBlocked(reason)
		s.log.Info("sweep.tenant_blocked",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("reason", reason),
		)
	}

	return report, errors.Join(errs...)
}

// blockReason picks the message shown to the shop operator. Trial
// expiry wins when both conditions hold.
func blockReason(tenant *tenantdomain.Tenant, cutoff time.Time) string {
	if tenant.TrialActive && tenant.TrialEndsAt != nil && tenant.TrialEndsAt.Before(cutoff) {
		return tenantdomain.BlockReasonTrialExpired
	}
	return tenantdomain.BlockReasonPaymentOverdue
}

// RunOnce executes every job a single time. Used by the cron binary and
// the internal trigger endpoint.
func (s *Scheduler) RunOnce(ctx context.Context) (Report, error) {
	return s.runJob(ctx, jobTenantBlockSweep, s.TenantBlockSweep)
}

// RunForever fires the jobs on the configured interval until the
// context is cancelled. The first run happens immediately.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil {
			s.log.Error("sweep.run_failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) runJob(ctx context.Context, name string, job func(context.Context) (Report, error)) (Report, error) {
	started := time.Now()
	metrics.Sweep().IncJobRun(name)

	report, err := job(ctx)
	elapsed := time.Since(started)
	metrics.Sweep().ObserveJobDuration(name, elapsed)

	if err != nil {
		s.log.Warn("sweep.job_partial",
			zap.String("job", name),
			zap.Int("tenants_examined", report.TenantsExamined),
			zap.Int("tenants_updated", report.TenantsUpdated),
			zap.Int("failures", len(report.Failures)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return report, err
	}

	s.log.Info("sweep.job_done",
		zap.String("job", name),
		zap.Int("tenants_examined", report.TenantsExamined),
		zap.Int("tenants_updated", report.TenantsUpdated),
		zap.Duration("elapsed", elapsed),
	)
	return report, nil
}
