package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SweepMetrics instruments the lifecycle transition job.
type SweepMetrics struct {
	jobRuns        *prometheus.CounterVec
	jobErrors      *prometheus.CounterVec
	jobDuration    *prometheus.HistogramVec
	tenantsBlocked *prometheus.CounterVec
}

var (
	sweepMu       sync.Mutex
	sweepInstance *SweepMetrics
	sweepConfig   = Config{ServiceName: "ordemtec"}
)

// SweepWithConfig sets the static labels before first use.
func SweepWithConfig(cfg Config) {
	sweepMu.Lock()
	defer sweepMu.Unlock()
	sweepConfig = cfg
}

// Sweep returns the process-wide sweep metrics, registering them on the
// default registerer on first use.
func Sweep() *SweepMetrics {
	sweepMu.Lock()
	defer sweepMu.Unlock()
	if sweepInstance == nil {
		sweepInstance = newSweepMetrics(sweepConfig)
	}
	return sweepInstance
}

// ResetSweepForTest discards the cached instance so tests can swap the
// default prometheus registry.
func ResetSweepForTest() {
	sweepMu.Lock()
	defer sweepMu.Unlock()
	sweepInstance = nil
}

func newSweepMetrics(cfg Config) *SweepMetrics {
	labels := prometheus.Labels{
		"service": cfg.ServiceName,
		"env":     cfg.Environment,
	}
	return &SweepMetrics{
		jobRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "ordemtec_sweep_job_runs_total",
			Help:        "Sweep job invocations.",
			ConstLabels: labels,
		}, []string{"job"}),
		jobErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "ordemtec_sweep_job_errors_total",
			Help:        "Per-tenant failures inside sweep jobs.",
			ConstLabels: labels,
		}, []string{"job"}),
		jobDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "ordemtec_sweep_job_duration_seconds",
			Help:        "Sweep job wall time.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"job"}),
		tenantsBlocked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "ordemtec_sweep_tenants_blocked_total",
			Help:        "Tenants moved to the blocked state, by reason.",
			ConstLabels: labels,
		}, []string{"reason"}),
	}
}

func (m *SweepMetrics) IncJobRun(job string) {
	m.jobRuns.WithLabelValues(job).Inc()
}

func (m *SweepMetrics) IncJobError(job string) {
	m.jobErrors.WithLabelValues(job).Inc()
}

func (m *SweepMetrics) ObserveJobDuration(job string, d time.Duration) {
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func (m *SweepMetrics) IncTenantBlocked(reason string) {
	m.tenantsBlocked.WithLabelValues(reason).Inc()
}
