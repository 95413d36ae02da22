// The sweeper runs the tenant block sweep once and exits. Intended for
// cron or one-shot container jobs where the monolith's in-process
// ticker is disabled.
package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/ordemtec/ordemtec/internal/clock"
	"github.com/ordemtec/ordemtec/internal/config"
	"github.com/ordemtec/ordemtec/internal/observability"
	"github.com/ordemtec/ordemtec/internal/scheduler"
	"github.com/ordemtec/ordemtec/internal/tenant"
	"github.com/ordemtec/ordemtec/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		tenant.Module,
		scheduler.Module,

		fx.Invoke(RunSweepOnce),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func RunSweepOnce(lc fx.Lifecycle, shutdowner fx.Shutdowner, s *scheduler.Scheduler, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				report, err := s.RunOnce(context.Background())
				if err != nil {
					log.Warn("sweeper.partial",
						zap.Int("tenants_examined", report.TenantsExamined),
						zap.Int("tenants_updated", report.TenantsUpdated),
						zap.Error(err),
					)
				}
				_ = shutdowner.Shutdown()
			}()
			return nil
		},
	})
}
