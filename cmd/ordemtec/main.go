package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/ordemtec/ordemtec/internal/clock"
	"github.com/ordemtec/ordemtec/internal/config"
	"github.com/ordemtec/ordemtec/internal/migration"
	"github.com/ordemtec/ordemtec/internal/observability"
	"github.com/ordemtec/ordemtec/internal/scheduler"
	"github.com/ordemtec/ordemtec/internal/server"
	"github.com/ordemtec/ordemtec/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		server.Module,

		fx.Invoke(StartScheduler),
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

func StartScheduler(lc fx.Lifecycle, s *scheduler.Scheduler) {
	loopCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go s.RunForever(loopCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return nil
		},
	})
}
