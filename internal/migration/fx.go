package migration

import (
	"github.com/ordemtec/ordemtec/internal/config"
	plandomain "github.com/ordemtec/ordemtec/internal/plan/domain"
	"github.com/ordemtec/ordemtec/internal/seed"
	subscriptiondomain "github.com/ordemtec/ordemtec/internal/subscription/domain"
	tenantdomain "github.com/ordemtec/ordemtec/internal/tenant/domain"
	usagedomain "github.com/ordemtec/ordemtec/internal/usage/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Non-postgres installs (sqlite dev, mysql) get the gorm
			// schema instead of the embedded SQL.
			if err := conn.AutoMigrate(
				&plandomain.Plan{},
				&tenantdomain.Tenant{},
				&subscriptiondomain.Subscription{},
			); err != nil {
				return err
			}
			for _, kind := range usagedomain.Kinds() {
				err := conn.Exec(`CREATE TABLE IF NOT EXISTS ` + kind.Table() + ` (
					id BIGINT PRIMARY KEY,
					tenant_id BIGINT NOT NULL,
					nome TEXT NOT NULL,
					created_at TIMESTAMP NOT NULL
				)`).Error
				if err != nil {
					return err
				}
			}
		}

		return seed.EnsureDefaultPlan(conn, cfg.DefaultPlanCode)
	}),
)
