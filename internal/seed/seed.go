// Package seed bootstraps the minimum catalog rows a fresh install
// needs before the first signup.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/ordemtec/ordemtec/internal/plan/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Default limits for the free trial plan. Keys match the countable
// resource kinds; a key left out here would mean unlimited.
var defaultTrialLimits = map[string]int64{
	"usuarios":     3,
	"produtos":     50,
	"servicos":     50,
	"clientes":     100,
	"ordens":       30,
	"fornecedores": 20,
}

// EnsureDefaultPlan creates the trial plan signup depends on when it
// does not exist yet. Existing rows are left untouched so operator
// edits survive restarts.
func EnsureDefaultPlan(db *gorm.DB, code string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if code == "" {
		return errors.New("seed plan code is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing plandomain.Plan
		err := tx.Raw(`SELECT id FROM plans WHERE code = ? LIMIT 1`, code).Scan(&existing).Error
		if err != nil {
			return err
		}
		if existing.ID != 0 {
			return nil
		}

		limits := datatypes.JSONMap{}
		for kind, limit := range defaultTrialLimits {
			limits[kind] = limit
		}

		now := time.Now().UTC()
		plan := plandomain.Plan{
			ID:            node.Generate(),
			Code:          code,
			Name:          "Teste Grátis",
			Price:         0,
			BillingPeriod: "monthly",
			TrialDays:     7,
			Limits:        limits,
			Features:      datatypes.JSONMap{},
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		return tx.Create(&plan).Error
	})
}
