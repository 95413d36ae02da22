package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tenant, error)
	List(ctx context.Context, db *gorm.DB) ([]Tenant, error)
	// FindNeedingBlock returns tenants whose trial ended strictly before
	// today (date-only) or whose payment flag is down. Already-blocked
	// tenants still match the payment condition; UpdateBlockStatus is the
	// idempotence gate.
	FindNeedingBlock(ctx context.Context, db *gorm.DB, today time.Time) ([]Tenant, error)
	// UpdateBlockStatus moves a tenant to bloqueado and clears the trial
	// flag. Returns false when the tenant was already blocked.
	UpdateBlockStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, reason string, now time.Time) (bool, error)
	Unblock(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error
	// MarkPaid clears the trial flag and raises the payment flag after a
	// successful plan upgrade.
	MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error
}
