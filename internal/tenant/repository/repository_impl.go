package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/ordemtec/ordemtec/internal/tenant/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() tenantdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tenant *tenantdomain.Tenant) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tenants (
			id, name, email, status, block_reason, trial_active, trial_ends_at,
			payment_up_to_date, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tenant.ID,
		tenant.Name,
		tenant.Email,
		tenant.Status,
		tenant.BlockReason,
		tenant.TrialActive,
		tenant.TrialEndsAt,
		tenant.PaymentUpToDate,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*tenantdomain.Tenant, error) {
	var tenant tenantdomain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, email, status, block_reason, trial_active, trial_ends_at,
		 payment_up_to_date, created_at, updated_at
		 FROM tenants WHERE id = ?`,
		id,
	).Scan(&tenant).Error
	if err != nil {
		return nil, err
	}
	if tenant.ID == 0 {
		return nil, nil
	}
	return &tenant, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]tenantdomain.Tenant, error) {
	var tenants []tenantdomain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, email, status, block_reason, trial_active, trial_ends_at,
		 payment_up_to_date, created_at, updated_at
		 FROM tenants ORDER BY created_at ASC`,
	).Scan(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *repo) FindNeedingBlock(ctx context.Context, db *gorm.DB, today time.Time) ([]tenantdomain.Tenant, error) {
	var tenants []tenantdomain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, email, status, block_reason, trial_active, trial_ends_at,
		 payment_up_to_date, created_at, updated_at
		 FROM tenants
		 WHERE (trial_active = ? AND trial_ends_at IS NOT NULL AND trial_ends_at < ?)
		    OR payment_up_to_date = ?
		 ORDER BY id ASC`,
		true,
		today,
		false,
	).Scan(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *repo) UpdateBlockStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, reason string, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE tenants
		 SET status = ?, block_reason = ?, trial_active = ?, updated_at = ?
		 WHERE id = ? AND status <> ?`,
		tenantdomain.TenantStatusBlocked,
		reason,
		false,
		now,
		id,
		tenantdomain.TenantStatusBlocked,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) Unblock(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tenants
		 SET status = ?, block_reason = NULL, updated_at = ?
		 WHERE id = ?`,
		tenantdomain.TenantStatusActive,
		now,
		id,
	).Error
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tenants
		 SET trial_active = ?, payment_up_to_date = ?, updated_at = ?
		 WHERE id = ?`,
		false,
		true,
		now,
		id,
	).Error
}
