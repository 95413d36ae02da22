package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	usagedomain "github.com/ordemtec/ordemtec/internal/usage/domain"
	"gorm.io/gorm"
)

type store struct{}

func Provide() (usagedomain.Counter, usagedomain.Recorder) {
	s := &store{}
	return s, s
}

func (s *store) CountByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, kind usagedomain.ResourceKind) (int64, error) {
	table := kind.Table()
	if table == "" {
		return 0, usagedomain.ErrUnknownResourceKind
	}

	// Table name comes from the fixed kind map, never from input.
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM `+table+` WHERE tenant_id = ?`,
		tenantID,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *store) Insert(ctx context.Context, db *gorm.DB, kind usagedomain.ResourceKind, record *usagedomain.Record) error {
	table := kind.Table()
	if table == "" {
		return usagedomain.ErrUnknownResourceKind
	}

	return db.WithContext(ctx).Exec(
		`INSERT INTO `+table+` (id, tenant_id, nome, created_at) VALUES (?, ?, ?, ?)`,
		record.ID, record.TenantID, record.Name, record.CreatedAt,
	).Error
}
