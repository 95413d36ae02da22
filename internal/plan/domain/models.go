// Package domain contains the plan catalog model and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Plan is a catalog entry a subscription is bound to. Plans referenced
// by a subscription are treated as immutable; catalog changes create a
// new row rather than editing one in place.
type Plan struct {
	ID            snowflake.ID      `gorm:"primaryKey"`
	Code          string            `gorm:"type:text;not null;uniqueIndex"`
	Name          string            `gorm:"type:text;not null"`
	Price         float64           `gorm:"not null;default:0"`
	BillingPeriod string            `gorm:"type:text;not null;default:monthly"`
	TrialDays     int               `gorm:"not null;default:0"`
	Limits        datatypes.JSONMap `gorm:"type:jsonb"`
	Features      datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Plan) TableName() string { return "plans" }

// LimitFor returns the creation limit for a resource kind. The second
// return distinguishes "no limit configured" (unlimited) from an explicit
// limit, including an explicit zero.
func (p *Plan) LimitFor(kind string) (int64, bool) {
	if p == nil || p.Limits == nil {
		return 0, false
	}
	raw, ok := p.Limits[kind]
	if !ok || raw == nil {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// FeatureEnabled reports whether a feature flag is on for this plan.
func (p *Plan) FeatureEnabled(name string) bool {
	if p == nil || p.Features == nil {
		return false
	}
	enabled, ok := p.Features[name].(bool)
	return ok && enabled
}
