// Package domain contains the subscription model, the derived lifecycle
// state and the resolver contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// SubscriptionStatus is the persisted status of a subscription row. It
// does not capture trial expiry; that is time-based and derived on read
// (see Derive).
type SubscriptionStatus string

const (
	SubscriptionStatusTrial          SubscriptionStatus = "trial"
	SubscriptionStatusActive         SubscriptionStatus = "active"
	SubscriptionStatusSuspended      SubscriptionStatus = "suspended"
	SubscriptionStatusPendingPayment SubscriptionStatus = "pending_payment"
	SubscriptionStatusCancelled      SubscriptionStatus = "cancelled"
)

// Subscription is one plan-enrollment period for a tenant. Rows are
// append-mostly: historical rows are kept for audit and only status
// transitions mutate an existing row. The "current" subscription is the
// most recently created row.
type Subscription struct {
	ID            snowflake.ID       `gorm:"primaryKey"`
	TenantID      snowflake.ID       `gorm:"not null;index"`
	PlanID        snowflake.ID       `gorm:"not null;index"`
	Status        SubscriptionStatus `gorm:"type:text;not null"`
	StartAt       time.Time          `gorm:"not null"`
	EndAt         *time.Time         `gorm:""`
	TrialEndsAt   *time.Time         `gorm:""`
	NextBillingAt *time.Time         `gorm:""`
	Amount        float64            `gorm:"not null;default:0"`
	CreatedAt     time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }
