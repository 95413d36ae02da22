package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Resolution pairs the current subscription row (nil when the tenant has
// none) with its derived lifecycle state.
type Resolution struct {
	Subscription *Subscription `json:"subscription,omitempty"`
	State        State         `json:"state"`
}

type CreateTrialRequest struct {
	TenantID  snowflake.ID
	PlanID    snowflake.ID
	TrialDays int
	Amount    float64
}

type UpgradeRequest struct {
	TenantID string `json:"tenant_id"`
	PlanID   string `json:"plan_id"`
}

type TransitionReason string

type Service interface {
	// ResolveCurrent is the single shared derivation path for all call
	// sites. A tenant without subscription rows resolves to
	// (nil, NO_SUBSCRIPTION), never an error; transport failures surface
	// as ErrStoreUnavailable and callers authorizing actions must fail
	// closed on them.
	ResolveCurrent(ctx context.Context, tenantID snowflake.ID) (Resolution, error)
	CreateTrial(ctx context.Context, req CreateTrialRequest) (Subscription, error)
	// Upgrade inserts a new active subscription row for the tenant (the
	// old row is kept for audit; latest-row selection makes the new one
	// current) and restores the tenant's paid/unblocked flags.
	Upgrade(ctx context.Context, req UpgradeRequest) (Subscription, error)
	Transition(ctx context.Context, id string, target SubscriptionStatus, reason TransitionReason) error
	ListByTenant(ctx context.Context, tenantID snowflake.ID) ([]Subscription, error)
}

var (
	// ErrStoreUnavailable wraps transport-level store failures, as
	// distinct from the valid empty result.
	ErrStoreUnavailable = errors.New("store_unavailable")

	ErrInvalidSubscription  = errors.New("invalid_subscription")
	ErrSubscriptionNotFound = errors.New("subscription_not_found")
	ErrInvalidTargetStatus  = errors.New("invalid_target_status")
	ErrInvalidTransition    = errors.New("invalid_transition")
)
