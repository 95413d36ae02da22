package domain

import "time"

// State is the derived lifecycle classification of a tenant's current
// subscription. It is computed from the stored row and the wall clock on
// every read and is never persisted; the block sweep writes the only
// persisted consequence (the tenant block flag).
type State string

const (
	StateTrialActive    State = "TRIAL_ACTIVE"
	StateTrialExpired   State = "TRIAL_EXPIRED"
	StateActive         State = "ACTIVE"
	StateSuspended      State = "SUSPENDED"
	StatePendingPayment State = "PENDING_PAYMENT"
	StateCancelled      State = "CANCELLED"
	StateNoSubscription State = "NO_SUBSCRIPTION"
)

// Derive classifies a subscription row at the given instant. Pure
// function; every call site (HTTP handlers, guards, sweep) must go
// through it rather than re-implementing the trial-expiry comparison.
func Derive(sub *Subscription, now time.Time) State {
	if sub == nil {
		return StateNoSubscription
	}

	switch sub.Status {
	case SubscriptionStatusTrial:
		// Trial end exactly at now still counts as active; only a
		// strictly-past end expires the trial.
		if sub.TrialEndsAt == nil || !sub.TrialEndsAt.Before(now) {
			return StateTrialActive
		}
		return StateTrialExpired
	case SubscriptionStatusActive:
		// EndAt is informational on the read path; paid-period expiry is
		// the sweep's job, not the resolver's.
		return StateActive
	case SubscriptionStatusSuspended:
		return StateSuspended
	case SubscriptionStatusPendingPayment:
		return StatePendingPayment
	case SubscriptionStatusCancelled:
		return StateCancelled
	default:
		return StateNoSubscription
	}
}

// InTrial reports whether the derived state still grants trial access.
func (s State) InTrial() bool {
	return s == StateTrialActive
}
