// Package domain defines the self-service signup contract.
package domain

import (
	"context"
	"errors"

	subscriptiondomain "github.com/ordemtec/ordemtec/internal/subscription/domain"
	tenantdomain "github.com/ordemtec/ordemtec/internal/tenant/domain"
)

type SignupRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	// PlanCode is optional; empty selects the default trial plan.
	PlanCode string `json:"plan_code,omitempty"`
}

// SignupResult is the newly provisioned account. The subscription is the
// trial row created alongside the tenant.
type SignupResult struct {
	Tenant       tenantdomain.Tenant             `json:"tenant"`
	Subscription subscriptiondomain.Subscription `json:"subscription"`
}

type Service interface {
	// Signup provisions a tenant and its trial subscription atomically;
	// a failure on either side leaves no partial account behind.
	Signup(ctx context.Context, req SignupRequest) (SignupResult, error)
}

var ErrInvalidSignup = errors.New("invalid_signup")
