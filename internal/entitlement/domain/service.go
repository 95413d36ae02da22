// Package domain defines the entitlement evaluator contract.
package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	usagedomain "github.com/ordemtec/ordemtec/internal/usage/domain"
)

// Service decides whether a tenant may create one more resource of a
// given kind. Limits apply only while the tenant is in an active trial;
// every other lifecycle state is waved through here and handled by the
// tenant block mechanism instead.
//
// The boolean answer is a point-in-time advisory, not a reservation:
// two concurrent creations can both observe count < limit and both
// proceed. A hard cap would require the creation path to count and
// insert inside one transaction.
type Service interface {
	CanCreate(ctx context.Context, tenantID snowflake.ID, kind usagedomain.ResourceKind) (bool, error)
}
