package domain

import (
	"context"
	"errors"
)

type Service interface {
	Get(ctx context.Context, id string) (Tenant, error)
	List(ctx context.Context) ([]Tenant, error)
	Unblock(ctx context.Context, id string) error
}

var (
	ErrInvalidTenant  = errors.New("invalid_tenant")
	ErrTenantNotFound = errors.New("tenant_not_found")
	ErrTenantBlocked  = errors.New("tenant_blocked")
)
