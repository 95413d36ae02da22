// Package domain defines the countable resource kinds and the counter
// contract consumed by the entitlement evaluator.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ResourceKind identifies a per-tenant countable resource. The values
// double as API identifiers and match the domain tables they count.
type ResourceKind string

const (
	ResourceUsuarios     ResourceKind = "usuarios"
	ResourceProdutos     ResourceKind = "produtos"
	ResourceServicos     ResourceKind = "servicos"
	ResourceClientes     ResourceKind = "clientes"
	ResourceOrdens       ResourceKind = "ordens"
	ResourceFornecedores ResourceKind = "fornecedores"
)

var resourceTables = map[ResourceKind]string{
	ResourceUsuarios:     "usuarios",
	ResourceProdutos:     "produtos",
	ResourceServicos:     "servicos",
	ResourceClientes:     "clientes",
	ResourceOrdens:       "ordens",
	ResourceFornecedores: "fornecedores",
}

// Kinds returns all countable resource kinds.
func Kinds() []ResourceKind {
	return []ResourceKind{
		ResourceUsuarios,
		ResourceProdutos,
		ResourceServicos,
		ResourceClientes,
		ResourceOrdens,
		ResourceFornecedores,
	}
}

func (k ResourceKind) Valid() bool {
	_, ok := resourceTables[k]
	return ok
}

// Table returns the backing table for a kind; empty for unknown kinds.
func (k ResourceKind) Table() string {
	return resourceTables[k]
}

// Counter counts live resources owned by a tenant. The count is a
// point-in-time snapshot, not a reservation: concurrent creations may
// overshoot a limit by the degree of concurrency.
type Counter interface {
	CountByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, kind ResourceKind) (int64, error)
}

// Record is one row in a countable resource table.
type Record struct {
	ID        snowflake.ID `json:"id"`
	TenantID  snowflake.ID `json:"tenant_id"`
	Name      string       `json:"nome"`
	CreatedAt time.Time    `json:"created_at"`
}

// Recorder inserts resource rows. The domain tables share the same
// minimal shape here; richer per-kind columns live outside this module.
type Recorder interface {
	Insert(ctx context.Context, db *gorm.DB, kind ResourceKind, record *Record) error
}

var ErrUnknownResourceKind = errors.New("unknown_resource_kind")
