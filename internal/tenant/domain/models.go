// Package domain contains the tenant (company account) model and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TenantStatus is the persisted block state of a company account.
type TenantStatus string

const (
	TenantStatusActive  TenantStatus = "ativo"
	TenantStatusBlocked TenantStatus = "bloqueado"
)

// Block reasons written by the lifecycle sweep. The strings are shown
// verbatim to shop operators, hence Portuguese.
const (
	BlockReasonTrialExpired   = "Período de teste expirado"
	BlockReasonPaymentOverdue = "Pagamento em atraso"
)

// Tenant is a repair-shop company account. The trial and payment flags
// are denormalized onto the tenant so the block sweep can scan a single
// table; the subscription row remains the source of truth for the
// derived lifecycle state.
type Tenant struct {
	ID              snowflake.ID `gorm:"primaryKey"`
	Name            string       `gorm:"type:text;not null"`
	Email           string       `gorm:"type:text;not null"`
	Status          TenantStatus `gorm:"type:text;not null;default:ativo"`
	BlockReason     *string      `gorm:"type:text"`
	TrialActive     bool         `gorm:"not null;default:false"`
	TrialEndsAt     *time.Time   `gorm:""`
	PaymentUpToDate bool         `gorm:"not null;default:true"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }

func (t *Tenant) Blocked() bool {
	return t.Status == TenantStatusBlocked
}
