package domain

import (
	"context"
	"errors"
)

type CreatePlanRequest struct {
	Code          string           `json:"code"`
	Name          string           `json:"name"`
	Price         float64          `json:"price"`
	BillingPeriod string           `json:"billing_period"`
	TrialDays     int              `json:"trial_days"`
	Limits        map[string]int64 `json:"limits,omitempty"`
	Features      map[string]bool  `json:"features,omitempty"`
}

type Service interface {
	Create(ctx context.Context, req CreatePlanRequest) (Plan, error)
	Get(ctx context.Context, id string) (Plan, error)
	GetByCode(ctx context.Context, code string) (Plan, error)
	List(ctx context.Context) ([]Plan, error)
}

var (
	ErrInvalidPlan   = errors.New("invalid_plan")
	ErrPlanNotFound  = errors.New("plan_not_found")
	ErrDuplicatePlan = errors.New("duplicate_plan")
)
