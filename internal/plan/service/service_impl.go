package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/ordemtec/ordemtec/internal/plan/domain"
	"github.com/ordemtec/ordemtec/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  plandomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  plandomain.Repository
}

func NewService(p ServiceParam) plandomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("plan.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req plandomain.CreatePlanRequest) (plandomain.Plan, error) {
	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" || req.Price < 0 || req.TrialDays < 0 {
		return plandomain.Plan{}, plandomain.ErrInvalidPlan
	}

	period := strings.ToLower(strings.TrimSpace(req.BillingPeriod))
	switch period {
	case "":
		period = "monthly"
	case "monthly", "yearly":
	default:
		return plandomain.Plan{}, plandomain.ErrInvalidPlan
	}

	now := time.Now().UTC()
	plan := plandomain.Plan{
		ID:            s.genID.Generate(),
		Code:          code,
		Name:          name,
		Price:         req.Price,
		BillingPeriod: period,
		TrialDays:     req.TrialDays,
		Limits:        toJSONMapInt64(req.Limits),
		Features:      toJSONMapBool(req.Features),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &plan); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return plandomain.Plan{}, plandomain.ErrDuplicatePlan
		}
		return plandomain.Plan{}, err
	}
	return plan, nil
}

func (s *Service) Get(ctx context.Context, id string) (plandomain.Plan, error) {
	planID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || planID == 0 {
		return plandomain.Plan{}, plandomain.ErrInvalidPlan
	}

	plan, err := s.repo.FindByID(ctx, s.db, planID)
	if err != nil {
		return plandomain.Plan{}, err
	}
	if plan == nil {
		return plandomain.Plan{}, plandomain.ErrPlanNotFound
	}
	return *plan, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (plandomain.Plan, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return plandomain.Plan{}, plandomain.ErrInvalidPlan
	}

	plan, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return plandomain.Plan{}, err
	}
	if plan == nil {
		return plandomain.Plan{}, plandomain.ErrPlanNotFound
	}
	return *plan, nil
}

func (s *Service) List(ctx context.Context) ([]plandomain.Plan, error) {
	return s.repo.List(ctx, s.db)
}

func toJSONMapInt64(in map[string]int64) datatypes.JSONMap {
	if len(in) == 0 {
		return nil
	}
	out := datatypes.JSONMap{}
	for k, v := range in {
		out[k] = v
	}
	return out
}

func toJSONMapBool(in map[string]bool) datatypes.JSONMap {
	if len(in) == 0 {
		return nil
	}
	out := datatypes.JSONMap{}
	for k, v := range in {
		out[k] = v
	}
	return out
}
