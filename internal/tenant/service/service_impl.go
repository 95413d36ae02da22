package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/ordemtec/ordemtec/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo tenantdomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo tenantdomain.Repository
}

func NewService(p ServiceParam) tenantdomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("tenant.service"),
		repo: p.Repo,
	}
}

func (s *Service) Get(ctx context.Context, id string) (tenantdomain.Tenant, error) {
	tenantID, err := parseID(id)
	if err != nil {
		return tenantdomain.Tenant{}, tenantdomain.ErrInvalidTenant
	}

	tenant, err := s.repo.FindByID(ctx, s.db, tenantID)
	if err != nil {
		return tenantdomain.Tenant{}, err
	}
	if tenant == nil {
		return tenantdomain.Tenant{}, tenantdomain.ErrTenantNotFound
	}
	return *tenant, nil
}

func (s *Service) List(ctx context.Context) ([]tenantdomain.Tenant, error) {
	return s.repo.List(ctx, s.db)
}

// Unblock is the administrative escape hatch; the sweep never reverses
// a block on its own.
func (s *Service) Unblock(ctx context.Context, id string) error {
	tenantID, err := parseID(id)
	if err != nil {
		return tenantdomain.ErrInvalidTenant
	}

	tenant, err := s.repo.FindByID(ctx, s.db, tenantID)
	if err != nil {
		return err
	}
	if tenant == nil {
		return tenantdomain.ErrTenantNotFound
	}

	if err := s.repo.Unblock(ctx, s.db, tenantID, time.Now().UTC()); err != nil {
		return err
	}
	s.log.Info("tenant.unblocked", zap.String("tenant_id", tenantID.String()))
	return nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, tenantdomain.ErrInvalidTenant
	}
	return id, nil
}
