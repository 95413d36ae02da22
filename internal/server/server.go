// Package server is the HTTP surface: route registration, request
// validation and error mapping around the domain services.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/ordemtec/ordemtec/internal/config"
	"github.com/ordemtec/ordemtec/internal/entitlement"
	entitlementdomain "github.com/ordemtec/ordemtec/internal/entitlement/domain"
	obslogger "github.com/ordemtec/ordemtec/internal/observability/logger"
	obsmetrics "github.com/ordemtec/ordemtec/internal/observability/metrics"
	"github.com/ordemtec/ordemtec/internal/plan"
	plandomain "github.com/ordemtec/ordemtec/internal/plan/domain"
	"github.com/ordemtec/ordemtec/internal/scheduler"
	"github.com/ordemtec/ordemtec/internal/signup"
	signupdomain "github.com/ordemtec/ordemtec/internal/signup/domain"
	"github.com/ordemtec/ordemtec/internal/subscription"
	subscriptiondomain "github.com/ordemtec/ordemtec/internal/subscription/domain"
	"github.com/ordemtec/ordemtec/internal/tenant"
	tenantdomain "github.com/ordemtec/ordemtec/internal/tenant/domain"
	"github.com/ordemtec/ordemtec/internal/usage"
	usagedomain "github.com/ordemtec/ordemtec/internal/usage/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	tenant.Module,
	plan.Module,
	subscription.Module,
	usage.Module,
	entitlement.Module,
	signup.Module,
	scheduler.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	log             *zap.Logger
	db              *gorm.DB
	genID           *snowflake.Node
	tenantSvc       tenantdomain.Service
	planSvc         plandomain.Service
	subscriptionSvc subscriptiondomain.Service
	signupsvc       signupdomain.Service
	entitlementSvc  entitlementdomain.Service
	recorder        usagedomain.Recorder

	scheduler *scheduler.Scheduler
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	DB              *gorm.DB
	GenID           *snowflake.Node
	TenantSvc       tenantdomain.Service
	PlanSvc         plandomain.Service
	SubscriptionSvc subscriptiondomain.Service
	Signupsvc       signupdomain.Service
	EntitlementSvc  entitlementdomain.Service
	Recorder        usagedomain.Recorder

	Scheduler *scheduler.Scheduler
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("http"),
		db:              p.DB,
		genID:           p.GenID,
		tenantSvc:       p.TenantSvc,
		planSvc:         p.PlanSvc,
		subscriptionSvc: p.SubscriptionSvc,
		signupsvc:       p.Signupsvc,
		entitlementSvc:  p.EntitlementSvc,
		recorder:        p.Recorder,
		scheduler:       p.Scheduler,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()
	svc.registerInternalRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.POST("/signup", s.Signup)

	// -------- Plans --------
	api.GET("/plans", s.ListPlans)
	api.GET("/plans/:id", s.GetPlanByID)

	// -------- Tenants --------
	api.GET("/tenants", s.ListTenants)
	api.GET("/tenants/:id", s.GetTenantByID)
	api.GET("/tenants/:id/subscription", s.GetCurrentSubscription)
	api.GET("/tenants/:id/subscriptions", s.ListTenantSubscriptions)
	api.POST("/tenants/:id/upgrade", s.UpgradeTenant)
	api.GET("/tenants/:id/entitlements/:resource", s.GetEntitlement)

	// Resource creation goes through the trial-limit gate.
	api.POST("/tenants/:id/recursos/:resource", s.RequireCanCreate(), s.CreateResource)

	// -------- Subscriptions --------
	api.POST("/subscriptions/:id/activate", s.ActivateSubscription)
	api.POST("/subscriptions/:id/suspend", s.SuspendSubscription)
	api.POST("/subscriptions/:id/mark-pending", s.MarkSubscriptionPendingPayment)
	api.POST("/subscriptions/:id/cancel", s.CancelSubscription)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	admin.POST("/plans", s.CreatePlan)
	admin.POST("/tenants/:id/unblock", s.UnblockTenant)
}

func (s *Server) registerInternalRoutes() {
	internal := s.engine.Group("/internal")

	internal.POST("/jobs/tenant-block-sweep", s.SweepTokenRequired(), s.RunTenantBlockSweep)
}
