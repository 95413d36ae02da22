package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	subscriptiondomain "github.com/ordemtec/ordemtec/internal/subscription/domain"
	"github.com/ordemtec/ordemtec/internal/tenantctx"
)

// GetCurrentSubscription returns the tenant's latest subscription row
// together with the time-derived lifecycle state.
func (s *Server) GetCurrentSubscription(c *gin.Context) {
	tenantID, ok := parseTenantID(c)
	if !ok {
		return
	}

	resolution, err := s.subscriptionSvc.ResolveCurrent(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resolution})
}

func (s *Server) ListTenantSubscriptions(c *gin.Context) {
	tenantID, ok := parseTenantID(c)
	if !ok {
		return
	}

	items, err := s.subscriptionSvc.ListByTenant(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) UpgradeTenant(c *gin.Context) {
	tenantID := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(tenantID); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req struct {
		PlanID string `json:"plan_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.subscriptionSvc.Upgrade(c.Request.Context(), subscriptiondomain.UpgradeRequest{
		TenantID: tenantID,
		PlanID:   strings.TrimSpace(req.PlanID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) ActivateSubscription(c *gin.Context) {
	s.transitionSubscription(c, subscriptiondomain.SubscriptionStatusActive, "subscription.activate")
}

func (s *Server) SuspendSubscription(c *gin.Context) {
	s.transitionSubscription(c, subscriptiondomain.SubscriptionStatusSuspended, "subscription.suspend")
}

func (s *Server) MarkSubscriptionPendingPayment(c *gin.Context) {
	s.transitionSubscription(c, subscriptiondomain.SubscriptionStatusPendingPayment, "subscription.mark_pending")
}

func (s *Server) CancelSubscription(c *gin.Context) {
	s.transitionSubscription(c, subscriptiondomain.SubscriptionStatusCancelled, "subscription.cancel")
}

func (s *Server) transitionSubscription(c *gin.Context, target subscriptiondomain.SubscriptionStatus, reason string) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	if err := s.subscriptionSvc.Transition(c.Request.Context(), id, target, subscriptiondomain.TransitionReason(reason)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"status": string(target)}})
}

func parseTenantID(c *gin.Context) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil || id == 0 {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return 0, false
	}
	c.Request = c.Request.WithContext(tenantctx.WithTenantID(c.Request.Context(), id))
	return id, true
}
