package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	usagedomain "github.com/ordemtec/ordemtec/internal/usage/domain"
	"go.uber.org/zap"
)

// RequireCanCreate gates resource-creation routes on the trial limit.
// An evaluator error aborts the request; an unreachable store must
// never authorize a creation.
func (s *Server) RequireCanCreate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := parseTenantID(c)
		if !ok {
			return
		}

		kind := usagedomain.ResourceKind(strings.TrimSpace(c.Param("resource")))
		if !kind.Valid() {
			AbortWithError(c, newValidationError("resource", "invalid_resource", "invalid resource"))
			return
		}

		tenant, err := s.tenantSvc.Get(c.Request.Context(), tenantID.String())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if tenant.Blocked() {
			reason := "conta bloqueada"
			if tenant.BlockReason != nil {
				reason = *tenant.BlockReason
			}
			c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{Error: errorPayload{
				Type:    "tenant_blocked",
				Message: reason,
			}})
			return
		}

		allowed, err := s.entitlementSvc.CanCreate(c.Request.Context(), tenantID, kind)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if !allowed {
			s.log.Info("entitlement.denied",
				zap.String("tenant_id", tenantID.String()),
				zap.String("resource", string(kind)),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{Error: errorPayload{
				Type:    "limit_reached",
				Message: "Limite do período de teste atingido para " + string(kind),
			}})
			return
		}

		c.Next()
	}
}
