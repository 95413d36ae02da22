package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	usagedomain "github.com/ordemtec/ordemtec/internal/usage/domain"
)

// GetEntitlement answers whether the tenant may create one more
// resource of the given kind. Display only; the enforcing check runs
// again inside the guarded creation route.
func (s *Server) GetEntitlement(c *gin.Context) {
	tenantID, ok := parseTenantID(c)
	if !ok {
		return
	}

	kind := usagedomain.ResourceKind(strings.TrimSpace(c.Param("resource")))
	if !kind.Valid() {
		AbortWithError(c, newValidationError("resource", "invalid_resource", "invalid resource"))
		return
	}

	allowed, err := s.entitlementSvc.CanCreate(c.Request.Context(), tenantID, kind)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"resource":   string(kind),
		"can_create": allowed,
	}})
}
