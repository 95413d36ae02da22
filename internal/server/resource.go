package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	usagedomain "github.com/ordemtec/ordemtec/internal/usage/domain"
)

// CreateResource inserts one row into the requested resource table. It
// runs behind RequireCanCreate, which has already validated the tenant
// and the kind.
func (s *Server) CreateResource(c *gin.Context) {
	tenantID, ok := parseTenantID(c)
	if !ok {
		return
	}
	kind := usagedomain.ResourceKind(strings.TrimSpace(c.Param("resource")))

	var req struct {
		Name string `json:"nome"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		AbortWithError(c, newValidationError("nome", "invalid_nome", "invalid nome"))
		return
	}

	record := usagedomain.Record{
		ID:        s.genID.Generate(),
		TenantID:  tenantID,
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.recorder.Insert(c.Request.Context(), s.db, kind, &record); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": record})
}
