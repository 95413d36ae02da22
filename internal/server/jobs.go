package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SweepTokenRequired protects the internal job-trigger endpoint with a
// shared token. An empty configured token leaves the endpoint open for
// local development.
func (s *Server) SweepTokenRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.SweepToken == "" {
			c.Next()
			return
		}

		presented := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer"))
		if subtle.ConstantTimeCompare([]byte(presented), []byte(s.cfg.SweepToken)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// RunTenantBlockSweep triggers one sweep run and returns its report.
// External schedulers (cron, cloud tasks) call this instead of relying
// on the in-process ticker.
func (s *Server) RunTenantBlockSweep(c *gin.Context) {
	report, err := s.scheduler.RunOnce(c.Request.Context())
	if err != nil {
		// Partial failures still return the report; the 207-ish detail
		// lives in the failures list.
		c.JSON(http.StatusOK, gin.H{"data": report, "partial": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}
