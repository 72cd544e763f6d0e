package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rafael-ceotto/StormGuard/internal/config"
	"github.com/sirupsen/logrus"
)

// APIKeyAuthMiddleware guards the orchestrator-facing endpoints with a
// static API key (X-API-Key header or Authorization: Bearer).
func APIKeyAuthMiddleware(cfg *config.Config, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				apiKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if apiKey == "" {
			log.Warn("API key missing from request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API key required"})
			return
		}

		isValid := false
		for _, key := range cfg.APIKeys {
			if key == apiKey {
				isValid = true
				break
			}
		}

		if !isValid {
			log.Warn("Invalid API key provided")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			return
		}

		c.Next()
	}
}

// RequesterIDMiddleware extracts the acting user's id for the engagement
// endpoints. Identity is established upstream; this service only needs who
// the requester claims to be to enforce ownership.
func RequesterIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requesterID := c.GetHeader("X-User-ID")
		if requesterID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "X-User-ID header required"})
			return
		}
		c.Set("requester_id", requesterID)
		c.Next()
	}
}

// requesterID reads the id set by RequesterIDMiddleware.
func requesterID(c *gin.Context) string {
	return c.GetString("requester_id")
}
