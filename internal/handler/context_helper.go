package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/emeahub/resource-hub-api/internal/middleware"
	"github.com/emeahub/resource-hub-api/internal/models"
)

// claimsFromContext returns the authenticated caller's claims, or nil on
// routes where authentication is optional or absent.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
