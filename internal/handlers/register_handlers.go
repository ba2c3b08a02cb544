package handlers

import (
	"errors"
	"net/http"

	"github.com/dablu-app/dablu_backend/internal/apperrors"
	portssvc "github.com/dablu-app/dablu_backend/internal/core/ports/services"
	"github.com/dablu-app/dablu_backend/internal/middleware"
	"github.com/dablu-app/dablu_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/", GetHome)

	// Register public authentication routes
	registerAuthRoutes(r, cfg, services)

	// All room and user routes require a valid bearer token
	authed := r.Group("/", middleware.AuthMiddleware(cfg.JWTSecret))
	registerUserRoutes(authed, services.User)
	registerRoomRoutes(authed, services.Room)
	registerSettlementRoutes(authed, services.Settlement)
}

// respondWithError maps service errors to HTTP responses. Settlement
// conflicts get their typed 409 payload; everything else collapses to the
// standard error envelope.
func respondWithError(c *gin.Context, err error) {
	if conflict, ok := apperrors.AsSettlementConflict(err); ok {
		c.JSON(http.StatusConflict, gin.H{
			"error":                   conflict.Error(),
			"type":                    conflict.Type,
			"suggestion":              conflict.Suggestion,
			"lastSettlement":          conflict.LastSettlement,
			"timeSinceLastSettlement": conflict.TimeSinceLastSettlement,
		})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
