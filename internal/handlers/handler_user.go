package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/dablu-app/dablu_backend/internal/core/ports/services"
	"github.com/dablu-app/dablu_backend/internal/dto"
	"github.com/dablu-app/dablu_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// userHandler handles HTTP requests related to users.
type userHandler struct {
	userService portssvc.UserSvcFacade
}

// newUserHandler creates a new userHandler.
func newUserHandler(us portssvc.UserSvcFacade) *userHandler {
	return &userHandler{
		userService: us,
	}
}

// registerUserRoutes registers all user-related routes.
func registerUserRoutes(rg *gin.RouterGroup, userService portssvc.UserSvcFacade) {
	h := newUserHandler(userService)

	// Batch ID-to-username resolution used to render room member names.
	rg.POST("/users", h.lookupUsers)

	rg.GET("/user/:userID", h.getUser)
	rg.PUT("/user/:userID/profile", h.updateProfile)
	rg.POST("/auth/change-password", h.changePassword)
}

func (h *userHandler) lookupUsers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LookupUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	users, err := h.userService.GetUsersByIDs(c.Request.Context(), req.UserIDs)
	if err != nil {
		logger.Error("Failed to resolve users", slog.String("error", err.Error()))
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": dto.ToUserResponses(users)})
}

func (h *userHandler) getUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("userID")

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		logger.Warn("Failed to get user", slog.String("error", err.Error()))
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *userHandler) updateProfile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	callerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if c.Param("userID") != callerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own profile"})
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	user, err := h.userService.UpdateUsername(c.Request.Context(), callerID, req.Username)
	if err != nil {
		logger.Warn("Failed to update username", slog.String("error", err.Error()))
		respondWithError(c, err)
		return
	}

	logger.Info("Username updated", slog.String("user_id", callerID))
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *userHandler) changePassword(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	callerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), callerID, req.CurrentPassword, req.NewPassword); err != nil {
		logger.Warn("Failed to change password", slog.String("user_id", callerID), slog.String("error", err.Error()))
		respondWithError(c, err)
		return
	}

	logger.Info("Password changed", slog.String("user_id", callerID))
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
