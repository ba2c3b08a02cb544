package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetHome responds with a minimal service banner.
func GetHome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"service": "dablu-backend", "status": "ok"})
}
