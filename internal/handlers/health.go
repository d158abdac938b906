package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vibe-coding-backend/internal/models"
)

func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "ok",
		Message: "vibe coding backend is running",
	})
}
