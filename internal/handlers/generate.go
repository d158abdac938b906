package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vibe-coding-backend/internal/models"
	"vibe-coding-backend/internal/services"
)

type GenerateHandler struct {
	generationService *services.GenerationService
}

func NewGenerateHandler(generationService *services.GenerationService) *GenerateHandler {
	return &GenerateHandler{
		generationService: generationService,
	}
}

// Generate runs one chat turn against a project. The call is synchronous:
// the response carries the updated project, the assistant message, and a
// fresh preview URL.
func (h *GenerateHandler) Generate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	result, err := h.generationService.Generate(c.Request.Context(), services.GenerateInput{
		UserID:       userID,
		UserEmail:    currentUserEmail(c),
		ProjectID:    projectID,
		Message:      req.Message,
		FileURLs:     req.FileURLs,
		DeepThinking: req.DeepThinking,
		WebResearch:  req.WebResearch,
		VisualEdit:   req.VisualEdit,
	})
	if err != nil {
		if errors.Is(err, services.ErrNoTokens) {
			c.JSON(http.StatusPaymentRequired, models.ErrorResponse{
				Error:   "no_tokens",
				Message: "token balance exhausted, purchase a plan to continue",
			})
			return
		}

		var genErr *services.GenerationError
		status := http.StatusInternalServerError
		if errors.As(err, &genErr) {
			switch genErr.Stage {
			case services.StageInvoke, services.StageExtract:
				status = http.StatusBadGateway
			}
		}
		c.JSON(status, models.ErrorResponse{
			Error:   "generation failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.GenerateResponse{
		Project:    projectResponse(result.Project),
		Assistant:  messageResponse(result.Assistant),
		PreviewURL: result.PreviewURL,
	})
}
