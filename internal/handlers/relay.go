package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"vibe-coding-backend/internal/claude"
	"vibe-coding-backend/internal/extract"
	"vibe-coding-backend/internal/models"
	"vibe-coding-backend/internal/prompt"
)

// RelayHandler exposes the raw model behind a single prompt-in, JSON-out
// endpoint. It is unauthenticated and does not touch quotas; deploys should
// rate-limit it at the edge.
type RelayHandler struct {
	claudeClient *claude.Client
}

func NewRelayHandler(claudeClient *claude.Client) *RelayHandler {
	return &RelayHandler{
		claudeClient: claudeClient,
	}
}

func (h *RelayHandler) Relay(c *gin.Context) {
	var req models.RelayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	// Callers that do not bring their own schema get the app-generation
	// contract, which is what the platform frontend expects.
	schema := req.ResponseJSONSchema
	if schema == nil {
		schema = prompt.Schema()
	}

	promptText := req.Prompt
	if schemaJSON, err := json.Marshal(schema); err == nil {
		promptText = fmt.Sprintf(
			"%s\n\nRespond ONLY with a valid JSON object matching this schema:\n%s",
			req.Prompt, string(schemaJSON),
		)
	}

	raw, err := h.claudeClient.Invoke(c.Request.Context(), claude.InvokeRequest{
		Prompt: promptText,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, models.RelayErrorResponse{
			Error:   "LLM request failed",
			Details: err.Error(),
		})
		return
	}

	obj, err := extract.ExtractObject(raw)
	if err != nil {
		var extractErr *extract.ExtractionError
		resp := models.RelayErrorResponse{
			Error:   "failed to parse model response",
			Details: err.Error(),
		}
		if errors.As(err, &extractErr) {
			resp.RawResponse = extractErr.Raw
		}
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	c.JSON(http.StatusOK, obj)
}
