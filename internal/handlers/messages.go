package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vibe-coding-backend/internal/models"
	"vibe-coding-backend/internal/supabase"
)

const defaultMessageLimit = 200

type MessagesHandler struct {
	dbClient *supabase.DatabaseClient
}

func NewMessagesHandler(dbClient *supabase.DatabaseClient) *MessagesHandler {
	return &MessagesHandler{
		dbClient: dbClient,
	}
}

func (h *MessagesHandler) ListMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	if _, err := h.dbClient.GetProject(projectID, userID); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
		return
	}

	limit := defaultMessageLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	messages, err := h.dbClient.ListChatMessages(projectID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list messages",
			Message: err.Error(),
		})
		return
	}

	out := make([]models.MessageResponse, len(messages))
	for i := range messages {
		out[i] = messageResponse(&messages[i])
	}

	c.JSON(http.StatusOK, models.MessageListResponse{Messages: out})
}

func messageResponse(m *models.ChatMessage) models.MessageResponse {
	var fileURLs []string
	if len(m.FileURLs) > 0 {
		_ = json.Unmarshal(m.FileURLs, &fileURLs)
	}
	return models.MessageResponse{
		ID:          m.ID.String(),
		Sender:      m.Sender,
		MessageType: m.MessageType,
		Message:     m.Message,
		FileURLs:    fileURLs,
		Metadata:    m.ParseMetadata(),
		CreatedAt:   m.CreatedAt,
	}
}
