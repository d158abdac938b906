package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vibe-coding-backend/internal/models"
	"vibe-coding-backend/internal/supabase"
)

type HistoryHandler struct {
	dbClient *supabase.DatabaseClient
}

func NewHistoryHandler(dbClient *supabase.DatabaseClient) *HistoryHandler {
	return &HistoryHandler{
		dbClient: dbClient,
	}
}

func (h *HistoryHandler) ListHistory(c *gin.Context) {
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

	entries, err := h.dbClient.ListProjectHistory(projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list history",
			Message: err.Error(),
		})
		return
	}

	out := make([]models.HistoryEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = models.HistoryEntryResponse{
			ID:                e.ID.String(),
			FilePath:          e.FilePath,
			ChangeDescription: e.ChangeDescription,
			CreatedBy:         e.CreatedBy,
			CreatedAt:         e.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, models.HistoryListResponse{History: out})
}

// Revert restores a snapshot from project history. Only the snapshot's own
// file is touched; other files keep their current contents.
func (h *HistoryHandler) Revert(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	var req models.RevertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	historyID, err := uuid.Parse(req.HistoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid history id"})
		return
	}

	if _, err := h.dbClient.GetProject(projectID, userID); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
		return
	}

	// The project-id filter makes cross-project history ids a 404, not a
	// data leak.
	entry, err := h.dbClient.GetProjectHistory(historyID, projectID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "history entry not found"})
		return
	}

	if err := h.dbClient.UpsertAppFile(projectID, entry.FilePath, models.FileTypeFromPath(entry.FilePath), entry.Content, entry.FilePath == models.MainFileName); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to restore file",
			Message: err.Error(),
		})
		return
	}

	if entry.FilePath == models.MainFileName {
		if err := h.dbClient.UpdateProjectCode(projectID, entry.Content); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to update project",
				Message: err.Error(),
			})
			return
		}
	}

	systemMsg, err := h.dbClient.CreateChatMessage(
		projectID,
		models.SenderSystem,
		models.MessageTypeSystem,
		fmt.Sprintf("Reverted %s to the version from %s.", entry.FilePath, entry.CreatedAt.Format("Jan 2, 2006 15:04 MST")),
		nil,
		nil,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to record revert",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reverted":       true,
		"history_id":     entry.ID.String(),
		"file_path":      entry.FilePath,
		"system_message": messageResponse(systemMsg),
	})
}
