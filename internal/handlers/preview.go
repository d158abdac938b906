package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vibe-coding-backend/internal/models"
	"vibe-coding-backend/internal/preview"
	"vibe-coding-backend/internal/supabase"
)

type PreviewHandler struct {
	dbClient *supabase.DatabaseClient
}

func NewPreviewHandler(dbClient *supabase.DatabaseClient) *PreviewHandler {
	return &PreviewHandler{
		dbClient: dbClient,
	}
}

// GetPreview rebuilds the Expo Snack URL from the project's current files.
// The URL embeds the full file contents, so it is always self-contained.
func (h *PreviewHandler) GetPreview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	project, err := h.dbClient.GetProject(projectID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
		return
	}

	files, err := h.dbClient.ListAppFiles(projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list files",
			Message: err.Error(),
		})
		return
	}
	if len(files) == 0 {
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "project has no files yet"})
		return
	}

	fileSet := make(map[string]string, len(files))
	for _, f := range files {
		fileSet[f.FilePath] = f.Content
	}

	c.JSON(http.StatusOK, models.PreviewResponse{
		PreviewURL: preview.SnackURL(project.Name, fileSet),
	})
}
