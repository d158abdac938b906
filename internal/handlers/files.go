package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vibe-coding-backend/internal/models"
	"vibe-coding-backend/internal/supabase"
)

type FilesHandler struct {
	dbClient *supabase.DatabaseClient
}

func NewFilesHandler(dbClient *supabase.DatabaseClient) *FilesHandler {
	return &FilesHandler{
		dbClient: dbClient,
	}
}

func (h *FilesHandler) ListFiles(c *gin.Context) {
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

	files, err := h.dbClient.ListAppFiles(projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list files",
			Message: err.Error(),
		})
		return
	}

	out := make([]models.FileResponse, len(files))
	for i, f := range files {
		out[i] = models.FileResponse{
			ID:        f.ID.String(),
			FilePath:  f.FilePath,
			FileType:  f.FileType,
			Content:   f.Content,
			IsMain:    f.IsMain,
			UpdatedAt: f.UpdatedAt,
		}
	}

	c.JSON(http.StatusOK, models.FilesResponse{Files: out})
}
