package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vibe-coding-backend/internal/models"
	"vibe-coding-backend/internal/supabase"
)

type ProjectsHandler struct {
	dbClient *supabase.DatabaseClient
}

func NewProjectsHandler(dbClient *supabase.DatabaseClient) *ProjectsHandler {
	return &ProjectsHandler{
		dbClient: dbClient,
	}
}

func (h *ProjectsHandler) CreateProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	// Registration happens lazily on first authenticated call.
	if _, err := h.dbClient.GetOrCreateUser(userID, currentUserEmail(c)); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to resolve user",
			Message: err.Error(),
		})
		return
	}

	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = models.CreateProjectRequest{}
	}
	if req.Name == "" {
		req.Name = "Untitled Project"
	}

	project, err := h.dbClient.CreateProject(userID, req.Name, req.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to create project",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, projectResponse(project))
}

func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	projects, err := h.dbClient.ListProjects(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list projects",
			Message: err.Error(),
		})
		return
	}

	summaries := make([]models.ProjectSummary, len(projects))
	for i, p := range projects {
		summaries[i] = models.ProjectSummary{
			ID:        p.ID.String(),
			Name:      p.Name,
			Status:    p.Status,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		}
	}

	c.JSON(http.StatusOK, models.ProjectListResponse{Projects: summaries})
}

func (h *ProjectsHandler) GetProject(c *gin.Context) {
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

	c.JSON(http.StatusOK, projectResponse(project))
}

func (h *ProjectsHandler) DeleteProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	if err := h.dbClient.DeleteProject(projectID, userID); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func projectResponse(p *models.Project) models.ProjectResponse {
	resp := models.ProjectResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Status:    p.Status,
		Features:  p.FeatureList(),
		Framework: p.Framework,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Description.Valid {
		resp.Description = p.Description.String
	}
	if p.Code.Valid {
		resp.Code = p.Code.String
	}
	return resp
}
