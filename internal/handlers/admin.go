package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"vibe-coding-backend/internal/models"
	"vibe-coding-backend/internal/supabase"
)

type AdminHandler struct {
	dbClient      *supabase.DatabaseClient
	storageClient *supabase.StorageClient
}

func NewAdminHandler(dbClient *supabase.DatabaseClient, storageClient *supabase.StorageClient) *AdminHandler {
	return &AdminHandler{
		dbClient:      dbClient,
		storageClient: storageClient,
	}
}

// requireAdmin loads the caller and rejects non-admins. The role lives in
// our users table, not in the JWT, so a stale token cannot confer admin.
func (h *AdminHandler) requireAdmin(c *gin.Context) (*models.User, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}

	user, err := h.dbClient.GetOrCreateUser(userID, currentUserEmail(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load user",
			Message: err.Error(),
		})
		return nil, false
	}

	if !user.IsAdmin() {
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "admin access required"})
		return nil, false
	}
	return user, true
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	if _, ok := h.requireAdmin(c); !ok {
		return
	}

	users, err := h.dbClient.ListUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list users",
			Message: err.Error(),
		})
		return
	}

	out := make([]models.ProfileResponse, len(users))
	for i := range users {
		out[i] = profileResponse(&users[i])
	}

	c.JSON(http.StatusOK, models.UserListResponse{Users: out})
}

// UpdateUser adjusts a user's token balance and/or role. Fields left out of
// the body are untouched.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	if _, ok := h.requireAdmin(c); !ok {
		return
	}

	targetID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	if req.TokenBalance == nil && req.Role == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "nothing to update"})
		return
	}

	if req.TokenBalance != nil {
		balance := *req.TokenBalance
		if balance < 0 {
			balance = 0
		}
		if err := h.dbClient.UpdateUserTokenBalance(targetID, balance); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to update token balance",
				Message: err.Error(),
			})
			return
		}
	}

	if req.Role != nil {
		role := *req.Role
		if role != models.RoleUser && role != models.RoleAdmin {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid role"})
			return
		}
		if err := h.dbClient.UpdateUserRole(targetID, role); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to update role",
				Message: err.Error(),
			})
			return
		}
	}

	user, err := h.dbClient.GetUser(targetID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "user not found"})
		return
	}

	c.JSON(http.StatusOK, profileResponse(user))
}

// DeleteUser removes a user; projects, messages, files, and history follow
// via cascading deletes. Stored attachments are cleaned up best-effort.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	admin, ok := h.requireAdmin(c)
	if !ok {
		return
	}

	targetID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return
	}

	if targetID == admin.ID {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "cannot delete your own account"})
		return
	}

	if err := h.dbClient.DeleteUser(targetID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete user",
			Message: err.Error(),
		})
		return
	}

	if h.storageClient != nil {
		if err := h.storageClient.DeleteUserAttachments(targetID); err != nil {
			logrus.WithError(err).WithField("user_id", targetID).Warn("failed to delete user attachments")
		}
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
