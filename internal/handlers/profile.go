package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vibe-coding-backend/internal/models"
	"vibe-coding-backend/internal/supabase"
)

type ProfileHandler struct {
	dbClient *supabase.DatabaseClient
}

func NewProfileHandler(dbClient *supabase.DatabaseClient) *ProfileHandler {
	return &ProfileHandler{
		dbClient: dbClient,
	}
}

// GetProfile provisions the user row on first call and returns it. There is
// no separate signup endpoint; Supabase Auth owns credentials.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.dbClient.GetOrCreateUser(userID, currentUserEmail(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load profile",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, profileResponse(user))
}

// PurchasePlan credits a token bundle. Payment processing happens outside
// this service; the endpoint trusts the caller was already charged.
func (h *ProfileHandler) PurchasePlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.PurchasePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	plan, ok := models.Plans[strings.ToLower(req.Plan)]
	if !ok {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unknown plan"})
		return
	}

	user, err := h.dbClient.GetOrCreateUser(userID, currentUserEmail(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load profile",
			Message: err.Error(),
		})
		return
	}

	// Credits stack on the remaining balance rather than replacing it.
	newBalance := user.TokenBalance + plan.Credits
	if err := h.dbClient.UpdateUserPlan(userID, newBalance, plan.ID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to apply plan",
			Message: err.Error(),
		})
		return
	}

	user.TokenBalance = newBalance
	user.SubscriptionPlan = plan.ID
	c.JSON(http.StatusOK, profileResponse(user))
}

func profileResponse(u *models.User) models.ProfileResponse {
	return models.ProfileResponse{
		ID:               u.ID.String(),
		Email:            u.Email,
		Role:             u.Role,
		TokenBalance:     u.TokenBalance,
		SubscriptionPlan: u.SubscriptionPlan,
	}
}
