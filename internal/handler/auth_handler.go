package handler

import (
	"net/http"

	"lifex-server/internal/domain"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	subscriptions domain.SubscriptionService
	logger        domain.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(subscriptions domain.SubscriptionService, logger domain.Logger) *AuthHandler {
	return &AuthHandler{
		subscriptions: subscriptions,
		logger:        logger,
	}
}

type profileResponse struct {
	*domain.SupabaseUser
	Tier domain.Tier `json:"tier"`
}

// GetProfile returns the current user with their subscription tier
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}
	token, _ := GetTokenFromContext(r)

	tier, err := h.subscriptions.GetTier(r.Context(), user.ID, token)
	if err != nil {
		h.logger.Error("Failed to load subscription tier", err, "user_id", user.ID)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{SupabaseUser: user, Tier: tier})
}

// ValidateToken echoes the authenticated user
func (h *AuthHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
