package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"lifex-server/internal/domain"

	"github.com/gorilla/mux"
)

// AdminHandler exposes admin-only endpoints protected by X-Admin-Secret.
// They are called by billing and support tooling, not by the apps.
type AdminHandler struct {
	subscriptions domain.SubscriptionService
	secret        string
	logger        domain.Logger
}

func NewAdminHandler(subscriptions domain.SubscriptionService, secret string, logger domain.Logger) *AdminHandler {
	return &AdminHandler{
		subscriptions: subscriptions,
		secret:        secret,
		logger:        logger,
	}
}

func (h *AdminHandler) authorized(r *http.Request) bool {
	secret := r.Header.Get("X-Admin-Secret")
	return h.secret != "" && secret != "" && subtle.ConstantTimeCompare([]byte(secret), []byte(h.secret)) == 1
}

type setTierRequest struct {
	Tier string `json:"tier"`
}

// SetTier records a user's new subscription tier.
func (h *AdminHandler) SetTier(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	userID := mux.Vars(r)["id"]
	if userID == "" {
		writeError(w, http.StatusBadRequest, "User id is required")
		return
	}

	var req setTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	tier, ok := domain.ParseTier(req.Tier)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown tier")
		return
	}

	if err := h.subscriptions.SetTier(r.Context(), userID, tier); err != nil {
		h.logger.Error("Failed to set subscription tier", err, "user_id", userID, "tier", tier)
		writeError(w, http.StatusInternalServerError, "Failed to update subscription tier")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"tier":    tier,
	})
}
