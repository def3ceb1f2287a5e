package handler

import (
	"encoding/json"
	"net/http"

	"lifex-server/internal/domain"
)

// PreferenceHandler handles preference-related HTTP requests
type PreferenceHandler struct {
	preferenceService domain.UserPreferencesService
	logger            domain.Logger
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(preferenceService domain.UserPreferencesService, logger domain.Logger) *PreferenceHandler {
	return &PreferenceHandler{
		preferenceService: preferenceService,
		logger:            logger,
	}
}

// GetPreferences handles getting user preferences
func (h *PreferenceHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}
	token, _ := GetTokenFromContext(r)

	preferences, err := h.preferenceService.GetPreferences(r.Context(), user.ID, token)
	if err != nil {
		h.logger.Error("Failed to get preferences", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve preferences")
		return
	}

	writeJSON(w, http.StatusOK, preferences)
}

type updatePreferencesRequest struct {
	Language *string `json:"language"`
}

// UpdatePreferences handles updating user preferences
func (h *PreferenceHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}
	token, _ := GetTokenFromContext(r)

	var req updatePreferencesRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Language == nil {
		writeError(w, http.StatusBadRequest, "language is required")
		return
	}

	preferences, err := h.preferenceService.UpdateLanguage(r.Context(), user.ID, *req.Language, token)
	if err != nil {
		h.logger.Error("Failed to update preferences", err, "user_id", user.ID)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, preferences)
}

// resolveLanguage returns the language hint for a request. prefs may be nil.
func resolveLanguage(r *http.Request, prefs domain.UserPreferencesService, userID, token, explicit, fallback string) string {
	if prefs == nil {
		if explicit != "" {
			return explicit
		}
		return fallback
	}
	return prefs.LanguageHint(r.Context(), userID, token, explicit, fallback)
}
