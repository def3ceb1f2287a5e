package handler

import (
	"net/http"

	"lifex-server/internal/domain"
	"lifex-server/internal/quota"

	"github.com/gorilla/mux"
)

// QuotaHandler reports entitlement state without consuming quota.
type QuotaHandler struct {
	quotaService domain.QuotaService
	policy       quota.Policy
	preferences  domain.UserPreferencesService
	logger       domain.Logger
}

func NewQuotaHandler(quotaService domain.QuotaService, policy quota.Policy, logger domain.Logger) *QuotaHandler {
	return &QuotaHandler{
		quotaService: quotaService,
		policy:       policy,
		logger:       logger,
	}
}

// WithPreferences makes stored language preferences take part in hint resolution.
func (h *QuotaHandler) WithPreferences(preferences domain.UserPreferencesService) *QuotaHandler {
	h.preferences = preferences
	return h
}

// languageHint prefers ?lang=, then the stored preference, then Accept-Language.
func (h *QuotaHandler) languageHint(r *http.Request, userID, token string) string {
	return resolveLanguage(r, h.preferences, userID, token, r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
}

// GetPolicy returns the static quota table
func (h *QuotaHandler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.policy)
}

// GetStatus returns every entitlement of the caller
func (h *QuotaHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}
	token, _ := GetTokenFromContext(r)

	status, err := h.quotaService.Status(r.Context(), user.ID, token, h.languageHint(r, user.ID, token))
	if err != nil {
		h.logger.Error("Failed to get quota status", err, "user_id", user.ID)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// GetAssistantQuota returns the decision the caller's next message to an assistant would get
func (h *QuotaHandler) GetAssistantQuota(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}
	token, _ := GetTokenFromContext(r)

	assistant, ok := domain.ParseAssistant(mux.Vars(r)["assistant"])
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown assistant")
		return
	}

	d, err := h.quotaService.Check(r.Context(), user.ID, token, assistant, h.languageHint(r, user.ID, token))
	if err != nil {
		h.logger.Error("Failed to check assistant quota", err, "user_id", user.ID, "assistant", assistant)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
