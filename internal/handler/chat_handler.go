package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"lifex-server/internal/domain"

	"github.com/gorilla/mux"
)

const maxMessageLen = 4000

// ChatHandler serves gated assistant chat.
type ChatHandler struct {
	chatService domain.ChatService
	preferences domain.UserPreferencesService
	logger      domain.Logger
}

func NewChatHandler(chatService domain.ChatService, logger domain.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// WithPreferences makes the stored language preference apply when a request names none.
func (h *ChatHandler) WithPreferences(preferences domain.UserPreferencesService) *ChatHandler {
	h.preferences = preferences
	return h
}

// Send handles POST /assistants/{assistant}/chat
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
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

	var req domain.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message cannot be empty")
		return
	}
	if utf8.RuneCountInString(req.Message) > maxMessageLen {
		writeError(w, http.StatusBadRequest, "message too long")
		return
	}
	if req.Language == "" {
		req.Language = r.URL.Query().Get("lang")
	}
	req.Language = resolveLanguage(r, h.preferences, user.ID, token, req.Language, "")

	resp, err := h.chatService.Send(r.Context(), user.ID, token, assistant, req)
	if err != nil {
		var denied *domain.QuotaDeniedError
		if !errors.As(err, &denied) {
			h.logger.Error("Assistant chat failed", err, "user_id", user.ID, "assistant", assistant, "request_id", GetRequestIDFromContext(r))
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
