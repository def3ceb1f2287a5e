package handler

import (
	"context"
	"net/http"

	"lifex-server/internal/domain"

	"github.com/gorilla/mux"
)

func createContextWithUser(r *http.Request, user *domain.SupabaseUser) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	return r.WithContext(ctx)
}

func createContextWithToken(r *http.Request, token string) *http.Request {
	ctx := context.WithValue(r.Context(), tokenContextKey, token)
	return r.WithContext(ctx)
}

func authenticated(r *http.Request) *http.Request {
	r = createContextWithUser(r, &domain.SupabaseUser{ID: "user-1", Email: "test@example.com"})
	return createContextWithToken(r, "tok")
}

func withVars(r *http.Request, vars map[string]string) *http.Request {
	return mux.SetURLVars(r, vars)
}

type mockSubscriptionService struct {
	tier    domain.Tier
	err     error
	setUser string
	setTier domain.Tier
}

func (m *mockSubscriptionService) GetTier(ctx context.Context, userID string, token string) (domain.Tier, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.tier, nil
}

func (m *mockSubscriptionService) SetTier(ctx context.Context, userID string, tier domain.Tier) error {
	if m.err != nil {
		return m.err
	}
	m.setUser, m.setTier = userID, tier
	return nil
}

type mockQuotaService struct {
	decision *domain.Decision
	status   *domain.QuotaStatus
	err      error
	lastHint string
}

func (m *mockQuotaService) Check(ctx context.Context, userID, token string, assistant domain.Assistant, languageHint string) (*domain.Decision, error) {
	m.lastHint = languageHint
	return m.decision, m.err
}

func (m *mockQuotaService) Status(ctx context.Context, userID, token, languageHint string) (*domain.QuotaStatus, error) {
	m.lastHint = languageHint
	return m.status, m.err
}

type mockChatService struct {
	resp    *domain.ChatResponse
	err     error
	lastReq domain.ChatRequest
	calls   int
}

func (m *mockChatService) Send(ctx context.Context, userID, token string, assistant domain.Assistant, req domain.ChatRequest) (*domain.ChatResponse, error) {
	m.calls++
	m.lastReq = req
	return m.resp, m.err
}

type mockPreferenceService struct {
	prefs     map[string]*domain.UserPreferences
	updateErr error
	getErr    error
}

func newMockPreferenceService() *mockPreferenceService {
	return &mockPreferenceService{prefs: make(map[string]*domain.UserPreferences)}
}

func (m *mockPreferenceService) GetPreferences(ctx context.Context, userID string, token string) (*domain.UserPreferences, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if prefs, ok := m.prefs[userID]; ok {
		return prefs, nil
	}
	return &domain.UserPreferences{UserID: userID}, nil
}

func (m *mockPreferenceService) UpdateLanguage(ctx context.Context, userID, language, token string) (*domain.UserPreferences, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	prefs := &domain.UserPreferences{UserID: userID, Language: language}
	m.prefs[userID] = prefs
	return prefs, nil
}

func (m *mockPreferenceService) LanguageHint(ctx context.Context, userID, token, explicit, fallback string) string {
	if explicit != "" {
		return explicit
	}
	if prefs, ok := m.prefs[userID]; ok && prefs.Language != "" {
		return prefs.Language
	}
	return fallback
}
