package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lifex-server/internal/domain"
	"lifex-server/internal/quota"
)

func newTestRouter(auth domain.AuthService, chat *mockChatService) http.Handler {
	logger := NewMockHandlerLogger()
	subs := &mockSubscriptionService{tier: domain.TierEssential}
	return NewRouter(
		NewAuthHandler(subs, logger),
		NewQuotaHandler(&mockQuotaService{decision: &domain.Decision{CanUse: true}}, quota.DefaultPolicy(), logger),
		NewChatHandler(chat, logger),
		NewAdminHandler(subs, "s3cret", logger),
		NewPreferenceHandler(newMockPreferenceService(), logger),
		NewAuthMiddleware(auth, logger).Middleware,
		[]string{"http://localhost:8081"},
	)
}

func TestNewRouter_Health(t *testing.T) {
	router := newTestRouter(&mockAuthService{}, &mockChatService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header")
	}
}

func TestNewRouter_PolicyIsPublic(t *testing.T) {
	router := newTestRouter(&mockAuthService{}, &mockChatService{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/quota/policy", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestNewRouter_ChatRequiresAuth(t *testing.T) {
	chat := &mockChatService{}
	router := newTestRouter(&mockAuthService{}, chat)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/assistants/coly/chat", strings.NewReader(`{"message":"hi"}`)))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	if chat.calls != 0 {
		t.Fatalf("expected chat service not to be called")
	}
}

func TestNewRouter_ChatAuthenticated(t *testing.T) {
	chat := &mockChatService{resp: &domain.ChatResponse{Assistant: domain.AssistantColy, Reply: "hello"}}
	auth := &mockAuthService{user: &domain.SupabaseUser{ID: "user-1"}}
	router := newTestRouter(auth, chat)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistants/coly/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Authorization", "Bearer good")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if auth.lastToken != "good" {
		t.Fatalf("expected token to be validated, got %q", auth.lastToken)
	}
}

func TestNewRouter_Metrics(t *testing.T) {
	router := newTestRouter(&mockAuthService{}, &mockChatService{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "lifex_http_requests_total") && !strings.Contains(rr.Body.String(), "go_goroutines") {
		t.Fatalf("expected prometheus exposition, got %s", rr.Body.String())
	}
}
