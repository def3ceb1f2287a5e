package repository

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"lifex-server/internal/domain"

	"github.com/supabase-community/supabase-go"
)

// recordedRequest is one PostgREST call seen by restServer.
type recordedRequest struct {
	Method string
	Table  string
	Query  map[string]string
}

// restServer stands in for the PostgREST endpoint of a Supabase project.
type restServer struct {
	mu       sync.Mutex
	requests []recordedRequest
	handler  func(w http.ResponseWriter, r *http.Request)
	server   *httptest.Server
}

func newRestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *restServer {
	t.Helper()
	s := &restServer{handler: handler}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := map[string]string{}
		for k, v := range r.URL.Query() {
			query[k] = v[0]
		}
		s.mu.Lock()
		s.requests = append(s.requests, recordedRequest{
			Method: r.Method,
			Table:  r.URL.Path[len("/rest/v1/"):],
			Query:  query,
		})
		s.mu.Unlock()
		s.handler(w, r)
	}))
	t.Cleanup(s.server.Close)
	return s
}

func (s *restServer) Requests() []recordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recordedRequest(nil), s.requests...)
}

// fakeSupabaseClient hands out clients pointed at a restServer.
type fakeSupabaseClient struct {
	url string
}

func (f *fakeSupabaseClient) Initialize() error { return nil }

func (f *fakeSupabaseClient) ValidateToken(token string) (*domain.SupabaseUser, error) {
	return &domain.SupabaseUser{ID: "u1"}, nil
}

func (f *fakeSupabaseClient) DB() *supabase.Client {
	client, _ := f.GetClientWithToken("anon")
	return client
}

func (f *fakeSupabaseClient) GetClientWithToken(token string) (*supabase.Client, error) {
	return supabase.NewClient(f.url, "test-key", &supabase.ClientOptions{
		Headers: map[string]string{"Authorization": "Bearer " + token},
	})
}

func (f *fakeSupabaseClient) ServiceClient() (*supabase.Client, error) {
	return supabase.NewClient(f.url, "service-key", &supabase.ClientOptions{})
}

func writePostgrestError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"code":"XX000","message":"` + message + `","details":null,"hint":null}`))
}
