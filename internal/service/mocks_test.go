package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lifex-server/internal/domain"

	"github.com/supabase-community/supabase-go"
)

// MockLogger records log lines for assertions
type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{messages: []string{}}
}

func (m *MockLogger) add(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, line)
}

func (m *MockLogger) Info(msg string, args ...interface{})  { m.add("INFO: " + msg) }
func (m *MockLogger) Debug(msg string, args ...interface{}) { m.add("DEBUG: " + msg) }
func (m *MockLogger) Warn(msg string, args ...interface{})  { m.add("WARN: " + msg) }
func (m *MockLogger) Error(msg string, err error, args ...interface{}) {
	m.add("ERROR: " + msg + " - " + err.Error())
}

func (m *MockLogger) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

// MockSupabaseClient for testing
type MockSupabaseClient struct{}

func (m *MockSupabaseClient) Initialize() error { return nil }

func (m *MockSupabaseClient) ValidateToken(token string) (*domain.SupabaseUser, error) {
	switch token {
	case "valid-token":
		return &domain.SupabaseUser{ID: "user-123", Email: "test@example.com"}, nil
	case "invalid-token":
		return nil, errors.New("invalid token")
	default:
		return nil, errors.New("token validation failed")
	}
}

func (m *MockSupabaseClient) DB() *supabase.Client { return nil }

func (m *MockSupabaseClient) GetClientWithToken(token string) (*supabase.Client, error) {
	return nil, nil
}

func (m *MockSupabaseClient) ServiceClient() (*supabase.Client, error) { return nil, nil }

// MockSubscriptionRepository serves tiers from a map
type MockSubscriptionRepository struct {
	mu    sync.Mutex
	tiers map[string]domain.Tier
	calls int
	err   error
}

func NewMockSubscriptionRepository() *MockSubscriptionRepository {
	return &MockSubscriptionRepository{tiers: make(map[string]domain.Tier)}
}

func (m *MockSubscriptionRepository) GetTier(ctx context.Context, userID string, token string) (domain.Tier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	if t, ok := m.tiers[userID]; ok {
		return t, nil
	}
	return domain.TierFree, nil
}

func (m *MockSubscriptionRepository) SetTier(ctx context.Context, userID string, tier domain.Tier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.tiers[userID] = tier
	return nil
}

func (m *MockSubscriptionRepository) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockUsageCounter is an in-memory counter keyed like the Redis one
type MockUsageCounter struct {
	mu       sync.Mutex
	counts   map[string]int
	releases int
	err      error
}

func NewMockUsageCounter() *MockUsageCounter {
	return &MockUsageCounter{counts: make(map[string]int)}
}

func counterKey(userID string, a domain.Assistant, bucket time.Time) string {
	return fmt.Sprintf("%s:%s:%s", userID, a, bucket.UTC().Format("2006010215"))
}

func (m *MockUsageCounter) Set(userID string, a domain.Assistant, bucket time.Time, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[counterKey(userID, a, bucket)] = n
}

func (m *MockUsageCounter) Get(userID string, a domain.Assistant, bucket time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[counterKey(userID, a, bucket)]
}

func (m *MockUsageCounter) Increment(ctx context.Context, userID string, a domain.Assistant, bucket time.Time, token string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	k := counterKey(userID, a, bucket)
	m.counts[k]++
	return m.counts[k], nil
}

func (m *MockUsageCounter) Read(ctx context.Context, userID string, a domain.Assistant, bucket time.Time, token string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return m.counts[counterKey(userID, a, bucket)], nil
}

func (m *MockUsageCounter) Release(ctx context.Context, userID string, a domain.Assistant, bucket time.Time, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.releases++
	k := counterKey(userID, a, bucket)
	if m.counts[k] > 0 {
		m.counts[k]--
	}
	return nil
}

// MockOracle answers with a fixed reply
type MockOracle struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []domain.CompletionRequest
}

func (m *MockOracle) Complete(ctx context.Context, req domain.CompletionRequest) (*domain.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Completion{Text: m.reply, Model: "mock", InputTokens: 3, OutputTokens: 5}, nil
}

func (m *MockOracle) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// MockAllowanceRepository returns fixed counts
type MockAllowanceRepository struct {
	products int
	trending int
	err      error
}

func (m *MockAllowanceRepository) CountProducts(ctx context.Context, userID string, token string) (int, error) {
	return m.products, m.err
}

func (m *MockAllowanceRepository) CountTrendingThisMonth(ctx context.Context, userID string, monthStart time.Time, token string) (int, error) {
	return m.trending, m.err
}
