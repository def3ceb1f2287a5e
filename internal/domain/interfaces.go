package domain

import (
	"context"
	"time"
)

// UsageCounter is the durable per-user, per-assistant, per-hour chat counter.
// Increment must be atomic so that concurrent requests from one user cannot over-admit.
type UsageCounter interface {
	// Increment adds one to the bucket and returns the new count.
	Increment(ctx context.Context, userID string, assistant Assistant, hourBucket time.Time, token string) (int, error)
	// Read returns the current count of the bucket (0 when absent).
	Read(ctx context.Context, userID string, assistant Assistant, hourBucket time.Time, token string) (int, error)
	// Release gives back one unit reserved by Increment. Never drops below zero.
	Release(ctx context.Context, userID string, assistant Assistant, hourBucket time.Time, token string) error
}

// SubscriptionRepository loads and stores subscription tiers.
type SubscriptionRepository interface {
	GetTier(ctx context.Context, userID string, token string) (Tier, error)
	SetTier(ctx context.Context, userID string, tier Tier) error
}

// SubscriptionService resolves a user's tier, with caching.
type SubscriptionService interface {
	GetTier(ctx context.Context, userID string, token string) (Tier, error)
	SetTier(ctx context.Context, userID string, tier Tier) error
}

// AllowanceRepository counts usage of the non-chat entitlements.
type AllowanceRepository interface {
	CountProducts(ctx context.Context, userID string, token string) (int, error)
	CountTrendingThisMonth(ctx context.Context, userID string, monthStart time.Time, token string) (int, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetLogLevel() string
	GetLogFormat() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetSupabaseServiceRoleKey() string
	GetAdminSecret() string
	GetOpenAIAPIKey() string
	GetOpenAIModel() string
	GetOpenAIBaseURL() string
	GetUsageStore() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetWarningRatio() float64
	GetFailOpenLimit() int
	GetDefaultLanguage() string
	GetTierCacheTTL() time.Duration
	GetAllowedOrigins() []string
}
