package config

import (
	"context"
	"fmt"
	"time"

	"lifex-server/internal/domain"
	"lifex-server/internal/infra/openai"
	"lifex-server/internal/infra/supabase"
	"lifex-server/internal/quota"
	"lifex-server/internal/repository"
	"lifex-server/internal/service"
	"lifex-server/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	UsageStoreSupabase = "supabase"
	UsageStoreRedis    = "redis"
)

// Container holds all application dependencies
type Container struct {
	Config         domain.Config
	Logger         domain.Logger
	SupabaseClient domain.SupabaseClient
	RedisClient    *redis.Client

	SubscriptionRepository domain.SubscriptionRepository
	AllowanceRepository    domain.AllowanceRepository
	PreferenceRepository   domain.UserPreferencesRepository
	UsageCounter           domain.UsageCounter
	Oracle                 domain.LLMOracle
	Engine                 *quota.Engine

	AuthService         domain.AuthService
	SubscriptionService domain.SubscriptionService
	QuotaService        domain.QuotaService
	ChatService         domain.ChatService
	PreferenceService   domain.UserPreferencesService
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	cfg := NewConfig()
	appLogger := logger.NewLogger(cfg.GetLogLevel(), cfg.GetLogFormat())

	supabaseClient := supabase.NewSupabaseClient(cfg, appLogger)
	if err := supabaseClient.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize supabase: %w", err)
	}

	c := &Container{
		Config:                 cfg,
		Logger:                 appLogger,
		SupabaseClient:         supabaseClient,
		SubscriptionRepository: repository.NewSupabaseSubscriptionRepository(supabaseClient, appLogger),
		AllowanceRepository:    repository.NewSupabaseAllowanceRepository(supabaseClient, appLogger),
		PreferenceRepository:   repository.NewUserPreferencesRepository(supabaseClient, appLogger),
	}

	counter, err := c.newUsageCounter()
	if err != nil {
		return nil, err
	}
	c.UsageCounter = counter
	c.Oracle = c.newOracle()

	c.Engine = quota.NewEngine(
		quota.WithWarningRatio(cfg.GetWarningRatio()),
		quota.WithFailOpenLimit(cfg.GetFailOpenLimit()),
		quota.WithDefaultLanguage(quota.ParseLanguage(cfg.GetDefaultLanguage())),
	)
	if err := c.Engine.Policy().Validate(); err != nil {
		return nil, fmt.Errorf("invalid quota policy: %w", err)
	}

	subscriptions := service.NewSubscriptionService(c.SubscriptionRepository, appLogger, cfg.GetTierCacheTTL())
	c.AuthService = service.NewAuthService(supabaseClient, appLogger)
	c.SubscriptionService = subscriptions
	c.QuotaService = service.NewQuotaService(subscriptions, c.UsageCounter, c.AllowanceRepository, c.Engine, appLogger)
	c.ChatService = service.NewChatService(subscriptions, c.UsageCounter, c.Engine, c.Oracle, appLogger)
	c.PreferenceService = service.NewUserPreferencesService(c.PreferenceRepository, appLogger)

	return c, nil
}

func (c *Container) newUsageCounter() (domain.UsageCounter, error) {
	switch c.Config.GetUsageStore() {
	case UsageStoreRedis:
		c.RedisClient = redis.NewClient(&redis.Options{
			Addr:     c.Config.GetRedisAddr(),
			Password: c.Config.GetRedisPassword(),
			DB:       c.Config.GetRedisDB(),
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// An unreachable Redis is not fatal; the chat path fails open until it comes back.
		if err := c.RedisClient.Ping(ctx).Err(); err != nil {
			c.Logger.Warn("Redis not reachable at startup", "addr", c.Config.GetRedisAddr(), "error", err)
		} else {
			c.Logger.Info("Redis usage counter connected", "addr", c.Config.GetRedisAddr())
		}
		return repository.NewRedisUsageCounter(c.RedisClient, c.Logger), nil
	case UsageStoreSupabase, "":
		return repository.NewSupabaseUsageRepository(c.SupabaseClient, c.Logger), nil
	default:
		return nil, fmt.Errorf("unknown USAGE_STORE %q", c.Config.GetUsageStore())
	}
}

func (c *Container) newOracle() domain.LLMOracle {
	client, err := openai.New(openai.Config{
		APIKey:  c.Config.GetOpenAIAPIKey(),
		Model:   c.Config.GetOpenAIModel(),
		BaseURL: c.Config.GetOpenAIBaseURL(),
	}, c.Logger)
	if err != nil {
		c.Logger.Warn("Assistant model disabled", "error", err)
		return openai.Disabled{}
	}
	return client
}

// Close releases external connections
func (c *Container) Close() {
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Error("Failed to close redis client", err)
		}
	}
	if s, ok := c.Logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}
