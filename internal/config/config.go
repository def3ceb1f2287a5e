package config

import (
	"strings"
	"time"

	"lifex-server/internal/domain"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort             string
	LogLevel               string
	LogFormat              string
	SupabaseURL            string
	SupabaseKey            string
	SupabaseServiceRoleKey string
	AdminSecret            string
	OpenAIAPIKey           string
	OpenAIModel            string
	OpenAIBaseURL          string
	UsageStore             string
	RedisAddr              string
	RedisPassword          string
	RedisDB                int
	WarningRatio           float64
	FailOpenLimit          int
	DefaultLanguage        string
	TierCacheTTL           time.Duration
	AllowedOrigins         []string
}

const (
	defaultServerPort    = "8080"
	defaultWarningRatio  = 0.8
	defaultFailOpenLimit = 50
	defaultTierCacheTTL  = 30 * time.Second
)

var defaultAllowedOrigins = []string{
	"http://localhost:8081", // Expo dev server
	"http://localhost:5173", // web dev server
	"http://localhost:3000",
}

// NewConfig creates a new configuration instance from the environment, with default values
func NewConfig() domain.Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", defaultServerPort)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("USAGE_STORE", "supabase")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("DEFAULT_LANGUAGE", "en")

	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:             firstNonEmpty(v.GetString("PORT"), v.GetString("SERVER_PORT"), defaultServerPort),
		LogLevel:               firstNonEmpty(v.GetString("LOG_LEVEL"), "info"),
		LogFormat:              firstNonEmpty(v.GetString("LOG_FORMAT"), "json"),
		SupabaseURL:            v.GetString("SUPABASE_URL"),
		SupabaseKey:            v.GetString("SUPABASE_ANON_KEY"),
		SupabaseServiceRoleKey: v.GetString("SUPABASE_SERVICE_ROLE_KEY"),
		AdminSecret:            v.GetString("ADMIN_API_SECRET"),
		OpenAIAPIKey:           v.GetString("OPENAI_API_KEY"),
		OpenAIModel:            firstNonEmpty(v.GetString("OPENAI_MODEL"), "gpt-4o-mini"),
		OpenAIBaseURL:          firstNonEmpty(v.GetString("OPENAI_BASE_URL"), "https://api.openai.com/v1"),
		UsageStore:             strings.ToLower(firstNonEmpty(v.GetString("USAGE_STORE"), "supabase")),
		RedisAddr:              firstNonEmpty(v.GetString("REDIS_ADDR"), "localhost:6379"),
		RedisPassword:          v.GetString("REDIS_PASSWORD"),
		RedisDB:                intOrDefault(v, "REDIS_DB", 0),
		WarningRatio:           ratioOrDefault(v, "QUOTA_WARNING_RATIO", defaultWarningRatio),
		FailOpenLimit:          positiveIntOrDefault(v, "QUOTA_FAIL_OPEN_LIMIT", defaultFailOpenLimit),
		DefaultLanguage:        firstNonEmpty(v.GetString("DEFAULT_LANGUAGE"), "en"),
		TierCacheTTL:           durationOrDefault(v, "TIER_CACHE_TTL", defaultTierCacheTTL),
		AllowedOrigins:         listOrDefault(v, "CORS_ALLOWED_ORIGINS", defaultAllowedOrigins),
	}
}

func (c *AppConfig) GetServerPort() string             { return c.ServerPort }
func (c *AppConfig) GetLogLevel() string               { return c.LogLevel }
func (c *AppConfig) GetLogFormat() string              { return c.LogFormat }
func (c *AppConfig) GetSupabaseURL() string            { return c.SupabaseURL }
func (c *AppConfig) GetSupabaseKey() string            { return c.SupabaseKey }
func (c *AppConfig) GetSupabaseServiceRoleKey() string { return c.SupabaseServiceRoleKey }
func (c *AppConfig) GetAdminSecret() string            { return c.AdminSecret }
func (c *AppConfig) GetOpenAIAPIKey() string           { return c.OpenAIAPIKey }
func (c *AppConfig) GetOpenAIModel() string            { return c.OpenAIModel }
func (c *AppConfig) GetOpenAIBaseURL() string          { return c.OpenAIBaseURL }
func (c *AppConfig) GetUsageStore() string             { return c.UsageStore }
func (c *AppConfig) GetRedisAddr() string              { return c.RedisAddr }
func (c *AppConfig) GetRedisPassword() string          { return c.RedisPassword }
func (c *AppConfig) GetRedisDB() int                   { return c.RedisDB }
func (c *AppConfig) GetWarningRatio() float64          { return c.WarningRatio }
func (c *AppConfig) GetFailOpenLimit() int             { return c.FailOpenLimit }
func (c *AppConfig) GetDefaultLanguage() string        { return c.DefaultLanguage }
func (c *AppConfig) GetTierCacheTTL() time.Duration    { return c.TierCacheTTL }
func (c *AppConfig) GetAllowedOrigins() []string       { return c.AllowedOrigins }

// Helper functions for environment variable handling.
// Malformed values fall back to the default instead of failing startup.

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func intOrDefault(v *viper.Viper, key string, defaultValue int) int {
	if !v.IsSet(key) || v.GetString(key) == "" {
		return defaultValue
	}
	n, err := cast.ToIntE(v.GetString(key))
	if err != nil {
		return defaultValue
	}
	return n
}

func positiveIntOrDefault(v *viper.Viper, key string, defaultValue int) int {
	n := intOrDefault(v, key, defaultValue)
	if n <= 0 {
		return defaultValue
	}
	return n
}

func ratioOrDefault(v *viper.Viper, key string, defaultValue float64) float64 {
	if !v.IsSet(key) || v.GetString(key) == "" {
		return defaultValue
	}
	f, err := cast.ToFloat64E(v.GetString(key))
	if err != nil || f <= 0 || f > 1 {
		return defaultValue
	}
	return f
}

func durationOrDefault(v *viper.Viper, key string, defaultValue time.Duration) time.Duration {
	if !v.IsSet(key) || v.GetString(key) == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil || d < 0 {
		return defaultValue
	}
	return d
}

func listOrDefault(v *viper.Viper, key string, defaultValue []string) []string {
	raw := v.GetString(key)
	if strings.TrimSpace(raw) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
