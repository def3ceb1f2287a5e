package config

import (
	"testing"

	"lifex-server/internal/infra/openai"
	"lifex-server/internal/repository"

	"github.com/alicebob/miniredis/v2"
)

func TestNewContainer_RequiresSupabase(t *testing.T) {
	clearEnv(t)

	if _, err := NewContainer(); err == nil {
		t.Fatalf("expected error without supabase configuration")
	}
}

func TestNewContainer_SupabaseUsageStore(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUPABASE_URL", "http://localhost:54321")
	t.Setenv("SUPABASE_ANON_KEY", "test-key")

	c, err := NewContainer()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer c.Close()

	if _, ok := c.UsageCounter.(*repository.SupabaseUsageRepository); !ok {
		t.Fatalf("expected supabase usage counter, got %T", c.UsageCounter)
	}
	if _, ok := c.Oracle.(openai.Disabled); !ok {
		t.Fatalf("expected disabled oracle without an API key, got %T", c.Oracle)
	}
	if c.ChatService == nil || c.QuotaService == nil || c.AuthService == nil || c.PreferenceService == nil {
		t.Fatalf("expected services to be wired")
	}
}

func TestNewContainer_RedisUsageStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	clearEnv(t)
	t.Setenv("SUPABASE_URL", "http://localhost:54321")
	t.Setenv("SUPABASE_ANON_KEY", "test-key")
	t.Setenv("USAGE_STORE", "redis")
	t.Setenv("REDIS_ADDR", mr.Addr())
	t.Setenv("OPENAI_API_KEY", "sk-test")

	c, err := NewContainer()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer c.Close()

	if _, ok := c.UsageCounter.(*repository.RedisUsageCounter); !ok {
		t.Fatalf("expected redis usage counter, got %T", c.UsageCounter)
	}
	if _, ok := c.Oracle.(*openai.Client); !ok {
		t.Fatalf("expected openai client, got %T", c.Oracle)
	}
}

func TestNewContainer_UnknownUsageStore(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUPABASE_URL", "http://localhost:54321")
	t.Setenv("SUPABASE_ANON_KEY", "test-key")
	t.Setenv("USAGE_STORE", "memcached")

	if _, err := NewContainer(); err == nil {
		t.Fatalf("expected error for unknown usage store")
	}
}
