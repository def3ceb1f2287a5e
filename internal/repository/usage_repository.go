package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"lifex-server/internal/domain"

	"github.com/spf13/cast"
)

const usageTable = "assistant_usage"

// SupabaseUsageRepository keeps hourly assistant counters in `assistant_usage`.
// Increment and Release go through Postgres functions; each call is one atomic upsert.
type SupabaseUsageRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

func NewSupabaseUsageRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) *SupabaseUsageRepository {
	return &SupabaseUsageRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

func usageParams(userID string, assistant domain.Assistant, hourBucket time.Time) map[string]interface{} {
	return map[string]interface{}{
		"p_user_id":     userID,
		"p_assistant":   string(assistant),
		"p_hour_bucket": hourBucket.UTC().Format(time.RFC3339),
	}
}

func (r *SupabaseUsageRepository) Increment(ctx context.Context, userID string, assistant domain.Assistant, hourBucket time.Time, token string) (int, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return 0, fmt.Errorf("failed to get client: %w", err)
	}

	// Rpc reports failures only through the body, so an empty or non-numeric body is an error.
	resp := client.Rpc("increment_assistant_usage", "", usageParams(userID, assistant, hourBucket))
	n, err := parseCount(resp)
	if err != nil {
		return 0, fmt.Errorf("increment_assistant_usage: %w", err)
	}
	return n, nil
}

func (r *SupabaseUsageRepository) Release(ctx context.Context, userID string, assistant domain.Assistant, hourBucket time.Time, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}

	resp := client.Rpc("release_assistant_usage", "", usageParams(userID, assistant, hourBucket))
	if _, err := parseCount(resp); err != nil {
		return fmt.Errorf("release_assistant_usage: %w", err)
	}
	return nil
}

func (r *SupabaseUsageRepository) Read(ctx context.Context, userID string, assistant domain.Assistant, hourBucket time.Time, token string) (int, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return 0, fmt.Errorf("failed to get client: %w", err)
	}

	resp, _, err := client.From(usageTable).
		Select("count", "", false).
		Eq("user_id", userID).
		Eq("assistant", string(assistant)).
		Eq("hour_bucket", hourBucket.UTC().Format(time.RFC3339)).
		Limit(1, "").
		Execute()
	if err != nil {
		return 0, fmt.Errorf("failed to get usage: %w", err)
	}

	var rows []struct {
		Count int `json:"count"`
	}
	if len(resp) == 0 {
		return 0, nil
	}
	if err := json.Unmarshal(resp, &rows); err != nil {
		return 0, fmt.Errorf("failed to unmarshal usage: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Count, nil
}

// parseCount reads the scalar returned by a counter function.
// PostgREST returns it bare (`3`) or, for set-returning functions, as a one-row array.
func parseCount(resp string) (int, error) {
	body := strings.TrimSpace(resp)
	if body == "" {
		return 0, fmt.Errorf("rpc returned empty response")
	}

	var raw interface{}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return 0, fmt.Errorf("unexpected rpc response: %s", body)
	}
	if rows, ok := raw.([]interface{}); ok {
		if len(rows) == 0 {
			return 0, fmt.Errorf("rpc returned no rows")
		}
		raw = rows[0]
	}
	if row, ok := raw.(map[string]interface{}); ok {
		if msg, hasMsg := row["message"]; hasMsg {
			return 0, fmt.Errorf("rpc error: %v", msg)
		}
		raw = row["count"]
	}

	n, err := cast.ToIntE(raw)
	if err != nil {
		return 0, fmt.Errorf("unexpected rpc response: %s", body)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative usage count %d", n)
	}
	return n, nil
}
