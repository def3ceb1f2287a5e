package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lifex-server/internal/domain"

	"github.com/supabase-community/postgrest-go"
)

const subscriptionsTable = "user_subscriptions"

// SupabaseSubscriptionRepository reads tiers from `user_subscriptions`.
// The newest active row wins; a user without one is on the free tier.
type SupabaseSubscriptionRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
	now            func() time.Time
}

func NewSupabaseSubscriptionRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) *SupabaseSubscriptionRepository {
	return &SupabaseSubscriptionRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
		now:            time.Now,
	}
}

func (r *SupabaseSubscriptionRepository) GetTier(ctx context.Context, userID string, token string) (domain.Tier, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return "", fmt.Errorf("failed to get client: %w", err)
	}

	resp, _, err := client.From(subscriptionsTable).
		Select("user_id,tier,status,created_at", "", false).
		Eq("user_id", userID).
		Eq("status", domain.SubscriptionStatusActive).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(1, "").
		Execute()
	if err != nil {
		return "", fmt.Errorf("failed to get subscription: %w", err)
	}

	var rows []domain.Subscription
	if len(resp) > 0 {
		if err := json.Unmarshal(resp, &rows); err != nil {
			return "", fmt.Errorf("failed to unmarshal subscription: %w", err)
		}
	}
	if len(rows) == 0 {
		return domain.TierFree, nil
	}

	tier, ok := domain.ParseTier(string(rows[0].Tier))
	if !ok {
		r.logger.Warn("Unknown subscription tier, treating as free", "user_id", userID, "tier", rows[0].Tier)
		return domain.TierFree, nil
	}
	return tier, nil
}

// SetTier records a new active subscription row. It runs with the service role
// because users cannot grant themselves a tier.
//
// The new row is inserted before older active rows are retired, so a failed
// write never leaves the user without an active row. While both exist the
// newest one wins in GetTier.
func (r *SupabaseSubscriptionRepository) SetTier(ctx context.Context, userID string, tier domain.Tier) error {
	client, err := r.supabaseClient.ServiceClient()
	if err != nil {
		return fmt.Errorf("failed to get service client: %w", err)
	}

	// Postgres keeps microseconds; the retire filter compares against this exact value.
	now := r.now().UTC().Truncate(time.Microsecond)
	createdAt := now.Format(time.RFC3339Nano)

	data := map[string]interface{}{
		"user_id":    userID,
		"tier":       tier,
		"status":     domain.SubscriptionStatusActive,
		"created_at": createdAt,
	}
	if _, _, err := client.From(subscriptionsTable).Insert(data, false, "", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}

	_, _, err = client.From(subscriptionsTable).
		Update(map[string]interface{}{"status": domain.SubscriptionStatusReplaced}, "minimal", "").
		Eq("user_id", userID).
		Eq("status", domain.SubscriptionStatusActive).
		Lt("created_at", createdAt).
		Execute()
	if err != nil {
		// The new row is already the newest active one, so the tier change stands.
		r.logger.Warn("Failed to retire previous subscriptions", "user_id", userID, "tier", tier, "error", err)
	}

	r.logger.Info("Subscription tier updated", "user_id", userID, "tier", tier)
	return nil
}
