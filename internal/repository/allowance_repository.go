package repository

import (
	"context"
	"fmt"
	"time"

	"lifex-server/internal/domain"
)

const (
	productsTable      = "products"
	trendingViewsTable = "trending_views"
)

// SupabaseAllowanceRepository counts product listings and trending views.
type SupabaseAllowanceRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

func NewSupabaseAllowanceRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) *SupabaseAllowanceRepository {
	return &SupabaseAllowanceRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

func (r *SupabaseAllowanceRepository) CountProducts(ctx context.Context, userID string, token string) (int, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return 0, fmt.Errorf("failed to get client: %w", err)
	}

	_, count, err := client.From(productsTable).
		Select("id", "exact", true).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return int(count), nil
}

func (r *SupabaseAllowanceRepository) CountTrendingThisMonth(ctx context.Context, userID string, monthStart time.Time, token string) (int, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return 0, fmt.Errorf("failed to get client: %w", err)
	}

	_, count, err := client.From(trendingViewsTable).
		Select("id", "exact", true).
		Eq("user_id", userID).
		Gte("viewed_at", monthStart.UTC().Format(time.RFC3339)).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("failed to count trending views: %w", err)
	}
	return int(count), nil
}
