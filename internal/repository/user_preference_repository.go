package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lifex-server/internal/domain"
)

const preferencesTable = "user_preferences"

// UserPreferencesRepository implements the domain.UserPreferencesRepository interface
type UserPreferencesRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

func NewUserPreferencesRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) *UserPreferencesRepository {
	return &UserPreferencesRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// GetPreferences retrieves user preferences from Supabase. A user without a row gets defaults.
func (r *UserPreferencesRepository) GetPreferences(ctx context.Context, userID string, token string) (*domain.UserPreferences, error) {
	// Use client with token for RLS policies
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	data, _, err := client.From(preferencesTable).
		Select("user_id,language,updated_at", "", false).
		Eq("user_id", userID).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	var rows []map[string]interface{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	if len(rows) == 0 {
		return &domain.UserPreferences{UserID: userID}, nil
	}
	return mapToPreferences(userID, rows[0]), nil
}

// UpdatePreferences updates or creates user preferences in Supabase
func (r *UserPreferencesRepository) UpdatePreferences(ctx context.Context, prefs *domain.UserPreferences, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	data := map[string]interface{}{
		"user_id":  prefs.UserID,
		"language": prefs.Language,
		// updated_at is maintained by a database trigger
	}
	if _, _, err := client.From(preferencesTable).Upsert(data, "user_id", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	return nil
}

func mapToPreferences(userID string, data map[string]interface{}) *domain.UserPreferences {
	prefs := &domain.UserPreferences{
		UserID:   getString(data, "user_id"),
		Language: getString(data, "language"),
	}
	if prefs.UserID == "" {
		prefs.UserID = userID
	}
	if ts := getString(data, "updated_at"); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			prefs.UpdatedAt = t
		}
	}
	return prefs
}

func getString(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
