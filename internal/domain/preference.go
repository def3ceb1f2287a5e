package domain

import (
	"context"
	"time"
)

// UserPreferences is a row of the user_preferences table.
type UserPreferences struct {
	UserID string `json:"user_id"`
	// Language is the preferred language code for quota messages and replies; empty means auto-detect.
	Language  string    `json:"language"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type UserPreferencesRepository interface {
	GetPreferences(ctx context.Context, userID string, token string) (*UserPreferences, error)
	UpdatePreferences(ctx context.Context, prefs *UserPreferences, token string) error
}

type UserPreferencesService interface {
	GetPreferences(ctx context.Context, userID string, token string) (*UserPreferences, error)
	UpdateLanguage(ctx context.Context, userID, language, token string) (*UserPreferences, error)
	// LanguageHint picks the hint for a request: explicit value, then stored preference, then fallback text.
	LanguageHint(ctx context.Context, userID, token, explicit, fallback string) string
}
