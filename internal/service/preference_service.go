package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lifex-server/internal/domain"
	"lifex-server/internal/quota"
)

type userPreferencesService struct {
	userPreferencesRepo domain.UserPreferencesRepository
	logger              domain.Logger
	now                 func() time.Time
}

func NewUserPreferencesService(
	userPreferencesRepo domain.UserPreferencesRepository,
	logger domain.Logger,
) domain.UserPreferencesService {
	return &userPreferencesService{
		userPreferencesRepo: userPreferencesRepo,
		logger:              logger,
		now:                 time.Now,
	}
}

// GetPreferences retrieves user preferences
func (s *userPreferencesService) GetPreferences(ctx context.Context, userID string, token string) (*domain.UserPreferences, error) {
	return s.userPreferencesRepo.GetPreferences(ctx, userID, token)
}

// UpdateLanguage stores the preferred language. An empty language clears the preference.
func (s *userPreferencesService) UpdateLanguage(ctx context.Context, userID, language, token string) (*domain.UserPreferences, error) {
	if userID == "" {
		return nil, &domain.ValidationError{Field: "user_id", Message: "user id is required"}
	}
	language = strings.TrimSpace(language)
	if language != "" {
		lang, ok := quota.LookupLanguage(language)
		if !ok {
			return nil, &domain.ValidationError{Field: "language", Message: fmt.Sprintf("unsupported language %q", language)}
		}
		language = string(lang)
	}

	prefs := &domain.UserPreferences{
		UserID:    userID,
		Language:  language,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.userPreferencesRepo.UpdatePreferences(ctx, prefs, token); err != nil {
		return nil, err
	}
	return prefs, nil
}

// LanguageHint returns explicit when set, then the stored preference, then fallback.
func (s *userPreferencesService) LanguageHint(ctx context.Context, userID, token, explicit, fallback string) string {
	if explicit != "" {
		return explicit
	}
	prefs, err := s.userPreferencesRepo.GetPreferences(ctx, userID, token)
	if err != nil {
		s.logger.Warn("Failed to load language preference", "user_id", userID, "error", err)
		return fallback
	}
	if prefs != nil && prefs.Language != "" {
		return prefs.Language
	}
	return fallback
}
