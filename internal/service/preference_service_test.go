package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"lifex-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUserPreferencesRepo struct {
	prefs       map[string]*domain.UserPreferences
	lastUpdated *domain.UserPreferences
	getErr      error
	updateErr   error
}

func newMockUserPreferencesRepo() *mockUserPreferencesRepo {
	return &mockUserPreferencesRepo{prefs: make(map[string]*domain.UserPreferences)}
}

func (m *mockUserPreferencesRepo) GetPreferences(ctx context.Context, userID string, token string) (*domain.UserPreferences, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if prefs, ok := m.prefs[userID]; ok {
		return prefs, nil
	}
	return &domain.UserPreferences{UserID: userID}, nil
}

func (m *mockUserPreferencesRepo) UpdatePreferences(ctx context.Context, prefs *domain.UserPreferences, token string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.lastUpdated = prefs
	m.prefs[prefs.UserID] = prefs
	return nil
}

func TestUserPreferencesService_UpdateLanguageNormalizes(t *testing.T) {
	repo := newMockUserPreferencesRepo()
	svc := NewUserPreferencesService(repo, NewMockLogger()).(*userPreferencesService)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }

	prefs, err := svc.UpdateLanguage(context.Background(), "u1", "ja-JP", "tok")
	require.NoError(t, err)
	assert.Equal(t, "ja", prefs.Language)
	assert.Equal(t, "u1", repo.lastUpdated.UserID)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), repo.lastUpdated.UpdatedAt)
}

func TestUserPreferencesService_UpdateLanguageClears(t *testing.T) {
	repo := newMockUserPreferencesRepo()
	repo.prefs["u1"] = &domain.UserPreferences{UserID: "u1", Language: "ko"}
	svc := NewUserPreferencesService(repo, NewMockLogger())

	prefs, err := svc.UpdateLanguage(context.Background(), "u1", "  ", "tok")
	require.NoError(t, err)
	assert.Empty(t, prefs.Language)
	assert.Empty(t, repo.prefs["u1"].Language)
}

func TestUserPreferencesService_UpdateLanguageRejectsUnsupported(t *testing.T) {
	repo := newMockUserPreferencesRepo()
	svc := NewUserPreferencesService(repo, NewMockLogger())

	_, err := svc.UpdateLanguage(context.Background(), "u1", "de", "tok")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "language", verr.Field)
	assert.Nil(t, repo.lastUpdated)

	_, err = svc.UpdateLanguage(context.Background(), "", "en", "tok")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "user_id", verr.Field)
}

func TestUserPreferencesService_UpdateLanguageRepositoryError(t *testing.T) {
	repo := newMockUserPreferencesRepo()
	repo.updateErr = errors.New("db down")
	svc := NewUserPreferencesService(repo, NewMockLogger())

	_, err := svc.UpdateLanguage(context.Background(), "u1", "en", "tok")
	assert.EqualError(t, err, "db down")
}

func TestUserPreferencesService_LanguageHint(t *testing.T) {
	repo := newMockUserPreferencesRepo()
	repo.prefs["stored"] = &domain.UserPreferences{UserID: "stored", Language: "zh"}
	svc := NewUserPreferencesService(repo, NewMockLogger())
	ctx := context.Background()

	assert.Equal(t, "ko", svc.LanguageHint(ctx, "stored", "tok", "ko", "hello"))
	assert.Equal(t, "zh", svc.LanguageHint(ctx, "stored", "tok", "", "hello"))
	assert.Equal(t, "hello", svc.LanguageHint(ctx, "nobody", "tok", "", "hello"))
}

func TestUserPreferencesService_LanguageHintIgnoresLookupErrors(t *testing.T) {
	repo := newMockUserPreferencesRepo()
	repo.getErr = errors.New("timeout")
	logger := NewMockLogger()
	svc := NewUserPreferencesService(repo, logger)

	assert.Equal(t, "en-US", svc.LanguageHint(context.Background(), "u1", "tok", "", "en-US"))
	assert.Contains(t, logger.Messages(), "WARN: Failed to load language preference")
}
