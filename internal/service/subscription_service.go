package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lifex-server/internal/domain"
)

const defaultTierCacheTTL = 30 * time.Second

type tierCacheEntry struct {
	tier      domain.Tier
	expiresAt time.Time
}

// subscriptionService resolves tiers through the repository and keeps them for a
// short TTL. SetTier drops the cached entry so an upgrade applies on the next request.
type subscriptionService struct {
	repo   domain.SubscriptionRepository
	logger domain.Logger
	ttl    time.Duration
	now    func() time.Time

	cacheMu   sync.RWMutex
	cache     map[string]tierCacheEntry
	lastSweep time.Time
}

func NewSubscriptionService(repo domain.SubscriptionRepository, logger domain.Logger, ttl time.Duration) *subscriptionService {
	if ttl < 0 {
		ttl = defaultTierCacheTTL
	}
	return &subscriptionService{
		repo:   repo,
		logger: logger,
		ttl:    ttl,
		now:    time.Now,
		cache:  make(map[string]tierCacheEntry),
	}
}

func (s *subscriptionService) GetTier(ctx context.Context, userID string, token string) (domain.Tier, error) {
	now := s.now()
	s.cacheMu.RLock()
	entry, ok := s.cache[userID]
	s.cacheMu.RUnlock()
	if ok && now.Before(entry.expiresAt) {
		return entry.tier, nil
	}

	tier, err := s.repo.GetTier(ctx, userID, token)
	if err != nil {
		return "", fmt.Errorf("failed to load subscription tier: %w", err)
	}
	tier = domain.NormalizeTier(string(tier))

	if s.ttl > 0 {
		s.cacheMu.Lock()
		s.sweepLocked(now)
		s.cache[userID] = tierCacheEntry{tier: tier, expiresAt: now.Add(s.ttl)}
		s.cacheMu.Unlock()
	}
	return tier, nil
}

func (s *subscriptionService) SetTier(ctx context.Context, userID string, tier domain.Tier) error {
	parsed, ok := domain.ParseTier(string(tier))
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownTier, tier)
	}
	if userID == "" {
		return &domain.ValidationError{Field: "user_id", Message: "is required"}
	}

	if err := s.repo.SetTier(ctx, userID, parsed); err != nil {
		return fmt.Errorf("failed to set subscription tier: %w", err)
	}

	s.cacheMu.Lock()
	delete(s.cache, userID)
	s.cacheMu.Unlock()
	return nil
}

// sweepLocked drops expired entries, at most once per TTL. Callers hold cacheMu.
func (s *subscriptionService) sweepLocked(now time.Time) {
	if now.Sub(s.lastSweep) < s.ttl {
		return
	}
	for userID, entry := range s.cache {
		if !now.Before(entry.expiresAt) {
			delete(s.cache, userID)
		}
	}
	s.lastSweep = now
}
