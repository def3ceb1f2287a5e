package service

import (
	"context"
	"fmt"
	"sync"

	"lifex-server/internal/domain"
	"lifex-server/internal/quota"

	"golang.org/x/sync/errgroup"
)

// QuotaService reports entitlement state. It never consumes quota.
type QuotaService struct {
	subscriptions domain.SubscriptionService
	counter       domain.UsageCounter
	allowances    domain.AllowanceRepository
	engine        *quota.Engine
	logger        domain.Logger
}

func NewQuotaService(
	subscriptions domain.SubscriptionService,
	counter domain.UsageCounter,
	allowances domain.AllowanceRepository,
	engine *quota.Engine,
	logger domain.Logger,
) *QuotaService {
	return &QuotaService{
		subscriptions: subscriptions,
		counter:       counter,
		allowances:    allowances,
		engine:        engine,
		logger:        logger,
	}
}

// Check returns the decision the next chat message would get.
func (s *QuotaService) Check(ctx context.Context, userID, token string, assistant domain.Assistant, languageHint string) (*domain.Decision, error) {
	a, ok := domain.ParseAssistant(string(assistant))
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAssistant, assistant)
	}
	tier, err := s.subscriptions.GetTier(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	d := s.decide(ctx, userID, token, tier, a, languageHint)
	return &d, nil
}

// Status reports both assistants and the non-chat allowances of a user.
// Counters are read concurrently; an unavailable counter degrades to a fail-open decision.
func (s *QuotaService) Status(ctx context.Context, userID, token, languageHint string) (*domain.QuotaStatus, error) {
	tier, err := s.subscriptions.GetTier(ctx, userID, token)
	if err != nil {
		return nil, err
	}

	status := &domain.QuotaStatus{
		UserID:           userID,
		Tier:             tier,
		Assistants:       make(map[domain.Assistant]*domain.Decision, len(domain.AllAssistants)),
		BusinessFeatures: s.engine.Policy().BusinessFeatures(tier),
	}

	var mu sync.Mutex
	var products, trending int
	g, gctx := errgroup.WithContext(ctx)
	for _, a := range domain.AllAssistants {
		a := a
		g.Go(func() error {
			d := s.decide(gctx, userID, token, tier, a, languageHint)
			mu.Lock()
			status.Assistants[a] = &d
			mu.Unlock()
			return nil
		})
	}
	if s.allowances != nil {
		g.Go(func() error {
			n, err := s.allowances.CountProducts(gctx, userID, token)
			if err != nil {
				s.logger.Warn("Failed to count products", "user_id", userID, "error", err)
				return nil
			}
			products = n
			return nil
		})
		g.Go(func() error {
			n, err := s.allowances.CountTrendingThisMonth(gctx, userID, quota.MonthStart(s.engine.Now()), token)
			if err != nil {
				s.logger.Warn("Failed to count trending views", "user_id", userID, "error", err)
				return nil
			}
			trending = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	status.Allowances = []domain.Allowance{
		s.engine.CheckAllowance(domain.AllowanceProducts, tier, products),
		s.engine.CheckAllowance(domain.AllowanceTrending, tier, trending),
	}
	return status, nil
}

func (s *QuotaService) decide(ctx context.Context, userID, token string, tier domain.Tier, a domain.Assistant, languageHint string) domain.Decision {
	now := s.engine.Now()
	if !s.engine.Policy().CanAccess(tier, a) {
		return s.engine.CheckAt(now, tier, a, languageHint, 0)
	}
	n, err := s.counter.Read(ctx, userID, a, quota.HourBucket(now), token)
	if err != nil {
		s.logger.Warn("Usage counter unavailable, reporting fail-open quota", "user_id", userID, "assistant", a, "error", err)
		return s.engine.FailOpen(tier, a, languageHint)
	}
	return s.engine.CheckAt(now, tier, a, languageHint, n)
}
