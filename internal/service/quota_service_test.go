package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"lifex-server/internal/domain"
	"lifex-server/internal/quota"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuotaService(tier domain.Tier, counter *MockUsageCounter, allowances domain.AllowanceRepository) *QuotaService {
	repo := NewMockSubscriptionRepository()
	repo.tiers["u1"] = tier
	logger := NewMockLogger()
	engine := quota.NewEngine(quota.WithClock(func() time.Time { return testNow }))
	return NewQuotaService(NewSubscriptionService(repo, logger, 0), counter, allowances, engine, logger)
}

func TestQuotaService_CheckDoesNotConsume(t *testing.T) {
	counter := NewMockUsageCounter()
	counter.Set("u1", domain.AssistantColy, testBucket, 45)
	svc := newQuotaService(domain.TierEssential, counter, nil)

	for i := 0; i < 3; i++ {
		d, err := svc.Check(context.Background(), "u1", "tok", domain.AssistantColy, "")
		require.NoError(t, err)
		assert.Equal(t, 45, d.CurrentUsage)
		assert.Equal(t, 5, d.Remaining)
		assert.Equal(t, domain.SituationApproachingLimit, d.Situation)
	}
	assert.Equal(t, 45, counter.Get("u1", domain.AssistantColy, testBucket))
}

func TestQuotaService_CheckUnknownAssistant(t *testing.T) {
	svc := newQuotaService(domain.TierPremium, NewMockUsageCounter(), nil)
	_, err := svc.Check(context.Background(), "u1", "tok", "bob", "")
	assert.ErrorIs(t, err, domain.ErrUnknownAssistant)
}

func TestQuotaService_CheckCounterFailureFailsOpen(t *testing.T) {
	counter := NewMockUsageCounter()
	counter.err = errors.New("timeout")
	svc := newQuotaService(domain.TierPremium, counter, nil)

	d, err := svc.Check(context.Background(), "u1", "tok", domain.AssistantMax, "zh")
	require.NoError(t, err)
	assert.True(t, d.CanUse)
	assert.True(t, d.FailOpen)
	assert.Equal(t, "zh", d.Language)
}

func TestQuotaService_Status(t *testing.T) {
	counter := NewMockUsageCounter()
	counter.Set("u1", domain.AssistantColy, testBucket, 12)
	allowances := &MockAllowanceRepository{products: 10, trending: 3}
	svc := newQuotaService(domain.TierEssential, counter, allowances)

	status, err := svc.Status(context.Background(), "u1", "tok", "en")
	require.NoError(t, err)

	assert.Equal(t, "u1", status.UserID)
	assert.Equal(t, domain.TierEssential, status.Tier)
	assert.False(t, status.BusinessFeatures)

	require.Len(t, status.Assistants, 2)
	coly := status.Assistants[domain.AssistantColy]
	assert.True(t, coly.CanUse)
	assert.Equal(t, 12, coly.CurrentUsage)
	assert.Equal(t, 38, coly.Remaining)

	maxDecision := status.Assistants[domain.AssistantMax]
	assert.False(t, maxDecision.CanUse)
	assert.Equal(t, domain.SituationTierNotEntitled, maxDecision.Situation)

	require.Len(t, status.Allowances, 2)
	products := status.Allowances[0]
	assert.Equal(t, domain.AllowanceProducts, products.Kind)
	assert.False(t, products.CanUse)
	assert.Equal(t, 0, products.Remaining)

	trending := status.Allowances[1]
	assert.Equal(t, domain.AllowanceTrending, trending.Kind)
	assert.True(t, trending.CanUse)
	assert.Equal(t, 47, trending.Remaining)
	assert.Equal(t, "2024-02-01T00:00:00Z", trending.ResetTime)
}

func TestQuotaService_StatusAllowanceFailureDegrades(t *testing.T) {
	allowances := &MockAllowanceRepository{err: errors.New("boom")}
	svc := newQuotaService(domain.TierPremium, NewMockUsageCounter(), allowances)

	status, err := svc.Status(context.Background(), "u1", "tok", "")
	require.NoError(t, err)
	assert.True(t, status.BusinessFeatures)
	assert.Equal(t, 0, status.Allowances[0].Used)
	assert.Equal(t, 100, status.Allowances[0].Limit)
}

func TestQuotaService_StatusTierFailure(t *testing.T) {
	repo := NewMockSubscriptionRepository()
	repo.err = errors.New("down")
	logger := NewMockLogger()
	svc := NewQuotaService(NewSubscriptionService(repo, logger, 0), NewMockUsageCounter(), nil, quota.NewEngine(), logger)

	_, err := svc.Status(context.Background(), "u1", "tok", "")
	assert.Error(t, err)
}
