package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lifex-server/internal/domain"
	"lifex-server/internal/metrics"
	"lifex-server/internal/quota"
)

// ChatService gates assistant chat behind the entitlement engine.
type ChatService struct {
	subscriptions domain.SubscriptionService
	counter       domain.UsageCounter
	engine        *quota.Engine
	oracle        domain.LLMOracle
	logger        domain.Logger
}

func NewChatService(
	subscriptions domain.SubscriptionService,
	counter domain.UsageCounter,
	engine *quota.Engine,
	oracle domain.LLMOracle,
	logger domain.Logger,
) *ChatService {
	return &ChatService{
		subscriptions: subscriptions,
		counter:       counter,
		engine:        engine,
		oracle:        oracle,
		logger:        logger,
	}
}

// Send admits one chat message and forwards it to the model.
//
// The hourly counter is incremented before the decision so that concurrent
// requests each see a distinct usage value; a refused or failed request gives
// its unit back. The returned decision describes usage before this message.
func (s *ChatService) Send(ctx context.Context, userID, token string, assistant domain.Assistant, req domain.ChatRequest) (*domain.ChatResponse, error) {
	a, ok := domain.ParseAssistant(string(assistant))
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAssistant, assistant)
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, domain.ErrEmptyMessage
	}
	hint := req.Language
	if hint == "" {
		hint = message
	}

	tier, err := s.subscriptions.GetTier(ctx, userID, token)
	if err != nil {
		return nil, err
	}

	now := s.engine.Now()
	if !s.engine.Policy().CanAccess(tier, a) {
		d := s.engine.CheckAt(now, tier, a, hint, 0)
		metrics.RecordDecision(d)
		return nil, &domain.QuotaDeniedError{Decision: &d}
	}

	bucket := quota.HourBucket(now)
	reserved := true
	var d domain.Decision
	n, err := s.counter.Increment(ctx, userID, a, bucket, token)
	if err != nil {
		s.logger.Warn("Usage counter unavailable, allowing request", "user_id", userID, "assistant", a, "error", err)
		reserved = false
		d = s.engine.FailOpen(tier, a, hint)
	} else {
		d = s.engine.CheckAt(now, tier, a, hint, n-1)
	}
	metrics.RecordDecision(d)
	if d.FailOpen {
		s.logger.Warn("Entitlement check failed open", "user_id", userID, "assistant", a, "tier", tier)
	}

	if !d.CanUse {
		if reserved {
			s.release(ctx, userID, a, bucket, token)
		}
		return nil, &domain.QuotaDeniedError{Decision: &d}
	}

	start := time.Now()
	completion, err := s.oracle.Complete(ctx, domain.CompletionRequest{
		Assistant: a,
		UserID:    userID,
		Message:   message,
		Language:  d.Language,
	})
	metrics.RecordCompletion(a, completion, err)
	if err != nil {
		if reserved {
			s.release(ctx, userID, a, bucket, token)
		}
		s.logger.Error("Assistant completion failed", err, "user_id", userID, "assistant", a)
		if errors.Is(err, domain.ErrOracleUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrOracleUnavailable, err)
	}

	s.logger.Debug("Assistant replied",
		"user_id", userID,
		"assistant", a,
		"tier", tier,
		"usage", d.CurrentUsage+1,
		"limit", d.Limit,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &domain.ChatResponse{
		Assistant: a,
		Reply:     completion.Text,
		Decision:  &d,
	}, nil
}

// release returns a reserved unit even when the request context is already cancelled.
func (s *ChatService) release(ctx context.Context, userID string, a domain.Assistant, bucket time.Time, token string) {
	if err := s.counter.Release(context.WithoutCancel(ctx), userID, a, bucket, token); err != nil {
		s.logger.Warn("Failed to release usage reservation", "user_id", userID, "assistant", a, "error", err)
	}
}
