package metrics

import "lifex-server/internal/domain"

// RecordDecision counts an entitlement decision by outcome.
func RecordDecision(d domain.Decision) {
	EntitlementDecisions.WithLabelValues(string(d.Assistant), string(d.Tier), Outcome(d)).Inc()
	if d.FailOpen {
		EntitlementFailOpen.WithLabelValues(string(d.Assistant)).Inc()
	}
}

// Outcome maps a decision to its metric label.
func Outcome(d domain.Decision) string {
	switch {
	case d.FailOpen:
		return OutcomeFailOpen
	case d.Situation == domain.SituationTierNotEntitled:
		return OutcomeNotEntitled
	case d.Situation == domain.SituationLimitReached:
		return OutcomeLimited
	case d.Situation == domain.SituationApproachingLimit:
		return OutcomeWarning
	default:
		return OutcomeAllowed
	}
}

// RecordCompletion counts a language model call and its token usage.
func RecordCompletion(assistant domain.Assistant, c *domain.Completion, err error) {
	if err != nil {
		LLMRequests.WithLabelValues(string(assistant), "error").Inc()
		return
	}
	LLMRequests.WithLabelValues(string(assistant), "success").Inc()
	if c != nil {
		LLMTokens.WithLabelValues(string(assistant), "input").Add(float64(c.InputTokens))
		LLMTokens.WithLabelValues(string(assistant), "output").Add(float64(c.OutputTokens))
	}
}
