package domain

import "errors"

// Domain errors
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidToken          = errors.New("invalid token")
	ErrAccessDenied          = errors.New("access denied")
	ErrUnknownAssistant      = errors.New("unknown assistant")
	ErrUnknownTier           = errors.New("unknown subscription tier")
	ErrAssistantNotEntitled  = errors.New("subscription tier does not include this assistant")
	ErrAssistantLimitReached = errors.New("hourly assistant limit reached")
	ErrOracleUnavailable     = errors.New("assistant model unavailable")
	ErrEmptyMessage          = errors.New("message cannot be empty")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// QuotaDeniedError carries the decision that refused an assistant request.
// It unwraps to ErrAssistantNotEntitled or ErrAssistantLimitReached.
type QuotaDeniedError struct {
	Decision *Decision
}

func (e *QuotaDeniedError) Error() string {
	return e.Unwrap().Error()
}

func (e *QuotaDeniedError) Unwrap() error {
	if e.Decision != nil && e.Decision.Situation == SituationTierNotEntitled {
		return ErrAssistantNotEntitled
	}
	return ErrAssistantLimitReached
}
