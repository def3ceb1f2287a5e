package handler

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"lifex-server/internal/domain"
	apperrors "lifex-server/pkg/errors"
)

type contextKey string

const (
	userContextKey      contextKey = "user"
	tokenContextKey     contextKey = "token"
	requestIDContextKey contextKey = "request_id"
)

// GetUserFromContext extracts the authenticated user from request context
func GetUserFromContext(r *http.Request) (*domain.SupabaseUser, bool) {
	user, ok := r.Context().Value(userContextKey).(*domain.SupabaseUser)
	return user, ok
}

// GetTokenFromContext extracts the authentication token from request context
func GetTokenFromContext(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(tokenContextKey).(string)
	return token, ok
}

// GetRequestIDFromContext returns the id assigned by RequestIDMiddleware
func GetRequestIDFromContext(r *http.Request) string {
	id, _ := r.Context().Value(requestIDContextKey).(string)
	return id
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// classifyError maps service errors onto application errors.
func classifyError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		return apperrors.NewValidationError(vErr.Error())
	case errors.Is(err, domain.ErrEmptyMessage):
		return apperrors.NewValidationError(domain.ErrEmptyMessage.Error())
	case errors.Is(err, domain.ErrUnknownTier):
		return apperrors.NewValidationError(domain.ErrUnknownTier.Error())
	case errors.Is(err, domain.ErrUnknownAssistant):
		return apperrors.NewNotFoundError(domain.ErrUnknownAssistant.Error())
	case errors.Is(err, domain.ErrInvalidToken):
		return apperrors.NewUnauthorizedError("Invalid token")
	case errors.Is(err, domain.ErrAssistantNotEntitled):
		return apperrors.NewForbiddenError(domain.ErrAssistantNotEntitled.Error(), err)
	case errors.Is(err, domain.ErrAssistantLimitReached):
		return apperrors.NewQuotaExceededError(domain.ErrAssistantLimitReached.Error(), err)
	case errors.Is(err, domain.ErrOracleUnavailable):
		return apperrors.NewNetworkError("Assistant is temporarily unavailable", err)
	default:
		return apperrors.NewNetworkError("Quota state is temporarily unavailable", err)
	}
}

// writeServiceError writes err with its mapped status. A quota denial carries the
// decision as the body so clients can show its message.
func writeServiceError(w http.ResponseWriter, err error) {
	appErr := classifyError(err)
	status := apperrors.GetStatusCode(appErr)

	var denied *domain.QuotaDeniedError
	if errors.As(err, &denied) && denied.Decision != nil {
		if status == http.StatusTooManyRequests {
			if secs := retryAfterSeconds(denied.Decision.ResetTime, time.Now()); secs > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(secs))
			}
		}
		writeJSON(w, status, map[string]interface{}{
			"error": appErr.Message,
			"quota": denied.Decision,
		})
		return
	}
	writeError(w, status, appErr.Message)
}

func retryAfterSeconds(resetTime string, now time.Time) int {
	reset, err := time.Parse(time.RFC3339, resetTime)
	if err != nil {
		return 0
	}
	d := reset.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
