package handler

import (
	"net/http"

	"lifex-server/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(
	authHandler *AuthHandler,
	quotaHandler *QuotaHandler,
	chatHandler *ChatHandler,
	adminHandler *AdminHandler,
	preferenceHandler *PreferenceHandler,
	authMiddleware func(http.Handler) http.Handler,
	allowedOrigins []string,
) http.Handler {
	router := mux.NewRouter()
	router.Use(RequestIDMiddleware)
	router.Use(metrics.Middleware)

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"lifex-server"}`))
	}).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/quota/policy", quotaHandler.GetPolicy).Methods(http.MethodGet)

	// Admin routes authenticate with X-Admin-Secret, not a user token
	api.HandleFunc("/admin/users/{id}/tier", adminHandler.SetTier).Methods(http.MethodPut)

	// Protected routes (require authentication)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(authMiddleware)

	protected.HandleFunc("/auth/profile", authHandler.GetProfile).Methods(http.MethodGet)
	protected.HandleFunc("/auth/validate", authHandler.ValidateToken).Methods(http.MethodGet)

	protected.HandleFunc("/preferences", preferenceHandler.GetPreferences).Methods(http.MethodGet)
	protected.HandleFunc("/preferences", preferenceHandler.UpdatePreferences).Methods(http.MethodPut)

	protected.HandleFunc("/quota", quotaHandler.GetStatus).Methods(http.MethodGet)
	protected.HandleFunc("/assistants/{assistant}/quota", quotaHandler.GetAssistantQuota).Methods(http.MethodGet)
	protected.HandleFunc("/assistants/{assistant}/chat", chatHandler.Send).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Accept-Language",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		ExposedHeaders: []string{
			"Retry-After",
			"X-Request-ID",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
