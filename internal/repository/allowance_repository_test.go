package repository

import (
	"context"
	"net/http"
	"testing"
	"time"

	"lifex-server/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupabaseAllowanceRepository_Counts(t *testing.T) {
	srv := newRestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/v1/products":
			w.Header().Set("Content-Range", "0-6/7")
		default:
			w.Header().Set("Content-Range", "0-2/3")
		}
		w.WriteHeader(http.StatusOK)
	})
	repo := NewSupabaseAllowanceRepository(&fakeSupabaseClient{url: srv.server.URL}, logger.NewNopLogger())
	ctx := context.Background()

	products, err := repo.CountProducts(ctx, "u1", "tok")
	require.NoError(t, err)
	assert.Equal(t, 7, products)

	monthStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	trending, err := repo.CountTrendingThisMonth(ctx, "u1", monthStart, "tok")
	require.NoError(t, err)
	assert.Equal(t, 3, trending)

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "eq.u1", reqs[0].Query["user_id"])
	assert.Equal(t, "trending_views", reqs[1].Table)
	assert.Equal(t, "gte.2024-06-01T00:00:00Z", reqs[1].Query["viewed_at"])
}

func TestSupabaseAllowanceRepository_Error(t *testing.T) {
	srv := newRestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writePostgrestError(w, http.StatusInternalServerError, "boom")
	})
	repo := NewSupabaseAllowanceRepository(&fakeSupabaseClient{url: srv.server.URL}, logger.NewNopLogger())

	_, err := repo.CountProducts(context.Background(), "u1", "tok")
	assert.Error(t, err)
}
