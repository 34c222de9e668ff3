package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/royalboe/commercia/internal/domain"
	apperrors "github.com/royalboe/commercia/pkg/errors"
)

func setupTestCache(t *testing.T) (*RatingCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRatingCache(client, time.Hour), mr
}

func TestRatingCache_SetGet(t *testing.T) {
	cache, _ := setupTestCache(t)

	rating := &domain.Rating{ProductID: "prod-001", AverageRating: 4.0, TotalRatings: 3}
	require.NoError(t, cache.Set(context.Background(), rating))

	got, err := cache.Get(context.Background(), "prod-001")
	require.NoError(t, err)
	assert.Equal(t, rating, got)
}

func TestRatingCache_Get_Miss(t *testing.T) {
	cache, _ := setupTestCache(t)

	_, err := cache.Get(context.Background(), "prod-missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRatingCache_Delete(t *testing.T) {
	cache, _ := setupTestCache(t)

	rating := &domain.Rating{ProductID: "prod-001", AverageRating: 4.5, TotalRatings: 2}
	require.NoError(t, cache.Set(context.Background(), rating))
	require.NoError(t, cache.Delete(context.Background(), "prod-001"))

	_, err := cache.Get(context.Background(), "prod-001")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRatingCache_TTLExpiry(t *testing.T) {
	cache, mr := setupTestCache(t)

	rating := &domain.Rating{ProductID: "prod-001", AverageRating: 3.0, TotalRatings: 1}
	require.NoError(t, cache.Set(context.Background(), rating))

	mr.FastForward(2 * time.Hour)

	_, err := cache.Get(context.Background(), "prod-001")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
