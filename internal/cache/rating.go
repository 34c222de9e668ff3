// Package cache provides Redis-backed read-through caches.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/royalboe/commercia/internal/domain"
	apperrors "github.com/royalboe/commercia/pkg/errors"
)

const ratingKeyPrefix = "rating:"

// RatingCache caches product rating aggregates in Redis. Entries are
// invalidated whenever a review mutation recomputes the aggregate.
type RatingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRatingCache creates a Redis-backed rating cache.
func NewRatingCache(client *redis.Client, ttl time.Duration) *RatingCache {
	return &RatingCache{client: client, ttl: ttl}
}

// Get retrieves a cached rating aggregate by product ID.
func (c *RatingCache) Get(ctx context.Context, productID string) (*domain.Rating, error) {
	data, err := c.client.Get(ctx, ratingKeyPrefix+productID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("rating", productID)
		}
		return nil, fmt.Errorf("redis get rating: %w", err)
	}

	var rating domain.Rating
	if err := json.Unmarshal(data, &rating); err != nil {
		return nil, fmt.Errorf("unmarshal rating: %w", err)
	}

	return &rating, nil
}

// Set stores a rating aggregate with the configured TTL.
func (c *RatingCache) Set(ctx context.Context, rating *domain.Rating) error {
	data, err := json.Marshal(rating)
	if err != nil {
		return fmt.Errorf("marshal rating: %w", err)
	}

	if err := c.client.Set(ctx, ratingKeyPrefix+rating.ProductID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set rating: %w", err)
	}

	return nil
}

// Delete removes a cached rating aggregate by product ID.
func (c *RatingCache) Delete(ctx context.Context, productID string) error {
	if err := c.client.Del(ctx, ratingKeyPrefix+productID).Err(); err != nil {
		return fmt.Errorf("redis del rating: %w", err)
	}

	return nil
}
