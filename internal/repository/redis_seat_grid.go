package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/metinatakli/cinema-storefront/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisSeatGridCache keeps synthesized placeholder grids stable for a visitor
// session so that reloading the seat map does not reshuffle availability.
type RedisSeatGridCache struct {
	client redis.UniversalClient
}

func NewRedisSeatGridCache(client redis.UniversalClient) *RedisSeatGridCache {
	return &RedisSeatGridCache{client: client}
}

func seatGridKey(ownerID, showTimeID string) string {
	return fmt.Sprintf("seat_grid:%s:%s", ownerID, showTimeID)
}

// Get returns domain.ErrRecordNotFound when nothing usable is cached.
func (c *RedisSeatGridCache) Get(ctx context.Context, ownerID, showTimeID string) (*domain.SeatGrid, error) {
	b, err := c.client.Get(ctx, seatGridKey(ownerID, showTimeID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to load seat grid: %w", err)
	}

	var matrix [][]bool

	err = json.Unmarshal(b, &matrix)
	if err != nil {
		return nil, domain.ErrRecordNotFound
	}

	grid, err := domain.NewSeatGrid(matrix)
	if err != nil {
		return nil, domain.ErrRecordNotFound
	}
	grid.Placeholder = true

	return grid, nil
}

func (c *RedisSeatGridCache) Set(ctx context.Context, ownerID, showTimeID string, grid *domain.SeatGrid, ttl time.Duration) error {
	b, err := json.Marshal(grid.Available)
	if err != nil {
		return err
	}

	err = c.client.Set(ctx, seatGridKey(ownerID, showTimeID), b, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to save seat grid: %w", err)
	}

	return nil
}
