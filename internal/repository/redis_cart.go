package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/metinatakli/cinema-storefront/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCartStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCartStore(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *RedisCartStore {
	return &RedisCartStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func cartKey(ownerID string) string {
	return fmt.Sprintf("pendingOrderTickets:%s", ownerID)
}

// Load returns an empty cart when nothing is stored. A record that cannot be
// decoded is deleted and also treated as empty.
func (s *RedisCartStore) Load(ctx context.Context, ownerID string) (*domain.Cart, error) {
	b, err := s.client.Get(ctx, cartKey(ownerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.NewCart(nil), nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var tickets []domain.CartTicket

	err = json.Unmarshal(b, &tickets)
	if err != nil {
		s.logger.Warn("discarding corrupt cart record", "owner_id", ownerID, "error", err)

		delErr := s.client.Del(ctx, cartKey(ownerID)).Err()
		if delErr != nil {
			return nil, fmt.Errorf("failed to discard corrupt cart: %w", delErr)
		}

		return domain.NewCart(nil), nil
	}

	return domain.NewCart(tickets), nil
}

// Save overwrites the stored cart. Concurrent writers are not merged; the last
// write wins.
func (s *RedisCartStore) Save(ctx context.Context, ownerID string, cart *domain.Cart) error {
	if cart.IsEmpty() {
		return s.Clear(ctx, ownerID)
	}

	b, err := json.Marshal(cart.Tickets)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	err = s.client.Set(ctx, cartKey(ownerID), b, s.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	return nil
}

func (s *RedisCartStore) Clear(ctx context.Context, ownerID string) error {
	err := s.client.Del(ctx, cartKey(ownerID)).Err()
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}
