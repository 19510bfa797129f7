package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/metinatakli/cinema-storefront/internal/domain"
)

// MemoryCartStore is a CartStore backed by a map. LoadErr and SaveErr, when
// set, are returned by the corresponding calls.
type MemoryCartStore struct {
	mu      sync.Mutex
	carts   map[string][]domain.CartTicket
	LoadErr error
	SaveErr error
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string][]domain.CartTicket)}
}

func (s *MemoryCartStore) Load(ctx context.Context, ownerID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.LoadErr != nil {
		return nil, s.LoadErr
	}

	tickets := append([]domain.CartTicket(nil), s.carts[ownerID]...)

	return domain.NewCart(tickets), nil
}

func (s *MemoryCartStore) Save(ctx context.Context, ownerID string, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}

	if cart.IsEmpty() {
		delete(s.carts, ownerID)
		return nil
	}

	s.carts[ownerID] = append([]domain.CartTicket(nil), cart.Tickets...)

	return nil
}

func (s *MemoryCartStore) Clear(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, ownerID)

	return nil
}

// Put seeds the cart of ownerID.
func (s *MemoryCartStore) Put(ownerID string, tickets ...domain.CartTicket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[ownerID] = tickets
}

func (s *MemoryCartStore) Tickets(ownerID string) []domain.CartTicket {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]domain.CartTicket(nil), s.carts[ownerID]...)
}

type MemorySeatGridCache struct {
	mu    sync.Mutex
	grids map[string]*domain.SeatGrid
}

func NewMemorySeatGridCache() *MemorySeatGridCache {
	return &MemorySeatGridCache{grids: make(map[string]*domain.SeatGrid)}
}

func (c *MemorySeatGridCache) Get(ctx context.Context, ownerID, showTimeID string) (*domain.SeatGrid, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	grid, ok := c.grids[ownerID+":"+showTimeID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	return grid, nil
}

func (c *MemorySeatGridCache) Set(ctx context.Context, ownerID, showTimeID string, grid *domain.SeatGrid, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.grids[ownerID+":"+showTimeID] = grid

	return nil
}

type MockCheckoutLock struct {
	mu   sync.Mutex
	held map[string]string
	Err  error
}

func NewMockCheckoutLock() *MockCheckoutLock {
	return &MockCheckoutLock{held: make(map[string]string)}
}

func (l *MockCheckoutLock) Acquire(ctx context.Context, ownerID, token string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Err != nil {
		return false, l.Err
	}

	if _, ok := l.held[ownerID]; ok {
		return false, nil
	}

	l.held[ownerID] = token

	return true, nil
}

func (l *MockCheckoutLock) Release(ctx context.Context, ownerID, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[ownerID] == token {
		delete(l.held, ownerID)
	}

	return nil
}

func (l *MockCheckoutLock) Held(ownerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.held[ownerID]
	return ok
}
