package repository

import (
	"context"
	"sync"
	"time"

	"github.com/metinatakli/cinema-storefront/internal/domain"
)

// MemoryPendingBookingRepository is used when no database is configured. Its
// contents do not survive a restart.
type MemoryPendingBookingRepository struct {
	mu       sync.Mutex
	nextID   int
	bookings []domain.PendingBooking
}

func NewMemoryPendingBookingRepository() *MemoryPendingBookingRepository {
	return &MemoryPendingBookingRepository{nextID: 1}
}

func (m *MemoryPendingBookingRepository) Create(ctx context.Context, booking *domain.PendingBooking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.bookings {
		if b.AttemptID == booking.AttemptID {
			return domain.ErrDuplicateAttempt
		}
	}

	now := time.Now()
	booking.ID = m.nextID
	booking.CreatedAt = now
	booking.UpdatedAt = now
	m.nextID++

	m.bookings = append(m.bookings, *booking)

	return nil
}

func (m *MemoryPendingBookingRepository) GetUnresolved(ctx context.Context, limit int) ([]domain.PendingBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var unresolved []domain.PendingBooking
	for _, b := range m.bookings {
		if len(unresolved) == limit {
			break
		}
		if b.ResolvedAt == nil && b.AbandonedAt == nil {
			unresolved = append(unresolved, b)
		}
	}

	return unresolved, nil
}

func (m *MemoryPendingBookingRepository) MarkResolved(ctx context.Context, id int) error {
	return m.update(id, func(b *domain.PendingBooking) bool {
		if b.ResolvedAt != nil {
			return false
		}

		now := time.Now()
		b.ResolvedAt = &now
		b.UpdatedAt = now

		return true
	})
}

func (m *MemoryPendingBookingRepository) RecordAttempt(ctx context.Context, id int, errMsg string) error {
	return m.update(id, func(b *domain.PendingBooking) bool {
		b.Attempts++
		b.LastError = errMsg
		b.UpdatedAt = time.Now()

		return true
	})
}

func (m *MemoryPendingBookingRepository) MarkAbandoned(ctx context.Context, id int, errMsg string) error {
	return m.update(id, func(b *domain.PendingBooking) bool {
		if b.ResolvedAt != nil || b.AbandonedAt != nil {
			return false
		}

		now := time.Now()
		b.Attempts++
		b.LastError = errMsg
		b.AbandonedAt = &now
		b.UpdatedAt = now

		return true
	})
}

func (m *MemoryPendingBookingRepository) update(id int, fn func(*domain.PendingBooking) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.bookings {
		if m.bookings[i].ID == id {
			if !fn(&m.bookings[i]) {
				return domain.ErrRecordNotFound
			}
			return nil
		}
	}

	return domain.ErrRecordNotFound
}
