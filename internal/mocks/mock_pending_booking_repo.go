package mocks

import (
	"context"

	"github.com/metinatakli/cinema-storefront/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockPendingBookingRepo struct {
	mock.Mock
	domain.PendingBookingRepository
}

func (m *MockPendingBookingRepo) Create(ctx context.Context, booking *domain.PendingBooking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockPendingBookingRepo) GetUnresolved(ctx context.Context, limit int) ([]domain.PendingBooking, error) {
	args := m.Called(ctx, limit)

	var bookings []domain.PendingBooking
	if v := args.Get(0); v != nil {
		bookings = v.([]domain.PendingBooking)
	}

	return bookings, args.Error(1)
}

func (m *MockPendingBookingRepo) MarkResolved(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPendingBookingRepo) RecordAttempt(ctx context.Context, id int, errMsg string) error {
	args := m.Called(ctx, id, errMsg)
	return args.Error(0)
}

func (m *MockPendingBookingRepo) MarkAbandoned(ctx context.Context, id int, errMsg string) error {
	args := m.Called(ctx, id, errMsg)
	return args.Error(0)
}
