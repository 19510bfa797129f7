package mocks

import (
	"context"

	"github.com/metinatakli/cinema-storefront/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockBookingGateway struct {
	mock.Mock
	domain.BookingGateway
}

func (m *MockBookingGateway) CreateBookingShell(ctx context.Context, token string, customerID int) (int, error) {
	args := m.Called(ctx, token, customerID)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingGateway) AddTicket(ctx context.Context, token string, ticket domain.TicketRequest) error {
	args := m.Called(ctx, token, ticket)
	return args.Error(0)
}

func (m *MockBookingGateway) ConfirmBooking(ctx context.Context, token string, bookingID int) error {
	args := m.Called(ctx, token, bookingID)
	return args.Error(0)
}

func (m *MockBookingGateway) CancelBooking(ctx context.Context, token string, bookingID int) error {
	args := m.Called(ctx, token, bookingID)
	return args.Error(0)
}
