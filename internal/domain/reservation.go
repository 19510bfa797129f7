package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketRequest is one backend ticket row attached to a booking shell.
type TicketRequest struct {
	BookingID  int             `json:"bookingId"`
	ShowID     string          `json:"showId"`
	TicketType string          `json:"ticketType"`
	Price      decimal.Decimal `json:"price"`
	SeatNumber string          `json:"seatNumber"`
}

// MarshalJSON writes the price as a JSON number with two decimals.
func (t TicketRequest) MarshalJSON() ([]byte, error) {
	type ticket TicketRequest

	return json.Marshal(struct {
		ticket
		Price json.Number `json:"price"`
	}{
		ticket: ticket(t),
		Price:  json.Number(t.Price.StringFixed(pricePlaces)),
	})
}

type BookingGateway interface {
	CreateBookingShell(ctx context.Context, token string, customerID int) (int, error)
	AddTicket(ctx context.Context, token string, ticket TicketRequest) error
	ConfirmBooking(ctx context.Context, token string, bookingID int) error
	CancelBooking(ctx context.Context, token string, bookingID int) error
}

type CheckoutStage string

const (
	StageAddingTickets     CheckoutStage = "adding_tickets"
	StageConfirmingBooking CheckoutStage = "confirming_booking"
)

// PendingBooking is a booking shell left behind by a failed checkout. The
// backend has no resume semantics, so these are cancelled out of band.
type PendingBooking struct {
	ID         int
	AttemptID  uuid.UUID
	BookingID  int
	CustomerID int
	Stage      CheckoutStage
	Error      string
	Attempts   int
	LastError  string
	ResolvedAt *time.Time
	// AbandonedAt is set once reconciliation gave up on the shell.
	AbandonedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type PendingBookingRepository interface {
	Create(ctx context.Context, booking *PendingBooking) error
	GetUnresolved(ctx context.Context, limit int) ([]PendingBooking, error)
	MarkResolved(ctx context.Context, id int) error
	RecordAttempt(ctx context.Context, id int, errMsg string) error
	MarkAbandoned(ctx context.Context, id int, errMsg string) error
}

// CheckoutLock serializes checkout submissions of one visitor.
type CheckoutLock interface {
	Acquire(ctx context.Context, ownerID, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, ownerID, token string) error
}
