// Package checkout realizes a cart as a confirmed booking on the backend:
// create a booking shell, attach every ticket in parallel, then confirm.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/cinema-storefront/internal/domain"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

type State string

const (
	StateIdle                 State = "idle"
	StateCreatingBookingShell State = "creating_booking_shell"
	StateAddingTickets        State = "adding_tickets"
	StateConfirmingBooking    State = "confirming_booking"
	StateDone                 State = "done"
	StateFailed               State = "failed"
)

var ErrSubmitted = errors.New("checkout has already been submitted")

// Submission is everything the orchestrator needs to book one cart.
type Submission struct {
	Token      string
	CustomerID int
	Tickets    []domain.CartTicket
	Promotion  *domain.AppliedPromotion
}

type Result struct {
	AttemptID uuid.UUID
	BookingID int
	State     State
	Tickets   int
}

// Error is the single aggregated failure reported to the user.
type Error struct {
	State     State
	BookingID int
	Err       error
}

func (e *Error) Error() string {
	switch e.State {
	case StateCreatingBookingShell:
		return fmt.Sprintf("failed to create booking: %v", e.Err)
	case StateAddingTickets:
		return fmt.Sprintf("failed to add tickets to booking %d: %v", e.BookingID, e.Err)
	case StateConfirmingBooking:
		return fmt.Sprintf("failed to confirm booking %d: %v", e.BookingID, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Orchestrator struct {
	gateway domain.BookingGateway
	pending domain.PendingBookingRepository
	logger  *slog.Logger

	submissions metric.Int64Counter
}

func NewOrchestrator(gateway domain.BookingGateway, pending domain.PendingBookingRepository, logger *slog.Logger) *Orchestrator {
	submissions, err := otel.Meter("github.com/metinatakli/cinema-storefront/internal/checkout").
		Int64Counter("checkout.submissions", metric.WithDescription("Checkout submissions by final state"))
	if err != nil {
		logger.Warn("failed to create checkout counter", "error", err)
	}

	return &Orchestrator{
		gateway:     gateway,
		pending:     pending,
		logger:      logger,
		submissions: submissions,
	}
}

// Checkout tracks one submission through its states. It is single use.
type Checkout struct {
	orchestrator *Orchestrator
	attemptID    uuid.UUID

	mu        sync.Mutex
	state     State
	bookingID int
}

func (o *Orchestrator) NewCheckout() *Checkout {
	return &Checkout{
		orchestrator: o,
		attemptID:    uuid.New(),
		state:        StateIdle,
	}
}

func (c *Checkout) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

func (c *Checkout) transition(to State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.orchestrator.logger.Debug("checkout transition", "attempt_id", c.attemptID, "from", c.state, "to", to)
	c.state = to
}

func (c *Checkout) fail(stage State, err error) error {
	c.mu.Lock()
	e := &Error{State: stage, BookingID: c.bookingID, Err: err}
	c.mu.Unlock()

	c.transition(StateFailed)

	return e
}

// Submit runs the three backend steps strictly in order. Steps are never
// retried; any failure ends the checkout in StateFailed.
func (o *Orchestrator) Submit(ctx context.Context, sub Submission) (*Result, error) {
	return o.NewCheckout().Run(ctx, sub)
}

func (c *Checkout) Run(ctx context.Context, sub Submission) (*Result, error) {
	if c.State() != StateIdle {
		return nil, ErrSubmitted
	}

	o := c.orchestrator
	logger := o.logger.With("attempt_id", c.attemptID, "customer_id", sub.CustomerID)

	result, err := c.run(ctx, sub, logger)

	state := c.State()
	if o.submissions != nil {
		o.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("state", string(state))))
	}

	if err != nil {
		var e *Error
		if errors.As(err, &e) && e.BookingID > 0 {
			o.recordPending(ctx, c.attemptID, sub.CustomerID, e, logger)
		}

		logger.Error("checkout failed", "error", err)
		return nil, err
	}

	logger.Info("checkout completed", "booking_id", result.BookingID, "tickets", result.Tickets)

	return result, nil
}

func (c *Checkout) run(ctx context.Context, sub Submission, logger *slog.Logger) (*Result, error) {
	o := c.orchestrator

	c.transition(StateCreatingBookingShell)

	if len(sub.Tickets) == 0 {
		return nil, c.fail(StateCreatingBookingShell, domain.ErrEmptyCart)
	}

	bookingID, err := o.gateway.CreateBookingShell(ctx, sub.Token, sub.CustomerID)
	if err != nil {
		return nil, c.fail(StateCreatingBookingShell, err)
	}
	if bookingID <= 0 {
		return nil, c.fail(StateCreatingBookingShell, fmt.Errorf("%w: %d", domain.ErrInvalidBookingID, bookingID))
	}

	c.mu.Lock()
	c.bookingID = bookingID
	c.mu.Unlock()

	logger.Info("booking shell created", "booking_id", bookingID)

	c.transition(StateAddingTickets)

	requests := TicketRequests(bookingID, sub.Tickets, sub.Promotion)

	g, gctx := errgroup.WithContext(ctx)
	for _, req := range requests {
		g.Go(func() error {
			return o.gateway.AddTicket(gctx, sub.Token, req)
		})
	}

	err = g.Wait()
	if err != nil {
		return nil, c.fail(StateAddingTickets, err)
	}

	c.transition(StateConfirmingBooking)

	err = o.gateway.ConfirmBooking(ctx, sub.Token, bookingID)
	if err != nil {
		return nil, c.fail(StateConfirmingBooking, err)
	}

	c.transition(StateDone)

	return &Result{
		AttemptID: c.attemptID,
		BookingID: bookingID,
		State:     StateDone,
		Tickets:   len(requests),
	}, nil
}

// TicketRequests expands cart lines into one backend ticket per seat unit, each
// priced at the line's unit price less the promotion percentage.
func TicketRequests(bookingID int, tickets []domain.CartTicket, promotion *domain.AppliedPromotion) []domain.TicketRequest {
	discount := decimal.Zero
	if promotion != nil {
		discount = promotion.DiscountPercentage
	}

	var requests []domain.TicketRequest
	for _, t := range tickets {
		price := domain.ApplyDiscount(t.UnitPrice(), discount)

		for range max(1, t.Quantity) {
			requests = append(requests, domain.TicketRequest{
				BookingID:  bookingID,
				ShowID:     t.ShowID,
				TicketType: string(t.Category),
				Price:      price,
				SeatNumber: t.SeatLabel,
			})
		}
	}

	return requests
}

func (o *Orchestrator) recordPending(ctx context.Context, attemptID uuid.UUID, customerID int, e *Error, logger *slog.Logger) {
	stage := domain.StageAddingTickets
	if e.State == StateConfirmingBooking {
		stage = domain.StageConfirmingBooking
	}

	pending := &domain.PendingBooking{
		AttemptID:  attemptID,
		BookingID:  e.BookingID,
		CustomerID: customerID,
		Stage:      stage,
		Error:      e.Err.Error(),
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	err := o.pending.Create(ctx, pending)
	if err != nil {
		logger.Error("failed to record pending booking", "booking_id", e.BookingID, "error", err)
		return
	}

	logger.Warn("booking shell left pending for reconciliation", "booking_id", e.BookingID, "stage", stage)
}
