// Package backend is the HTTP client of the booking backend, the system of
// record for movies, showtimes, promotions and bookings.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/metinatakli/cinema-storefront/internal/catalog"
	"github.com/metinatakli/cinema-storefront/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultTimeout = 15 * time.Second
	maxBodyBytes   = 1 << 20
)

var ErrTimeout = errors.New("the booking service did not respond in time")

// UpstreamError is a non-2xx answer from the backend. Message is safe to show
// to the user.
type UpstreamError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %d - %s", e.Op, e.Status, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	adapter *catalog.Adapter
	logger  *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, adapter *catalog.Adapter, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		adapter: adapter,
		logger:  logger,
	}
}

type response struct {
	status int
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

func (r *response) text() string {
	return strings.TrimSpace(string(r.body))
}

func (c *Client) do(ctx context.Context, method, path, token string, payload any) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
		}
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
		}
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}

	return &response{status: resp.StatusCode, body: b}, nil
}

func upstreamError(op string, resp *response) *UpstreamError {
	message := resp.text()

	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(resp.body, &envelope) == nil {
		switch {
		case envelope.Error != "":
			message = envelope.Error
		case envelope.Message != "":
			message = envelope.Message
		}
	}

	if message == "" {
		message = http.StatusText(resp.status)
	}

	e := &UpstreamError{Op: op, Status: resp.status, Message: message}
	if resp.status == http.StatusNotFound {
		e.Err = domain.ErrRecordNotFound
	}

	return e
}

func (c *Client) GetMovie(ctx context.Context, movieID string) (*domain.Movie, error) {
	resp, err := c.do(ctx, http.MethodGet, "/movies/"+url.PathEscape(movieID), "", nil)
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		return nil, upstreamError("fetch movie", resp)
	}

	return c.adapter.NormalizeMovie(resp.body)
}

// GetShowTimes never fails on a malformed payload; it degrades to an empty list.
func (c *Client) GetShowTimes(ctx context.Context, movieID string) ([]domain.ShowTime, error) {
	resp, err := c.do(ctx, http.MethodGet, "/showtimes/movie/"+url.PathEscape(movieID), "", nil)
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		return nil, upstreamError("fetch showtimes", resp)
	}

	return c.adapter.NormalizeShowTimes(movieID, resp.body), nil
}

func (c *Client) CreateBookingShell(ctx context.Context, token string, customerID int) (int, error) {
	payload := map[string]int{"customerId": customerID}

	resp, err := c.do(ctx, http.MethodPost, "/bookings/add", token, payload)
	if err != nil {
		return 0, err
	}

	if !resp.ok() {
		return 0, upstreamError("create booking shell", resp)
	}

	bookingID, err := parseBookingID(resp.body)
	if err != nil {
		return 0, err
	}

	return bookingID, nil
}

// parseBookingID accepts a bare integer or an object carrying bookingId.
func parseBookingID(body []byte) (int, error) {
	var id json.Number

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidBookingID, strings.TrimSpace(string(body)))
	}

	switch t := v.(type) {
	case json.Number:
		id = t
	case map[string]any:
		n, ok := t["bookingId"].(json.Number)
		if !ok {
			return 0, fmt.Errorf("%w: %q", domain.ErrInvalidBookingID, strings.TrimSpace(string(body)))
		}
		id = n
	default:
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidBookingID, strings.TrimSpace(string(body)))
	}

	n, err := id.Int64()
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s", domain.ErrInvalidBookingID, id)
	}

	return int(n), nil
}

func (c *Client) AddTicket(ctx context.Context, token string, ticket domain.TicketRequest) error {
	resp, err := c.do(ctx, http.MethodPost, "/tickets/add", token, ticket)
	if err != nil {
		return err
	}

	if !resp.ok() {
		return upstreamError(fmt.Sprintf("add ticket %s for booking %d", ticket.SeatNumber, ticket.BookingID), resp)
	}

	return nil
}

func (c *Client) ConfirmBooking(ctx context.Context, token string, bookingID int) error {
	resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/bookings/confirm/%d", bookingID), token, nil)
	if err != nil {
		return err
	}

	if !resp.ok() {
		return upstreamError(fmt.Sprintf("confirm booking %d", bookingID), resp)
	}

	return nil
}

func (c *Client) CancelBooking(ctx context.Context, token string, bookingID int) error {
	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/bookings/delete/%d", bookingID), token, nil)
	if err != nil {
		return err
	}

	// already gone counts as cancelled
	if resp.status == http.StatusNotFound {
		return nil
	}

	if !resp.ok() {
		return upstreamError(fmt.Sprintf("cancel booking %d", bookingID), resp)
	}

	return nil
}
