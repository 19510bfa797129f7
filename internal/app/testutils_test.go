package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/metinatakli/cinema-storefront/api"
	"github.com/metinatakli/cinema-storefront/internal/backend"
	"github.com/metinatakli/cinema-storefront/internal/checkout"
	"github.com/metinatakli/cinema-storefront/internal/domain"
	"github.com/metinatakli/cinema-storefront/internal/mailer"
	"github.com/metinatakli/cinema-storefront/internal/mocks"
	"github.com/metinatakli/cinema-storefront/internal/repository"
	"github.com/metinatakli/cinema-storefront/internal/validator"
	"github.com/shopspring/decimal"
)

const testVisitorId = "2b1f6c0e-8d7a-4c55-9a51-0d5f3f7c9e21"

func newTestApplication(opts ...func(*Application)) *Application {
	sessionManager := scs.New()
	sessionManager.Cookie.Name = "session_id"

	app := &Application{
		config: Config{
			Env:             "test",
			CheckoutLockTTL: time.Minute,
		},
		validator:      validator.NewValidator(),
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		sessionManager: sessionManager,
		mailer:         mailer.NewMockMailer(),
		catalog:        &mocks.MockCatalogGateway{},
		promotions:     new(mocks.MockPromotionGateway),
		carts:          mocks.NewMemoryCartStore(),
		seatGrids:      mocks.NewMemorySeatGridCache(),
		checkoutLock:   mocks.NewMockCheckoutLock(),
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(1, 2))
		},
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.orchestrator == nil {
		app.orchestrator = checkout.NewOrchestrator(new(mocks.MockBookingGateway), repository.NewMemoryPendingBookingRepository(), app.logger)
	}

	return app
}

// newSessionCookie stores values in a fresh session and returns the cookie
// that selects it.
func newSessionCookie(t *testing.T, app *Application, values map[sessionKey]any) *http.Cookie {
	t.Helper()

	ctx, err := app.sessionManager.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}

	for k, v := range values {
		app.sessionManager.Put(ctx, k.String(), v)
	}

	token, _, err := app.sessionManager.Commit(ctx)
	if err != nil {
		t.Fatalf("Failed to commit session: %v", err)
	}

	return &http.Cookie{Name: app.sessionManager.Cookie.Name, Value: token}
}

func visitorCookie(t *testing.T, app *Application, extra map[sessionKey]any) *http.Cookie {
	values := map[sessionKey]any{SessionKeyVisitorId: testVisitorId}
	for k, v := range extra {
		values[k] = v
	}

	return newSessionCookie(t, app, values)
}

// sessionValue reads a value from the session selected by the response cookie.
func sessionValue(t *testing.T, app *Application, w *httptest.ResponseRecorder, key sessionKey) any {
	t.Helper()

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name != app.sessionManager.Cookie.Name {
			continue
		}

		ctx, err := app.sessionManager.Load(context.Background(), cookie.Value)
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}

		return app.sessionManager.Get(ctx, key.String())
	}

	t.Fatalf("response carries no session cookie")
	return nil
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt struct {
	wantStatus     int
	wantErrMessage string
}) {
	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	switch tt.wantStatus {
	case http.StatusUnprocessableEntity:
		var validationResp api.ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if !errorSet[tt.wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response", tt.wantErrMessage)
		}

	default:
		var errorResp api.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if tt.wantErrMessage != "" && errorResp.Message != tt.wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, tt.wantErrMessage)
		}
	}
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": expiresAt.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	return token
}

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool {
	return a.Equal(b)
})

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

// testMovie has one showtime with a backend grid and one without.
func testMovie() *domain.Movie {
	grid, err := domain.NewSeatGrid([][]bool{
		{true, true, false},
		{true, true, true},
	})
	if err != nil {
		panic(err)
	}

	return &domain.Movie{
		ID:      "7",
		Title:   "Arrival",
		Rating:  "PG-13",
		Running: true,
		ShowTimes: []domain.ShowTime{
			{
				ID:             "31",
				MovieID:        "7",
				Date:           "2025-06-01",
				Time:           "19:30",
				BasePrice:      dec("12.50"),
				ScreenNumber:   2,
				AvailableSeats: 5,
				Grid:           grid,
			},
			{
				ID:        "32",
				MovieID:   "7",
				Date:      "2025-06-02",
				Time:      "21:00",
				BasePrice: dec("10.00"),
			},
		},
	}
}

func catalogWith(movie *domain.Movie) *mocks.MockCatalogGateway {
	return &mocks.MockCatalogGateway{
		GetMovieFunc: func(ctx context.Context, movieID string) (*domain.Movie, error) {
			if movieID != movie.ID {
				return nil, &backend.UpstreamError{Op: "fetch movie", Status: http.StatusNotFound, Message: "Movie not found", Err: domain.ErrRecordNotFound}
			}
			m := *movie
			m.ShowTimes = append([]domain.ShowTime(nil), movie.ShowTimes...)
			return &m, nil
		},
		GetShowTimesFunc: func(ctx context.Context, movieID string) ([]domain.ShowTime, error) {
			return append([]domain.ShowTime(nil), movie.ShowTimes...), nil
		},
	}
}

func cartTicket(id, showId string, row, col int, category domain.TicketCategory, price string) domain.CartTicket {
	return domain.CartTicket{
		ID:         id,
		MovieID:    "7",
		MovieTitle: "Arrival",
		ShowID:     showId,
		ShowDate:   "2025-06-01",
		ShowTime:   "19:30",
		SeatRow:    row,
		SeatCol:    col,
		SeatLabel:  domain.SeatLabel(row, col),
		Category:   category,
		Quantity:   1,
		Price:      dec(price),
		BasePrice:  decimal.NewNullDecimal(dec("12.50")),
	}
}
