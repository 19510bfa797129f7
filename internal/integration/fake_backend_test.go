package integration_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type backendTicket struct {
	BookingID  int             `json:"bookingId"`
	ShowID     string          `json:"showId"`
	TicketType string          `json:"ticketType"`
	Price      decimal.Decimal `json:"price"`
	SeatNumber string          `json:"seatNumber"`
}

type backendBooking struct {
	ID         int
	CustomerID int
	Confirmed  bool
	Cancelled  bool
	Tickets    []backendTicket
}

// fakeBackend emulates the booking backend endpoints the storefront calls.
type fakeBackend struct {
	server *httptest.Server

	mu           sync.Mutex
	nextID       int
	bookings     map[int]*backendBooking
	tokens       []string
	rejectSeat   string
	confirmFails bool
}

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{}
	b.Reset()

	r := chi.NewRouter()

	r.Get("/movies/{movieId}", b.getMovie)
	r.Get("/showtimes/movie/{movieId}", b.getShowTimes)
	r.Get("/promotions/validate/{code}", b.validatePromotion)
	r.Post("/bookings/add", b.createBooking)
	r.Post("/tickets/add", b.addTicket)
	r.Put("/bookings/confirm/{id}", b.confirmBooking)
	r.Delete("/bookings/delete/{id}", b.deleteBooking)

	b.server = httptest.NewServer(r)

	return b
}

func (b *fakeBackend) URL() string {
	return b.server.URL
}

func (b *fakeBackend) Close() {
	b.server.Close()
}

func (b *fakeBackend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID = 100
	b.bookings = make(map[int]*backendBooking)
	b.tokens = nil
	b.rejectSeat = ""
	b.confirmFails = false
}

// RejectSeat makes every ticket for the seat fail with a conflict.
func (b *fakeBackend) RejectSeat(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rejectSeat = label
}

func (b *fakeBackend) FailConfirm() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.confirmFails = true
}

func (b *fakeBackend) Booking(id int) (backendBooking, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	booking, ok := b.bookings[id]
	if !ok {
		return backendBooking{}, false
	}

	return *booking, true
}

func (b *fakeBackend) Tokens() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]string(nil), b.tokens...)
}

func (b *fakeBackend) recordToken(r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens = append(b.tokens, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
}

func (b *fakeBackend) getMovie(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "movieId") != TestMovieId {
		writeBackendJSON(w, http.StatusNotFound, map[string]string{"error": "Movie not found"})
		return
	}

	writeBackendJSON(w, http.StatusOK, map[string]any{
		"id":                 7,
		"title":              TestMovieTitle,
		"description":        "A linguist is recruited to talk to visitors.",
		"trailerPicture":     "https://example.com/arrival.jpg",
		"mpaaRating":         "PG-13",
		"isCurrentlyRunning": true,
		"showTimes": []map[string]any{
			{
				"showTimeId":   31,
				"showDate":     TestShowDate + "T00:00:00Z",
				"showTime":     "19:30:00",
				"price":        12.5,
				"screenNumber": TestScreenNumber,
				"seats": [][]bool{
					{true, true, false, true},
					{true, true, true, true},
				},
			},
		},
	})
}

func (b *fakeBackend) getShowTimes(w http.ResponseWriter, r *http.Request) {
	writeBackendJSON(w, http.StatusOK, []map[string]any{
		{
			"id":      32,
			"movieId": 7,
			"date":    "2025-06-02",
			"time":    "9:00 PM",
			"price":   "10.00",
		},
	})
}

func (b *fakeBackend) validatePromotion(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "code") != TestPromotionCode {
		writeBackendJSON(w, http.StatusNotFound, map[string]string{"error": "Promotion code not found"})
		return
	}

	writeBackendJSON(w, http.StatusOK, map[string]any{"discountPercentage": 10})
}

func (b *fakeBackend) createBooking(w http.ResponseWriter, r *http.Request) {
	b.recordToken(r)

	var input struct {
		CustomerID int `json:"customerId"`
	}

	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil || input.CustomerID <= 0 {
		writeBackendJSON(w, http.StatusBadRequest, map[string]string{"error": "customerId is required"})
		return
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.bookings[id] = &backendBooking{ID: id, CustomerID: input.CustomerID}
	b.mu.Unlock()

	writeBackendJSON(w, http.StatusOK, map[string]int{"bookingId": id})
}

func (b *fakeBackend) addTicket(w http.ResponseWriter, r *http.Request) {
	b.recordToken(r)

	var ticket backendTicket

	err := json.NewDecoder(r.Body).Decode(&ticket)
	if err != nil {
		writeBackendJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	booking, ok := b.bookings[ticket.BookingID]
	if !ok {
		writeBackendJSON(w, http.StatusNotFound, map[string]string{"error": "Booking not found"})
		return
	}

	if ticket.SeatNumber == b.rejectSeat {
		writeBackendJSON(w, http.StatusConflict, map[string]string{"error": "Seat " + ticket.SeatNumber + " is already taken"})
		return
	}

	booking.Tickets = append(booking.Tickets, ticket)

	writeBackendJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

func (b *fakeBackend) confirmBooking(w http.ResponseWriter, r *http.Request) {
	b.recordToken(r)

	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	b.mu.Lock()
	defer b.mu.Unlock()

	booking, ok := b.bookings[id]
	if !ok {
		writeBackendJSON(w, http.StatusNotFound, map[string]string{"error": "Booking not found"})
		return
	}

	if b.confirmFails {
		writeBackendJSON(w, http.StatusInternalServerError, map[string]string{"error": "payment processor unavailable"})
		return
	}

	booking.Confirmed = true

	writeBackendJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}

func (b *fakeBackend) deleteBooking(w http.ResponseWriter, r *http.Request) {
	b.recordToken(r)

	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	b.mu.Lock()
	defer b.mu.Unlock()

	booking, ok := b.bookings[id]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	booking.Cancelled = true

	w.WriteHeader(http.StatusNoContent)
}

func writeBackendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
