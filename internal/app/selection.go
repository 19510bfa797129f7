package app

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/metinatakli/cinema-storefront/api"
	"github.com/metinatakli/cinema-storefront/internal/domain"
)

// CreateSelection turns the chosen seats of one showtime into cart tickets.
// They replace earlier tickets of the same showtime; tickets of other
// showtimes stay in the cart.
func (app *Application) CreateSelection(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	movieId := chi.URLParam(r, "movieId")
	showTimeId := chi.URLParam(r, "showtimeId")

	var input api.SelectionRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	movie, showTime, err := app.findShowTime(r.Context(), movieId, showTimeId)
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	visitorId := app.contextGetVisitorId(r)

	grid, err := app.seatGridFor(r.Context(), visitorId, showTime)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	selection := domain.NewSeatSelection()
	for _, seat := range input.Seats {
		category, err := domain.ParseTicketCategory(seat.Category)
		if err != nil {
			app.badRequestResponse(w, r, err)
			return
		}

		selection.Select(*seat.Row, *seat.Col, category)
	}

	err = selection.Validate(grid)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSeatUnavailable):
			logger.Warn("selection rejected: seat is not available", "showtime_id", showTime.ID, "error", err)
			app.editConflictResponseWithErr(w, r, err)
		case errors.Is(err, domain.ErrSeatOutOfRange), errors.Is(err, domain.ErrEmptySelection):
			app.badRequestResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	cart, err := app.carts.Load(r.Context(), visitorId)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	tickets := domain.Materialize(movie, showTime, selection, cart)
	cart.Append(showTime.ID, tickets)

	err = app.carts.Save(r.Context(), visitorId, cart)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	logger.Info("seat selection added to cart", "showtime_id", showTime.ID, "tickets", len(tickets))

	resp := api.CartResponse{
		Cart: toApiCart(cart, app.sessionPromotion(r.Context())),
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
