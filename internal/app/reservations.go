package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/metinatakli/cinema-storefront/api"
	"github.com/metinatakli/cinema-storefront/internal/checkout"
	"github.com/metinatakli/cinema-storefront/internal/domain"
)

// CreateBooking books the visitor's cart on the backend. The cart is cleared
// only when the booking was confirmed; after a failure it is kept so the
// visitor can retry.
func (app *Application) CreateBooking(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.CheckoutRequest

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

	visitorId := app.contextGetVisitorId(r)

	// the submission outlives the client connection
	ctx := context.WithoutCancel(r.Context())

	lockToken := uuid.NewString()

	acquired, err := app.checkoutLock.Acquire(ctx, visitorId, lockToken, app.config.CheckoutLockTTL)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if !acquired {
		logger.Warn("checkout rejected: another submission is in progress")
		app.editConflictResponseWithErr(w, r, domain.ErrCheckoutInProgress)
		return
	}

	defer func() {
		err := app.checkoutLock.Release(ctx, visitorId, lockToken)
		if err != nil {
			logger.Error("failed to release checkout lock", "error", err)
		}
	}()

	cart, err := app.carts.Load(ctx, visitorId)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if cart.IsEmpty() {
		app.badRequestResponse(w, r, domain.ErrEmptyCart)
		return
	}

	promotion := app.sessionPromotion(r.Context())

	submitCtx, cancel := context.WithTimeout(ctx, app.backendTimeout())
	defer cancel()

	result, err := app.orchestrator.Submit(submitCtx, checkout.Submission{
		Token:      app.contextGetAuthToken(r),
		CustomerID: input.CustomerId,
		Tickets:    cart.Tickets,
		Promotion:  promotion,
	})
	if err != nil {
		app.checkoutFailedResponse(w, r, err)
		return
	}

	err = app.carts.Clear(ctx, visitorId)
	if err != nil {
		logger.Error("failed to clear cart after booking", "booking_id", result.BookingID, "error", err)
	}

	app.clearSessionPromotion(r.Context())

	resp := api.CheckoutResponse{
		Success:   true,
		BookingId: result.BookingID,
		Tickets:   result.Tickets,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// checkoutFailedResponse reports a failed submission as one message. Backend
// client errors keep their status; anything else is a bad gateway.
func (app *Application) checkoutFailedResponse(w http.ResponseWriter, r *http.Request, err error) {
	status, _, ok := upstreamStatus(err)
	if !ok {
		status = http.StatusBadGateway
	}

	message := err.Error()
	if errors.Is(err, domain.ErrEmptyCart) {
		status = http.StatusBadRequest
	}

	resp := api.CheckoutResponse{
		Success: false,
		Error:   message,
	}

	err = app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
