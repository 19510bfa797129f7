package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/metinatakli/cinema-storefront/api"
)

// ValidatePromotion passes the backend's verdict on a code through to the
// caller without touching the visitor's order.
func (app *Application) ValidatePromotion(w http.ResponseWriter, r *http.Request) {
	input := api.PromotionRequest{Code: chi.URLParam(r, "code")}

	err := app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	promotion, err := app.promotions.ValidatePromotion(r.Context(), input.Code)
	if err != nil {
		app.upstreamErrorResponse(w, r, err)
		return
	}

	resp := api.PromotionValidationResponse{
		Code:               promotion.Code,
		DiscountPercentage: promotion.DiscountPercentage,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ApplyPromotion validates the code and makes it the single promotion of the
// order. A code that fails validation also removes the promotion applied
// before it.
func (app *Application) ApplyPromotion(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.PromotionRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.clearSessionPromotion(r.Context())
		app.failedValidationResponse(w, r, err)
		return
	}

	promotion, err := app.promotions.ValidatePromotion(r.Context(), input.Code)
	if err != nil {
		logger.Info("promotion rejected", "code", input.Code, "error", err)
		app.clearSessionPromotion(r.Context())
		app.upstreamErrorResponse(w, r, err)
		return
	}

	app.putSessionPromotion(r.Context(), promotion)

	cart, err := app.carts.Load(r.Context(), app.contextGetVisitorId(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.writeCart(w, r, http.StatusOK, cart)
}

func (app *Application) RemovePromotion(w http.ResponseWriter, r *http.Request) {
	app.clearSessionPromotion(r.Context())

	cart, err := app.carts.Load(r.Context(), app.contextGetVisitorId(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.writeCart(w, r, http.StatusOK, cart)
}
