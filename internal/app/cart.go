package app

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/metinatakli/cinema-storefront/api"
	"github.com/metinatakli/cinema-storefront/internal/domain"
	"github.com/shopspring/decimal"
)

func (app *Application) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := app.carts.Load(r.Context(), app.contextGetVisitorId(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.writeCart(w, r, http.StatusOK, cart)
}

func (app *Application) ClearCart(w http.ResponseWriter, r *http.Request) {
	err := app.carts.Clear(r.Context(), app.contextGetVisitorId(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.clearSessionPromotion(r.Context())

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) UpdateTicketQuantity(w http.ResponseWriter, r *http.Request) {
	var input api.QuantityRequest

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

	app.updateCart(w, r, func(cart *domain.Cart, ticketId string) error {
		_, err := cart.UpdateQuantity(ticketId, input.Delta)
		return err
	})
}

func (app *Application) UpdateTicketCategory(w http.ResponseWriter, r *http.Request) {
	var input api.CategoryRequest

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

	category, err := domain.ParseTicketCategory(input.Category)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	app.updateCart(w, r, func(cart *domain.Cart, ticketId string) error {
		_, err := cart.UpdateCategory(ticketId, category)
		return err
	})
}

func (app *Application) RemoveTicket(w http.ResponseWriter, r *http.Request) {
	app.updateCart(w, r, func(cart *domain.Cart, ticketId string) error {
		return cart.Remove(ticketId)
	})
}

// updateCart applies fn to the latest stored cart and writes the result back
// before responding.
func (app *Application) updateCart(w http.ResponseWriter, r *http.Request, fn func(cart *domain.Cart, ticketId string) error) {
	visitorId := app.contextGetVisitorId(r)
	ticketId := chi.URLParam(r, "ticketId")

	cart, err := app.carts.Load(r.Context(), visitorId)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = fn(cart, ticketId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTicketNotFound):
			app.notFoundResponseWithErr(w, r, err)
		case errors.Is(err, domain.ErrInvalidCategory):
			app.badRequestResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.carts.Save(r.Context(), visitorId, cart)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.writeCart(w, r, http.StatusOK, cart)
}

func (app *Application) writeCart(w http.ResponseWriter, r *http.Request, status int, cart *domain.Cart) {
	resp := api.CartResponse{
		Cart: toApiCart(cart, app.sessionPromotion(r.Context())),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiCart(cart *domain.Cart, promotion *domain.AppliedPromotion) api.Cart {
	subtotal := cart.Total()
	total := subtotal

	result := api.Cart{
		Tickets:  make([]api.CartTicket, len(cart.Tickets)),
		Groups:   toApiCartGroups(cart.Groups()),
		Subtotal: subtotal,
	}

	for i, t := range cart.Tickets {
		result.Tickets[i] = api.CartTicket{
			Id:         t.ID,
			MovieId:    t.MovieID,
			MovieTitle: t.MovieTitle,
			ShowId:     t.ShowID,
			ShowDate:   t.ShowDate,
			ShowTime:   t.ShowTime,
			SeatLabel:  t.SeatLabel,
			Category:   t.Category.String(),
			Quantity:   t.Quantity,
			UnitPrice:  t.UnitPrice(),
			Price:      t.Price,
		}
	}

	if promotion != nil {
		total = domain.ApplyDiscount(subtotal, promotion.DiscountPercentage)
		result.Promotion = &api.AppliedPromotion{
			Code:               promotion.Code,
			DiscountPercentage: promotion.DiscountPercentage,
		}
	}

	result.Total = total
	result.Discount = subtotal.Sub(total)

	return result
}

func toApiCartGroups(groups []domain.CartGroup) []api.CartGroup {
	result := make([]api.CartGroup, len(groups))

	for i, g := range groups {
		ids := make([]string, len(g.Tickets))
		subtotal := decimal.Zero

		for j, t := range g.Tickets {
			ids[j] = t.ID
			subtotal = subtotal.Add(t.Price)
		}

		result[i] = api.CartGroup{
			MovieTitle:  g.MovieTitle,
			ShowDate:    g.ShowDate,
			ShowTime:    g.ShowTime,
			DisplayTime: domain.ShowTime{Time: g.ShowTime}.DisplayTime(),
			TicketIds:   ids,
			Subtotal:    subtotal,
		}
	}

	return result
}
