package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(otelchi.Middleware("cinema-storefront", otelchi.WithChiRoutes(r)))
	r.Use(app.recoverPanic)
	r.Use(app.logRequest)
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(app.ensureVisitorSession)

	r.Get("/health", app.GetHealth)

	r.Route("/auth/session", func(r chi.Router) {
		r.Post("/", app.CreateSession)
		r.Delete("/", app.DeleteSession)
	})

	r.Route("/movies/{movieId}", func(r chi.Router) {
		r.Get("/", app.GetMovie)
		r.Get("/showtimes", app.GetShowTimes)
		r.Get("/showtimes/{showtimeId}/seats", app.GetSeatGrid)
		r.Post("/showtimes/{showtimeId}/selection", app.CreateSelection)
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", app.GetCart)
		r.Delete("/", app.ClearCart)
		r.Patch("/tickets/{ticketId}/quantity", app.UpdateTicketQuantity)
		r.Patch("/tickets/{ticketId}/category", app.UpdateTicketCategory)
		r.Delete("/tickets/{ticketId}", app.RemoveTicket)
		r.Put("/promotion", app.ApplyPromotion)
		r.Delete("/promotion", app.RemovePromotion)
	})

	r.Get("/promotions/validate/{code}", app.ValidatePromotion)

	r.With(app.requireAuthToken).Post("/bookings", app.CreateBooking)

	r.With(app.requireAuthToken).Route("/admin/promotions", func(r chi.Router) {
		r.Get("/", app.ListPromotions)
		r.Post("/", app.CreatePromotion)
		r.Delete("/{promotionId}", app.DeletePromotion)
		r.Post("/{promotionId}/send", app.SendPromotion)
	})

	return r
}
