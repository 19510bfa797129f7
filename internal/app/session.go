package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/metinatakli/cinema-storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type sessionKey string

const (
	SessionKeyVisitorId         = sessionKey("visitorID")
	SessionKeyAuthToken         = sessionKey("authToken")
	SessionKeyPromotionCode     = sessionKey("promotionCode")
	SessionKeyPromotionDiscount = sessionKey("promotionDiscount")
)

func (s sessionKey) String() string {
	return string(s)
}

type contextKey string

const (
	loggerContextKey    = contextKey("logger")
	visitorContextKey   = contextKey("visitor")
	authTokenContextKey = contextKey("authToken")
)

func (app *Application) contextSetLogger(r *http.Request, logger *slog.Logger) *http.Request {
	ctx := context.WithValue(r.Context(), loggerContextKey, logger)
	return r.WithContext(ctx)
}

func (app *Application) contextGetLogger(r *http.Request) *slog.Logger {
	logger, ok := r.Context().Value(loggerContextKey).(*slog.Logger)
	if !ok {
		return app.logger
	}

	return logger
}

// contextGetVisitorId returns the cart owner of the request. It panics when
// ensureVisitorSession did not run.
func (app *Application) contextGetVisitorId(r *http.Request) string {
	visitorId, ok := r.Context().Value(visitorContextKey).(string)
	if !ok || visitorId == "" {
		panic("missing visitor id from context")
	}

	return visitorId
}

func (app *Application) contextGetAuthToken(r *http.Request) string {
	token, ok := r.Context().Value(authTokenContextKey).(string)
	if !ok {
		panic("missing auth token from context")
	}

	return token
}

// sessionPromotion returns the promotion applied to the visitor's order, if any.
func (app *Application) sessionPromotion(ctx context.Context) *domain.AppliedPromotion {
	code := app.sessionManager.GetString(ctx, SessionKeyPromotionCode.String())
	if code == "" {
		return nil
	}

	discount, err := decimal.NewFromString(app.sessionManager.GetString(ctx, SessionKeyPromotionDiscount.String()))
	if err != nil || !discount.IsPositive() {
		app.clearSessionPromotion(ctx)
		return nil
	}

	return &domain.AppliedPromotion{
		Code:               code,
		DiscountPercentage: discount,
	}
}

func (app *Application) putSessionPromotion(ctx context.Context, promotion *domain.AppliedPromotion) {
	app.sessionManager.Put(ctx, SessionKeyPromotionCode.String(), promotion.Code)
	app.sessionManager.Put(ctx, SessionKeyPromotionDiscount.String(), promotion.DiscountPercentage.String())
}

func (app *Application) clearSessionPromotion(ctx context.Context) {
	app.sessionManager.Remove(ctx, SessionKeyPromotionCode.String())
	app.sessionManager.Remove(ctx, SessionKeyPromotionDiscount.String())
}
