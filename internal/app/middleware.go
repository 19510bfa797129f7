package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func (app *Application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")

				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *Application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := app.logger.With(
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"uri", r.URL.RequestURI(),
		)

		next.ServeHTTP(w, app.contextSetLogger(r, logger))
	})
}

// ensureVisitorSession gives every browser a stable cart owner id, kept in its
// session for as long as the session lives.
func (app *Application) ensureVisitorSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		visitorId := app.sessionManager.GetString(r.Context(), SessionKeyVisitorId.String())

		if visitorId == "" {
			visitorId = uuid.NewString()
			app.sessionManager.Put(r.Context(), SessionKeyVisitorId.String(), visitorId)
		}

		ctx := context.WithValue(r.Context(), visitorContextKey, visitorId)
		logger := app.contextGetLogger(r).With("visitor_id", visitorId)

		next.ServeHTTP(w, app.contextSetLogger(r.WithContext(ctx), logger))
	})
}

// requireAuthToken takes the bearer token from the Authorization header, or
// else from the session, and rejects the request when there is none or it has
// expired. Tokens are forwarded to the backend, which verifies them.
func (app *Application) requireAuthToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, fromHeader := bearerToken(r)
		if !fromHeader {
			token = app.sessionManager.GetString(r.Context(), SessionKeyAuthToken.String())
		}

		if token == "" {
			app.unauthorizedAccessResponse(w, r)
			return
		}

		expiresAt, err := tokenExpiry(token)
		if err == nil && expiresAt != nil && !expiresAt.After(time.Now()) {
			if !fromHeader {
				app.sessionManager.Remove(r.Context(), SessionKeyAuthToken.String())
			}

			app.contextGetLogger(r).Warn("rejected expired auth token", "expired_at", expiresAt)
			app.tokenExpiredResponse(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), authTokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

// tokenExpiry reads the exp claim without verifying the signature. A nil time
// means the token carries no expiry.
func tokenExpiry(token string) (*time.Time, error) {
	claims := jwt.MapClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return nil, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, err
	}

	return &exp.Time, nil
}
