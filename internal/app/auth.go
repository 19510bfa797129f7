package app

import (
	"net/http"
	"time"

	"github.com/metinatakli/cinema-storefront/api"
)

// CreateSession remembers the backend bearer token for the visitor, so that
// checkout and admin calls can forward it.
func (app *Application) CreateSession(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.SessionRequest

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

	expiresAt, err := tokenExpiry(input.Token)
	if err != nil {
		logger.Warn("failed to read auth token claims", "error", err)
		app.unauthorizedAccessResponse(w, r)
		return
	}

	if expiresAt != nil && !expiresAt.After(time.Now()) {
		app.tokenExpiredResponse(w, r)
		return
	}

	// To help prevent session fixation attacks we should renew the session token after any privilege level change.
	// https://github.com/OWASP/CheatSheetSeries/blob/master/cheatsheets/Session_Management_Cheat_Sheet.md#renew-the-session-id-after-any-privilege-level-change
	err = app.sessionManager.RenewToken(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.sessionManager.Put(r.Context(), SessionKeyAuthToken.String(), input.Token)

	resp := api.SessionResponse{
		Authenticated: true,
		ExpiresAt:     expiresAt,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// DeleteSession forgets the bearer token. The cart stays with the visitor.
func (app *Application) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if !app.sessionManager.Exists(r.Context(), SessionKeyAuthToken.String()) {
		app.notFoundResponse(w, r)
		return
	}

	app.sessionManager.Remove(r.Context(), SessionKeyAuthToken.String())

	err := app.sessionManager.RenewToken(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
