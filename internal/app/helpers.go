package app

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/metinatakli/cinema-storefront/internal/jsonutil"
)

func (app *Application) writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	return jsonutil.WriteJSON(w, status, data, headers)
}

func (app *Application) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return jsonutil.ReadJSON(w, r, dst)
}

func readIntParam(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}

	return id, nil
}

func readQueryInt(r *http.Request, name string) (*int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}

	return &n, nil
}

func readQueryString(r *http.Request, name string) *string {
	if !r.URL.Query().Has(name) {
		return nil
	}

	s := r.URL.Query().Get(name)
	return &s
}

// background runs fn outside the request. The server waits for it on shutdown.
func (app *Application) background(r *http.Request, name string, fn func() error) {
	ctx := r.Context()

	app.wg.Add(1)

	go func() {
		defer app.wg.Done()

		// new logger for this goroutine, inheriting context from the request
		logger := app.contextGetLogger(r.WithContext(ctx))

		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic occurred in background task", "task", name, "panic", err)
			}
		}()

		err := fn()
		if err != nil {
			logger.Error("background task failed", "task", name, "error", err)
			return
		}

		logger.Info("background task completed", "task", name)
	}()
}
