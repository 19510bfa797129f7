package app

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"testing"

	"github.com/metinatakli/cinema-storefront/api"
	"github.com/metinatakli/cinema-storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSeatGrid(t *testing.T) {
	tests := []struct {
		name            string
		url             string
		wantStatus      int
		wantErrMessage  string
		wantPlaceholder bool
		wantRows        int
		wantCols        int
	}{
		{
			name:       "should return the backend grid",
			url:        "/movies/7/showtimes/31/seats",
			wantStatus: http.StatusOK,
			wantRows:   2,
			wantCols:   3,
		},
		{
			name:            "should synthesize a placeholder grid",
			url:             "/movies/7/showtimes/32/seats",
			wantStatus:      http.StatusOK,
			wantPlaceholder: true,
			wantRows:        domain.PlaceholderRows,
			wantCols:        domain.PlaceholderCols,
		},
		{
			name:       "should return not found for an unknown showtime",
			url:        "/movies/7/showtimes/99/seats",
			wantStatus: http.StatusNotFound,
		},
		{
			name:           "should return not found for an unknown movie",
			url:            "/movies/8/showtimes/31/seats",
			wantStatus:     http.StatusNotFound,
			wantErrMessage: "Movie not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApplication(func(a *Application) {
				a.catalog = catalogWith(testMovie())
			})

			w, r := executeRequest(t, http.MethodGet, tt.url, nil)
			r.AddCookie(visitorCookie(t, app, nil))

			app.Routes().ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusOK {
				var resp api.SeatGridResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

				assert.Equal(t, tt.wantPlaceholder, resp.Placeholder)
				assert.Equal(t, tt.wantRows, resp.Rows)
				assert.Equal(t, tt.wantCols, resp.Cols)
				require.Len(t, resp.Seats, tt.wantRows)
				require.Len(t, resp.Seats[0], tt.wantCols)
				assert.Equal(t, "A1", resp.Seats[0][0].Label)
			}

			checkErrorResponse(t, w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}

func TestGetSeatGrid_BackendAvailability(t *testing.T) {
	app := newTestApplication(func(a *Application) {
		a.catalog = catalogWith(testMovie())
	})

	w, r := executeRequest(t, http.MethodGet, "/movies/7/showtimes/31/seats", nil)
	r.AddCookie(visitorCookie(t, app, nil))

	app.Routes().ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.SeatGridResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	assert.Equal(t, api.Seat{Row: 0, Col: 2, Label: "A3", Available: false}, resp.Seats[0][2])
	assert.Equal(t, api.Seat{Row: 1, Col: 1, Label: "B2", Available: true}, resp.Seats[1][1])
}

func TestGetSeatGrid_PlaceholderIsStable(t *testing.T) {
	calls := 0

	app := newTestApplication(func(a *Application) {
		a.catalog = catalogWith(testMovie())
	})

	seed := uint64(0)
	app.newRand = func() *rand.Rand {
		calls++
		seed++
		return rand.New(rand.NewPCG(seed, seed))
	}

	cookie := visitorCookie(t, app, nil)

	fetch := func() api.SeatGridResponse {
		w, r := executeRequest(t, http.MethodGet, "/movies/7/showtimes/32/seats", nil)
		r.AddCookie(cookie)

		app.Routes().ServeHTTP(w, r)
		require.Equal(t, http.StatusOK, w.Code)

		var resp api.SeatGridResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

		return resp
	}

	first := fetch()
	second := fetch()

	assert.Equal(t, 1, calls)
	assert.Equal(t, first.Seats, second.Seats)
}
