package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/metinatakli/cinema-storefront/api"
	"github.com/metinatakli/cinema-storefront/internal/backend"
	"github.com/metinatakli/cinema-storefront/internal/domain"
	"github.com/metinatakli/cinema-storefront/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMovie(t *testing.T) {
	tests := []struct {
		name           string
		movieId        string
		catalog        *mocks.MockCatalogGateway
		wantStatus     int
		wantErrMessage string
	}{
		{
			name:       "should return movie with category prices",
			movieId:    "7",
			catalog:    catalogWith(testMovie()),
			wantStatus: http.StatusOK,
		},
		{
			name:           "should pass backend not found through",
			movieId:        "99",
			catalog:        catalogWith(testMovie()),
			wantStatus:     http.StatusNotFound,
			wantErrMessage: "Movie not found",
		},
		{
			name:    "should report a timed out backend as gateway timeout",
			movieId: "7",
			catalog: &mocks.MockCatalogGateway{
				GetMovieFunc: func(ctx context.Context, movieID string) (*domain.Movie, error) {
					return nil, fmt.Errorf("fetch movie: %w", backend.ErrTimeout)
				},
			},
			wantStatus:     http.StatusGatewayTimeout,
			wantErrMessage: ErrBackendTimeout,
		},
		{
			name:    "should report a failing backend as bad gateway",
			movieId: "7",
			catalog: &mocks.MockCatalogGateway{
				GetMovieFunc: func(ctx context.Context, movieID string) (*domain.Movie, error) {
					return nil, &backend.UpstreamError{Op: "fetch movie", Status: http.StatusServiceUnavailable}
				},
			},
			wantStatus:     http.StatusBadGateway,
			wantErrMessage: ErrBackendFailure,
		},
		{
			name:    "should return internal error for unexpected failures",
			movieId: "7",
			catalog: &mocks.MockCatalogGateway{
				GetMovieFunc: func(ctx context.Context, movieID string) (*domain.Movie, error) {
					return nil, errors.New("decode failure")
				},
			},
			wantStatus:     http.StatusInternalServerError,
			wantErrMessage: ErrInternalServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApplication(func(a *Application) {
				a.catalog = tt.catalog
			})

			w, r := executeRequest(t, http.MethodGet, "/movies/"+tt.movieId, nil)
			r.AddCookie(visitorCookie(t, app, nil))

			app.Routes().ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusOK {
				var resp api.MovieResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

				assert.Equal(t, "Arrival", resp.Title)
				assert.True(t, resp.IsCurrentlyRunning)
				require.Len(t, resp.ShowTimes, 2)

				st := resp.ShowTimes[0]
				assert.Equal(t, "31", st.Id)
				assert.Equal(t, "2025-06-01", st.Date.Format(domain.DateLayout))
				assert.Equal(t, "7:30 PM", st.DisplayTime)

				wantPrices := api.CategoryPrices{
					Adult:  dec("12.50"),
					Child:  dec("11.25"),
					Senior: dec("11.88"),
				}
				if diff := cmp.Diff(wantPrices, st.Prices, decimalComparer); diff != "" {
					t.Errorf("prices mismatch (-want +got):\n%s", diff)
				}
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

func TestGetShowTimes(t *testing.T) {
	app := newTestApplication(func(a *Application) {
		a.catalog = catalogWith(testMovie())
	})

	w, r := executeRequest(t, http.MethodGet, "/movies/7/showtimes", nil)
	r.AddCookie(visitorCookie(t, app, nil))

	app.Routes().ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.ShowTimeListResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.ShowTimes, 2)

	assert.Equal(t, "32", resp.ShowTimes[1].Id)
	assert.Equal(t, "9:00 PM", resp.ShowTimes[1].DisplayTime)
	assert.True(t, resp.ShowTimes[1].Prices.Child.Equal(dec("9.00")))
	assert.True(t, resp.ShowTimes[1].Prices.Senior.Equal(dec("9.50")))
}
