package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/metinatakli/cinema-storefront/api"
	"github.com/metinatakli/cinema-storefront/internal/domain"
	"github.com/oapi-codegen/runtime/types"
)

func (app *Application) GetMovie(w http.ResponseWriter, r *http.Request) {
	movieId := chi.URLParam(r, "movieId")

	movie, err := app.catalog.GetMovie(r.Context(), movieId)
	if err != nil {
		app.upstreamErrorResponse(w, r, err)
		return
	}

	resp := api.MovieResponse{
		Id:                 movie.ID,
		Title:              movie.Title,
		Description:        movie.Description,
		ImageUrl:           movie.ImageUrl,
		Rating:             movie.Rating,
		IsCurrentlyRunning: movie.Running,
		ShowTimes:          toApiShowTimes(movie.ShowTimes),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetShowTimes(w http.ResponseWriter, r *http.Request) {
	movieId := chi.URLParam(r, "movieId")

	showTimes, err := app.catalog.GetShowTimes(r.Context(), movieId)
	if err != nil {
		app.upstreamErrorResponse(w, r, err)
		return
	}

	resp := api.ShowTimeListResponse{
		ShowTimes: toApiShowTimes(showTimes),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// findShowTime looks the showtime up among the movie's embedded showtimes and
// falls back to the per-movie showtime listing.
func (app *Application) findShowTime(ctx context.Context, movieId, showTimeId string) (*domain.Movie, domain.ShowTime, error) {
	movie, err := app.catalog.GetMovie(ctx, movieId)
	if err != nil {
		return nil, domain.ShowTime{}, err
	}

	showTime, err := movie.ShowTime(showTimeId)
	if err == nil {
		return movie, showTime, nil
	}
	if !errors.Is(err, domain.ErrShowTimeNotFound) {
		return nil, domain.ShowTime{}, err
	}

	showTimes, err := app.catalog.GetShowTimes(ctx, movieId)
	if err != nil {
		return nil, domain.ShowTime{}, err
	}

	movie.ShowTimes = showTimes

	showTime, err = movie.ShowTime(showTimeId)
	if err != nil {
		return nil, domain.ShowTime{}, err
	}

	return movie, showTime, nil
}

func toApiShowTimes(showTimes []domain.ShowTime) []api.ShowTime {
	result := make([]api.ShowTime, len(showTimes))

	for i, st := range showTimes {
		apiShowTime := &result[i]

		apiShowTime.Id = st.ID
		apiShowTime.MovieId = st.MovieID
		apiShowTime.Time = st.Time
		apiShowTime.DisplayTime = st.DisplayTime()
		apiShowTime.BasePrice = st.BasePrice
		apiShowTime.ScreenNumber = st.ScreenNumber
		apiShowTime.AvailableSeats = st.AvailableSeats
		apiShowTime.Prices = api.CategoryPrices{
			Adult:  domain.PriceFor(st.BasePrice, domain.CategoryAdult),
			Child:  domain.PriceFor(st.BasePrice, domain.CategoryChild),
			Senior: domain.PriceFor(st.BasePrice, domain.CategorySenior),
		}

		if date, err := time.Parse(domain.DateLayout, st.Date); err == nil {
			apiShowTime.Date = types.Date{Time: date}
		}
	}

	return result
}
