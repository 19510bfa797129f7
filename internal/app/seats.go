package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/metinatakli/cinema-storefront/api"
	"github.com/metinatakli/cinema-storefront/internal/domain"
)

func (app *Application) GetSeatGrid(w http.ResponseWriter, r *http.Request) {
	movieId := chi.URLParam(r, "movieId")
	showTimeId := chi.URLParam(r, "showtimeId")

	_, showTime, err := app.findShowTime(r.Context(), movieId, showTimeId)
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	grid, err := app.seatGridFor(r.Context(), app.contextGetVisitorId(r), showTime)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toSeatGridResponse(showTime.ID, grid), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// seatGridFor returns the backend grid of the showtime. Without one, a
// placeholder grid is synthesized once per visitor and showtime and reused for
// the rest of the session.
func (app *Application) seatGridFor(ctx context.Context, visitorId string, showTime domain.ShowTime) (*domain.SeatGrid, error) {
	if showTime.Grid != nil {
		return showTime.Grid, nil
	}

	grid, err := app.seatGrids.Get(ctx, visitorId, showTime.ID)
	if err == nil {
		return grid, nil
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, err
	}

	grid = domain.SynthesizeSeatGrid(app.newRand())

	err = app.seatGrids.Set(ctx, visitorId, showTime.ID, grid, sessionIdleTimeout)
	if err != nil {
		return nil, err
	}

	app.logger.Debug("synthesized placeholder seat grid", "visitor_id", visitorId, "showtime_id", showTime.ID)

	return grid, nil
}

func (app *Application) catalogErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrShowTimeNotFound) {
		app.notFoundResponseWithErr(w, r, err)
		return
	}

	app.upstreamErrorResponse(w, r, err)
}

func toSeatGridResponse(showTimeId string, grid *domain.SeatGrid) api.SeatGridResponse {
	seats := make([][]api.Seat, grid.Rows)

	for row := range seats {
		seats[row] = make([]api.Seat, grid.Cols)

		for col := range seats[row] {
			seats[row][col] = api.Seat{
				Row:       row,
				Col:       col,
				Label:     domain.SeatLabel(row, col),
				Available: grid.IsAvailable(row, col),
			}
		}
	}

	return api.SeatGridResponse{
		ShowTimeId:  showTimeId,
		Rows:        grid.Rows,
		Cols:        grid.Cols,
		Placeholder: grid.Placeholder,
		Seats:       seats,
	}
}
