package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Movie struct {
	ID          string
	Title       string
	Description string
	ImageUrl    string
	Rating      string
	Running     bool
	ShowTimes   []ShowTime
}

// ShowTime is a scheduled screening in canonical form: ISO date, 24h time.
type ShowTime struct {
	ID             string
	MovieID        string
	Date           string
	Time           string
	BasePrice      decimal.Decimal
	ScreenNumber   int
	AvailableSeats int
	Grid           *SeatGrid
}

// StartsAt combines Date and Time in the given location.
func (s ShowTime) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, s.Date+" "+s.Time, loc)
}

// DisplayTime renders the canonical time on a 12-hour clock, e.g. "7:30 PM".
func (s ShowTime) DisplayTime() string {
	t, err := time.Parse(TimeLayout, s.Time)
	if err != nil {
		return s.Time
	}

	return t.Format("3:04 PM")
}

func (m *Movie) ShowTime(id string) (ShowTime, error) {
	for _, st := range m.ShowTimes {
		if st.ID == id {
			return st, nil
		}
	}

	return ShowTime{}, fmt.Errorf("%w: movie %s, showtime %s", ErrShowTimeNotFound, m.ID, id)
}

type CatalogGateway interface {
	GetMovie(ctx context.Context, movieID string) (*Movie, error)
	GetShowTimes(ctx context.Context, movieID string) ([]ShowTime, error)
}
