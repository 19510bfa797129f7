package domain

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"
)

const (
	PlaceholderRows = 6
	PlaceholderCols = 8

	// placeholderAvailability is the chance that a synthesized seat is bookable.
	placeholderAvailability = 0.7
)

// SeatGrid is the availability matrix of one showtime. It is never mutated by
// seat selection; only a confirmed booking on the backend consumes seats.
type SeatGrid struct {
	Rows        int
	Cols        int
	Available   [][]bool
	Placeholder bool
}

func NewSeatGrid(matrix [][]bool) (*SeatGrid, error) {
	if len(matrix) == 0 || len(matrix[0]) == 0 {
		return nil, ErrInvalidSeatGrid
	}

	cols := len(matrix[0])
	available := make([][]bool, len(matrix))

	for i, row := range matrix {
		if len(row) != cols {
			return nil, ErrInvalidSeatGrid
		}

		available[i] = append([]bool(nil), row...)
	}

	return &SeatGrid{
		Rows:      len(matrix),
		Cols:      cols,
		Available: available,
	}, nil
}

// SynthesizeSeatGrid fabricates a grid for showtimes the backend sent without
// seat data. The result is flagged as a placeholder and must never replace a
// real grid.
func SynthesizeSeatGrid(rng *rand.Rand) *SeatGrid {
	available := make([][]bool, PlaceholderRows)

	for r := range available {
		available[r] = make([]bool, PlaceholderCols)
		for c := range available[r] {
			available[r][c] = rng.Float64() < placeholderAvailability
		}
	}

	return &SeatGrid{
		Rows:        PlaceholderRows,
		Cols:        PlaceholderCols,
		Available:   available,
		Placeholder: true,
	}
}

func (g *SeatGrid) InRange(row, col int) bool {
	return row >= 0 && row < g.Rows && col >= 0 && col < g.Cols
}

func (g *SeatGrid) IsAvailable(row, col int) bool {
	if !g.InRange(row, col) {
		return false
	}

	return g.Available[row][col]
}

// SeatLabel renders 0-based coordinates as a row letter and 1-based column, e.g. "B4".
func SeatLabel(row, col int) string {
	var letters []byte

	for n := row; n >= 0; n = n/26 - 1 {
		letters = append([]byte{byte('A' + n%26)}, letters...)
	}

	return fmt.Sprintf("%s%d", letters, col+1)
}

type SelectedSeat struct {
	Row      int
	Col      int
	Category TicketCategory
}

type seatKey struct {
	row int
	col int
}

// SeatSelection holds at most one category per seat of a single showtime.
type SeatSelection struct {
	seats map[seatKey]TicketCategory
}

func NewSeatSelection() *SeatSelection {
	return &SeatSelection{seats: make(map[seatKey]TicketCategory)}
}

// Select adds the seat, or overwrites its category when already selected.
func (s *SeatSelection) Select(row, col int, category TicketCategory) {
	s.seats[seatKey{row, col}] = category
}

func (s *SeatSelection) Deselect(row, col int) {
	delete(s.seats, seatKey{row, col})
}

// Toggle selects an unselected seat as adult and deselects a selected one.
func (s *SeatSelection) Toggle(row, col int) bool {
	key := seatKey{row, col}
	if _, ok := s.seats[key]; ok {
		delete(s.seats, key)
		return false
	}

	s.seats[key] = CategoryAdult
	return true
}

func (s *SeatSelection) IsSelected(row, col int) bool {
	_, ok := s.seats[seatKey{row, col}]
	return ok
}

func (s *SeatSelection) Len() int {
	return len(s.seats)
}

// Seats returns the selection ordered by row, then column.
func (s *SeatSelection) Seats() []SelectedSeat {
	seats := make([]SelectedSeat, 0, len(s.seats))
	for k, category := range s.seats {
		seats = append(seats, SelectedSeat{Row: k.row, Col: k.col, Category: category})
	}

	sort.Slice(seats, func(i, j int) bool {
		if seats[i].Row != seats[j].Row {
			return seats[i].Row < seats[j].Row
		}
		return seats[i].Col < seats[j].Col
	})

	return seats
}

// Validate checks every selected seat against the grid.
func (s *SeatSelection) Validate(grid *SeatGrid) error {
	if len(s.seats) == 0 {
		return ErrEmptySelection
	}

	for _, seat := range s.Seats() {
		if !grid.InRange(seat.Row, seat.Col) {
			return fmt.Errorf("%w: %s", ErrSeatOutOfRange, SeatLabel(seat.Row, seat.Col))
		}
		if !grid.IsAvailable(seat.Row, seat.Col) {
			return fmt.Errorf("%w: %s", ErrSeatUnavailable, SeatLabel(seat.Row, seat.Col))
		}
	}

	return nil
}

// SeatGridCache memoizes placeholder grids for the lifetime of a visitor session.
type SeatGridCache interface {
	Get(ctx context.Context, ownerID, showTimeID string) (*SeatGrid, error)
	Set(ctx context.Context, ownerID, showTimeID string, grid *SeatGrid, ttl time.Duration) error
}
