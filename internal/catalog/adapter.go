// Package catalog maps the booking backend's showtime and movie payloads,
// whose field names differ between endpoints, onto domain.ShowTime and
// domain.Movie.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/metinatakli/cinema-storefront/internal/domain"
	"github.com/shopspring/decimal"
)

const statusCurrentlyRunning = "Currently Running"

var errMissingField = errors.New("missing field")

// Adapter normalizes raw backend records. A zero Adapter logs nothing.
type Adapter struct {
	logger *slog.Logger
}

func NewAdapter(logger *slog.Logger) *Adapter {
	return &Adapter{logger: logger}
}

// NormalizeShowTimes accepts the body of either showtime endpoint. Anything
// that is not a JSON array yields an empty list; records that cannot be
// normalized are skipped.
func (a *Adapter) NormalizeShowTimes(movieID string, raw []byte) []domain.ShowTime {
	var list []any

	err := json.Unmarshal(raw, &list)
	if err != nil {
		a.warn("showtime payload is not an array", "movie_id", movieID, "error", err)
		return []domain.ShowTime{}
	}

	return a.normalizeRecords(movieID, a.objects(movieID, list))
}

// NormalizeMovie maps a movie record and its embedded showTimes. It fails only
// when the body is not a JSON object; malformed showTimes become an empty list.
func (a *Adapter) NormalizeMovie(raw []byte) (*domain.Movie, error) {
	var record map[string]any

	err := json.Unmarshal(raw, &record)
	if err != nil {
		return nil, fmt.Errorf("movie payload is not an object: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("movie payload: %w: body", errMissingField)
	}

	movie := &domain.Movie{
		ID:          firstString(record, "id", "movieId"),
		Title:       firstString(record, "title"),
		Description: firstString(record, "description", "synopsis"),
		ImageUrl:    firstString(record, "imageUrl", "posterUrl", "trailerPicture", "trailer_picture"),
		Rating:      firstString(record, "rating", "mpaaRating"),
	}

	if running, ok := record["isCurrentlyRunning"].(bool); ok {
		movie.Running = running
	} else {
		movie.Running = strings.EqualFold(firstString(record, "status"), statusCurrentlyRunning)
	}

	if movie.ID == "" {
		return nil, fmt.Errorf("movie payload: %w: id", errMissingField)
	}

	var records []map[string]any
	if list, ok := record["showTimes"].([]any); ok {
		records = a.objects(movie.ID, list)
	} else {
		a.warn("movie showTimes is not an array", "movie_id", movie.ID)
	}

	movie.ShowTimes = a.normalizeRecords(movie.ID, records)

	return movie, nil
}

// objects keeps the JSON objects of list and skips every other element.
func (a *Adapter) objects(movieID string, list []any) []map[string]any {
	records := make([]map[string]any, 0, len(list))

	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			a.warn("skipping showtime record that is not an object", "movie_id", movieID, "index", i)
			continue
		}
		records = append(records, m)
	}

	return records
}

func (a *Adapter) normalizeRecords(movieID string, records []map[string]any) []domain.ShowTime {
	showTimes := make([]domain.ShowTime, 0, len(records))
	seen := make(map[string]bool)

	for i, record := range records {
		st, err := normalizeShowTime(movieID, record)
		if err != nil {
			a.warn("skipping showtime record", "movie_id", movieID, "index", i, "error", err)
			continue
		}

		key := st.Date + " " + st.Time
		if seen[key] {
			a.warn("skipping duplicate showtime", "movie_id", movieID, "showtime_id", st.ID, "slot", key)
			continue
		}
		seen[key] = true

		showTimes = append(showTimes, st)
	}

	sort.SliceStable(showTimes, func(i, j int) bool {
		if showTimes[i].Date != showTimes[j].Date {
			return showTimes[i].Date < showTimes[j].Date
		}
		return showTimes[i].Time < showTimes[j].Time
	})

	return showTimes
}

func normalizeShowTime(movieID string, record map[string]any) (domain.ShowTime, error) {
	st := domain.ShowTime{
		ID:      firstString(record, "id", "showTimeId", "showtimeId"),
		MovieID: firstString(record, "movieId"),
	}

	if st.ID == "" {
		return st, fmt.Errorf("%w: id", errMissingField)
	}
	if st.MovieID == "" {
		st.MovieID = movieID
	}

	date, err := NormalizeDate(first(record, "date", "showDate"))
	if err != nil {
		return st, err
	}
	st.Date = date

	clock, err := NormalizeTime(firstString(record, "time", "showTime"))
	if err != nil {
		return st, err
	}
	st.Time = clock

	price, err := toDecimal(first(record, "price", "basePrice"))
	if err != nil {
		return st, fmt.Errorf("price: %w", err)
	}
	if price.IsNegative() {
		return st, fmt.Errorf("price: negative base price %s", price)
	}
	st.BasePrice = price

	st.ScreenNumber = toInt(first(record, "screenNumber", "showroomId"))
	st.AvailableSeats = toInt(first(record, "availableSeats", "availableSeatsCount"))

	if matrix, ok := toMatrix(record["seats"]); ok {
		grid, err := domain.NewSeatGrid(matrix)
		if err == nil {
			st.Grid = grid
		}
	}

	return st, nil
}

// NormalizeDate accepts ISO dates, RFC 3339 timestamps and epoch milliseconds
// and returns YYYY-MM-DD.
func NormalizeDate(v any) (string, error) {
	switch d := v.(type) {
	case string:
		d = strings.TrimSpace(d)
		if t, err := time.Parse(domain.DateLayout, d); err == nil {
			return t.Format(domain.DateLayout), nil
		}
		if t, err := time.Parse(time.RFC3339, d); err == nil {
			return t.Format(domain.DateLayout), nil
		}
		if len(d) > len(domain.DateLayout) {
			if t, err := time.Parse(domain.DateLayout, d[:len(domain.DateLayout)]); err == nil {
				return t.Format(domain.DateLayout), nil
			}
		}
		return "", fmt.Errorf("unrecognized date %q", d)
	case float64:
		return time.UnixMilli(int64(d)).UTC().Format(domain.DateLayout), nil
	case nil:
		return "", fmt.Errorf("%w: date", errMissingField)
	default:
		return "", fmt.Errorf("unrecognized date %v", v)
	}
}

var timeLayouts = []string{"15:04:05", "15:04", "3:04 PM", "3:04PM", "03:04 PM", "3:04:05 PM"}

// NormalizeTime accepts 24-hour and 12-hour clock strings and returns HH:MM.
func NormalizeTime(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", fmt.Errorf("%w: time", errMissingField)
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(domain.TimeLayout), nil
		}
	}

	return "", fmt.Errorf("unrecognized time %q", s)
}

func first(record map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := record[k]; ok && v != nil {
			return v
		}
	}

	return nil
}

func firstString(record map[string]any, keys ...string) string {
	switch v := first(record, keys...).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch p := v.(type) {
	case float64:
		return decimal.NewFromFloat(p), nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(p))
	case nil:
		return decimal.Zero, errMissingField
	default:
		return decimal.Zero, fmt.Errorf("unsupported price %v", v)
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(n))
		return i
	default:
		return 0
	}
}

func toMatrix(v any) ([][]bool, bool) {
	rows, ok := v.([]any)
	if !ok || len(rows) == 0 {
		return nil, false
	}

	matrix := make([][]bool, len(rows))
	for i, row := range rows {
		cells, ok := row.([]any)
		if !ok {
			return nil, false
		}

		matrix[i] = make([]bool, len(cells))
		for j, cell := range cells {
			b, ok := cell.(bool)
			if !ok {
				return nil, false
			}
			matrix[i][j] = b
		}
	}

	return matrix, true
}

func (a *Adapter) warn(msg string, args ...any) {
	if a == nil || a.logger == nil {
		return
	}

	a.logger.Warn(msg, args...)
}
