package domain

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// CartTicket is one persisted line of the visitor's cart. Price is the line
// price and must always equal LinePrice(base, Category, Quantity).
type CartTicket struct {
	ID         string              `json:"id"`
	MovieID    string              `json:"movieId"`
	MovieTitle string              `json:"movieTitle"`
	ShowID     string              `json:"showId"`
	ShowDate   string              `json:"showDate"`
	ShowTime   string              `json:"showTime"`
	SeatRow    int                 `json:"seatRow"`
	SeatCol    int                 `json:"seatCol"`
	SeatLabel  string              `json:"seatLabel"`
	Category   TicketCategory      `json:"category"`
	Quantity   int                 `json:"quantity"`
	Price      decimal.Decimal     `json:"price"`
	BasePrice  decimal.NullDecimal `json:"basePrice"`
}

// UnitPrice is the per-seat price of the line.
func (t CartTicket) UnitPrice() decimal.Decimal {
	if t.Quantity <= 1 {
		return t.Price
	}

	return t.Price.Div(decimal.NewFromInt(int64(t.Quantity))).Round(pricePlaces)
}

type CartGroup struct {
	MovieTitle string
	ShowDate   string
	ShowTime   string
	Tickets    []CartTicket
}

// Cart is the ordered set of not-yet-booked tickets of one visitor.
type Cart struct {
	Tickets []CartTicket

	// adult base price per movie, for records persisted without BasePrice
	basePrices map[string]decimal.Decimal
}

func NewCart(tickets []CartTicket) *Cart {
	cart := &Cart{
		Tickets:    append([]CartTicket(nil), tickets...),
		basePrices: make(map[string]decimal.Decimal),
	}

	cart.trackBasePrices()

	return cart
}

func (c *Cart) trackBasePrices() {
	for _, t := range c.Tickets {
		if _, ok := c.basePrices[t.MovieID]; !ok && t.BasePrice.Valid {
			c.basePrices[t.MovieID] = t.BasePrice.Decimal
		}
	}

	for _, t := range c.Tickets {
		if _, ok := c.basePrices[t.MovieID]; !ok && t.Category == CategoryAdult {
			c.basePrices[t.MovieID] = t.UnitPrice()
		}
	}

	for _, t := range c.Tickets {
		if _, ok := c.basePrices[t.MovieID]; !ok {
			c.basePrices[t.MovieID] = BaseFromPrice(t.UnitPrice(), t.Category)
		}
	}
}

// BasePrice returns the adult base price tracked for a movie.
func (c *Cart) BasePrice(movieID string) (decimal.Decimal, bool) {
	base, ok := c.basePrices[movieID]
	return base, ok
}

func (c *Cart) baseFor(t CartTicket) decimal.Decimal {
	if t.BasePrice.Valid {
		return t.BasePrice.Decimal
	}

	return c.basePrices[t.MovieID]
}

func (c *Cart) Len() int {
	return len(c.Tickets)
}

func (c *Cart) IsEmpty() bool {
	return len(c.Tickets) == 0
}

func (c *Cart) Ticket(id string) (CartTicket, bool) {
	i := c.indexOf(id)
	if i < 0 {
		return CartTicket{}, false
	}

	return c.Tickets[i], true
}

func (c *Cart) indexOf(id string) int {
	for i, t := range c.Tickets {
		if t.ID == id {
			return i
		}
	}

	return -1
}

// Append replaces the tickets of showID with the given ones and keeps every
// ticket of other showtimes, so the cart can span several movies.
func (c *Cart) Append(showID string, tickets []CartTicket) {
	kept := c.Tickets[:0:0]
	for _, t := range c.Tickets {
		if t.ShowID != showID {
			kept = append(kept, t)
		}
	}

	c.Tickets = append(kept, tickets...)

	for _, t := range tickets {
		if _, ok := c.basePrices[t.MovieID]; !ok && t.BasePrice.Valid {
			c.basePrices[t.MovieID] = t.BasePrice.Decimal
		}
	}
}

// UpdateQuantity adds delta to the ticket quantity, never going below one.
func (c *Cart) UpdateQuantity(id string, delta int) (CartTicket, error) {
	i := c.indexOf(id)
	if i < 0 {
		return CartTicket{}, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
	}

	t := &c.Tickets[i]
	t.Quantity = max(1, t.Quantity+delta)
	t.Price = LinePrice(c.baseFor(*t), t.Category, t.Quantity)

	return *t, nil
}

// UpdateCategory reprices the ticket from the tracked adult base price, so
// repeated switches never accumulate rounding error.
func (c *Cart) UpdateCategory(id string, category TicketCategory) (CartTicket, error) {
	if !category.Valid() {
		return CartTicket{}, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	i := c.indexOf(id)
	if i < 0 {
		return CartTicket{}, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
	}

	t := &c.Tickets[i]
	t.Category = category
	t.Price = LinePrice(c.baseFor(*t), t.Category, t.Quantity)

	return *t, nil
}

func (c *Cart) Remove(id string) error {
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTicketNotFound, id)
	}

	c.Tickets = append(c.Tickets[:i:i], c.Tickets[i+1:]...)

	return nil
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, t := range c.Tickets {
		total = total.Add(t.Price)
	}

	return total
}

// Groups buckets tickets by movie title and showtime in first-seen order.
func (c *Cart) Groups() []CartGroup {
	var groups []CartGroup
	index := make(map[[3]string]int)

	for _, t := range c.Tickets {
		key := [3]string{t.MovieTitle, t.ShowDate, t.ShowTime}

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, CartGroup{
				MovieTitle: t.MovieTitle,
				ShowDate:   t.ShowDate,
				ShowTime:   t.ShowTime,
			})
		}

		groups[i].Tickets = append(groups[i].Tickets, t)
	}

	return groups
}

// Materialize converts a seat selection into cart tickets for the showtime.
// Ticket ids are derived from movie, seat and a sequence index that is unique
// within the cart after the showtime's previous tickets are replaced.
func Materialize(movie *Movie, showTime ShowTime, selection *SeatSelection, cart *Cart) []CartTicket {
	existing := 0
	taken := make(map[string]bool)

	for _, t := range cart.Tickets {
		if t.ShowID == showTime.ID {
			continue
		}
		existing++
		taken[t.ID] = true
	}

	seats := selection.Seats()
	tickets := make([]CartTicket, 0, len(seats))

	seq := existing
	for _, seat := range seats {
		id := ticketID(movie.ID, seat.Row, seat.Col, seq)
		for taken[id] {
			seq++
			id = ticketID(movie.ID, seat.Row, seat.Col, seq)
		}
		taken[id] = true
		seq++

		tickets = append(tickets, CartTicket{
			ID:         id,
			MovieID:    movie.ID,
			MovieTitle: movie.Title,
			ShowID:     showTime.ID,
			ShowDate:   showTime.Date,
			ShowTime:   showTime.Time,
			SeatRow:    seat.Row,
			SeatCol:    seat.Col,
			SeatLabel:  SeatLabel(seat.Row, seat.Col),
			Category:   seat.Category,
			Quantity:   1,
			Price:      PriceFor(showTime.BasePrice, seat.Category),
			BasePrice:  decimal.NewNullDecimal(showTime.BasePrice),
		})
	}

	return tickets
}

func ticketID(movieID string, row, col, seq int) string {
	return fmt.Sprintf("%s-%d-%d-%d", movieID, row, col, seq)
}

// CartStore persists a visitor's cart. Load must treat a missing or corrupt
// record as an empty cart.
type CartStore interface {
	Load(ctx context.Context, ownerID string) (*Cart, error)
	Save(ctx context.Context, ownerID string, cart *Cart) error
	Clear(ctx context.Context, ownerID string) error
}
