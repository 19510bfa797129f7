package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type TicketCategory string

const (
	CategoryAdult  TicketCategory = "adult"
	CategoryChild  TicketCategory = "child"
	CategorySenior TicketCategory = "senior"
)

// pricePlaces is the number of decimal places every derived price is rounded to.
const pricePlaces = 2

var (
	childMultiplier  = decimal.RequireFromString("0.90")
	seniorMultiplier = decimal.RequireFromString("0.95")
)

var ticketCategories = []TicketCategory{CategoryAdult, CategoryChild, CategorySenior}

// TicketCategories returns the fare classes in display order.
func TicketCategories() []TicketCategory {
	categories := make([]TicketCategory, len(ticketCategories))
	copy(categories, ticketCategories)
	return categories
}

func ParseTicketCategory(s string) (TicketCategory, error) {
	category := TicketCategory(strings.ToLower(strings.TrimSpace(s)))
	if !category.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}

	return category, nil
}

func (c TicketCategory) Valid() bool {
	switch c {
	case CategoryAdult, CategoryChild, CategorySenior:
		return true
	default:
		return false
	}
}

func (c TicketCategory) String() string {
	return string(c)
}

// Multiplier is the fraction of the adult base price charged for the category.
func (c TicketCategory) Multiplier() decimal.Decimal {
	switch c {
	case CategoryChild:
		return childMultiplier
	case CategorySenior:
		return seniorMultiplier
	default:
		return decimal.NewFromInt(1)
	}
}

// PriceFor maps an adult base price to the per-seat price of the category.
// Adult tickets are charged the base price unchanged.
func PriceFor(base decimal.Decimal, category TicketCategory) decimal.Decimal {
	if category == CategoryAdult {
		return base
	}

	return base.Mul(category.Multiplier()).Round(pricePlaces)
}

// LinePrice is the price of quantity seats of the same category.
func LinePrice(base decimal.Decimal, category TicketCategory, quantity int) decimal.Decimal {
	return PriceFor(base, category).Mul(decimal.NewFromInt(int64(quantity))).Round(pricePlaces)
}

// BaseFromPrice recovers the adult base price from a per-seat price that was
// derived with PriceFor.
func BaseFromPrice(price decimal.Decimal, category TicketCategory) decimal.Decimal {
	if category == CategoryAdult {
		return price
	}

	return price.Div(category.Multiplier()).Round(pricePlaces)
}
