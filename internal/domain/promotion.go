package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Promotion struct {
	ID                 int
	Code               string
	DiscountPercentage decimal.Decimal
	Description        string
	CreationDate       time.Time
	Sent               bool
}

// MarkSent records that the promotion email blast went out. The flag never
// goes back to false.
func (p *Promotion) MarkSent() error {
	if p.Sent {
		return ErrPromotionSent
	}

	p.Sent = true
	return nil
}

// AppliedPromotion is the single promotion applied to a visitor's order.
type AppliedPromotion struct {
	Code               string
	DiscountPercentage decimal.Decimal
}

// ApplyDiscount takes percentage off amount. The result never drops below zero,
// even for percentages above 100.
func ApplyDiscount(amount, percentage decimal.Decimal) decimal.Decimal {
	if !percentage.IsPositive() {
		return amount
	}

	discounted := amount.Sub(amount.Mul(percentage).Div(hundred)).Round(pricePlaces)
	if discounted.IsNegative() {
		return decimal.Zero
	}

	return discounted
}

type PromotionGateway interface {
	ValidatePromotion(ctx context.Context, code string) (*AppliedPromotion, error)
	ListPromotions(ctx context.Context, token string) ([]Promotion, error)
	CreatePromotion(ctx context.Context, token string, promotion Promotion) (*Promotion, error)
	DeletePromotion(ctx context.Context, token string, promotionID int) error
	SendPromotion(ctx context.Context, token string, promotionID int) error
}
