package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/metinatakli/cinema-storefront/internal/domain"
	"github.com/shopspring/decimal"
)

const invalidPromotionMessage = "Invalid or unavailable promotion code."

type promotionRecord struct {
	PromotionID        int             `json:"promotionId"`
	Code               string          `json:"code"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	Description        string          `json:"description"`
	CreationDate       any             `json:"creationDate,omitempty"`
	Sent               bool            `json:"sent"`
}

func (p promotionRecord) toDomain() domain.Promotion {
	return domain.Promotion{
		ID:                 p.PromotionID,
		Code:               p.Code,
		DiscountPercentage: p.DiscountPercentage,
		Description:        p.Description,
		CreationDate:       parseCreationDate(p.CreationDate),
		Sent:               p.Sent,
	}
}

func parseCreationDate(v any) time.Time {
	switch d := v.(type) {
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", domain.DateLayout} {
			if t, err := time.Parse(layout, d); err == nil {
				return t
			}
		}
	case float64:
		return time.UnixMilli(int64(d)).UTC()
	}

	return time.Time{}
}

// ValidatePromotion asks the backend whether code is redeemable. The code is
// sent as typed; matching is case-sensitive.
func (c *Client) ValidatePromotion(ctx context.Context, code string) (*domain.AppliedPromotion, error) {
	resp, err := c.do(ctx, http.MethodGet, "/promotions/validate/"+url.PathEscape(code), "", nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		DiscountPercentage *decimal.Decimal `json:"discountPercentage"`
		Error              string           `json:"error"`
	}

	if err := json.Unmarshal(resp.body, &body); err != nil {
		status := resp.status
		if resp.ok() {
			status = http.StatusBadGateway
		}

		return nil, &UpstreamError{
			Op:      "validate promotion",
			Status:  status,
			Message: "Backend error: " + resp.text(),
			Err:     domain.ErrPromotionInvalid,
		}
	}

	if !resp.ok() {
		message := body.Error
		if message == "" {
			message = invalidPromotionMessage
		}

		return nil, &UpstreamError{
			Op:      "validate promotion",
			Status:  resp.status,
			Message: message,
			Err:     domain.ErrPromotionInvalid,
		}
	}

	if body.DiscountPercentage == nil || !body.DiscountPercentage.IsPositive() {
		return nil, &UpstreamError{
			Op:      "validate promotion",
			Status:  http.StatusBadGateway,
			Message: invalidPromotionMessage,
			Err:     domain.ErrPromotionInvalid,
		}
	}

	return &domain.AppliedPromotion{
		Code:               code,
		DiscountPercentage: *body.DiscountPercentage,
	}, nil
}

func (c *Client) ListPromotions(ctx context.Context, token string) ([]domain.Promotion, error) {
	resp, err := c.do(ctx, http.MethodGet, "/promotions/admin/all", token, nil)
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		return nil, upstreamError("list promotions", resp)
	}

	var records []promotionRecord
	if err := json.Unmarshal(resp.body, &records); err != nil {
		c.logger.Warn("promotion list payload is not an array", "error", err)
		return []domain.Promotion{}, nil
	}

	promotions := make([]domain.Promotion, len(records))
	for i, r := range records {
		promotions[i] = r.toDomain()
	}

	return promotions, nil
}

func (c *Client) CreatePromotion(ctx context.Context, token string, promotion domain.Promotion) (*domain.Promotion, error) {
	payload := struct {
		Code               string      `json:"code"`
		DiscountPercentage json.Number `json:"discountPercentage"`
		Description        string      `json:"description"`
	}{
		Code:               promotion.Code,
		DiscountPercentage: json.Number(promotion.DiscountPercentage.String()),
		Description:        promotion.Description,
	}

	resp, err := c.do(ctx, http.MethodPost, "/promotions/admin/create", token, payload)
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		return nil, upstreamError("create promotion", resp)
	}

	var body struct {
		Promotion *promotionRecord `json:"promotion"`
	}
	if err := json.Unmarshal(resp.body, &body); err != nil || body.Promotion == nil {
		return nil, fmt.Errorf("create promotion: unexpected response %q", resp.text())
	}

	created := body.Promotion.toDomain()

	return &created, nil
}

func (c *Client) DeletePromotion(ctx context.Context, token string, promotionID int) error {
	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/promotions/admin/delete/%d", promotionID), token, nil)
	if err != nil {
		return err
	}

	if !resp.ok() {
		return upstreamError("delete promotion", resp)
	}

	return nil
}

func (c *Client) SendPromotion(ctx context.Context, token string, promotionID int) error {
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/promotions/admin/send/%d", promotionID), token, nil)
	if err != nil {
		return err
	}

	if !resp.ok() {
		return upstreamError("send promotion", resp)
	}

	return nil
}
