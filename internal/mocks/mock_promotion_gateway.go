package mocks

import (
	"context"

	"github.com/metinatakli/cinema-storefront/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockPromotionGateway struct {
	mock.Mock
	domain.PromotionGateway
}

func (m *MockPromotionGateway) ValidatePromotion(ctx context.Context, code string) (*domain.AppliedPromotion, error) {
	args := m.Called(ctx, code)

	var promotion *domain.AppliedPromotion
	if v := args.Get(0); v != nil {
		promotion = v.(*domain.AppliedPromotion)
	}

	return promotion, args.Error(1)
}

func (m *MockPromotionGateway) ListPromotions(ctx context.Context, token string) ([]domain.Promotion, error) {
	args := m.Called(ctx, token)

	var promotions []domain.Promotion
	if v := args.Get(0); v != nil {
		promotions = v.([]domain.Promotion)
	}

	return promotions, args.Error(1)
}

func (m *MockPromotionGateway) CreatePromotion(ctx context.Context, token string, promotion domain.Promotion) (*domain.Promotion, error) {
	args := m.Called(ctx, token, promotion)

	var created *domain.Promotion
	if v := args.Get(0); v != nil {
		created = v.(*domain.Promotion)
	}

	return created, args.Error(1)
}

func (m *MockPromotionGateway) DeletePromotion(ctx context.Context, token string, promotionID int) error {
	args := m.Called(ctx, token, promotionID)
	return args.Error(0)
}

func (m *MockPromotionGateway) SendPromotion(ctx context.Context, token string, promotionID int) error {
	args := m.Called(ctx, token, promotionID)
	return args.Error(0)
}
