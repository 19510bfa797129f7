package mocks

import (
	"context"

	"github.com/metinatakli/cinema-storefront/internal/domain"
)

type MockCatalogGateway struct {
	domain.CatalogGateway
	GetMovieFunc     func(ctx context.Context, movieID string) (*domain.Movie, error)
	GetShowTimesFunc func(ctx context.Context, movieID string) ([]domain.ShowTime, error)
}

func (m *MockCatalogGateway) GetMovie(ctx context.Context, movieID string) (*domain.Movie, error) {
	return m.GetMovieFunc(ctx, movieID)
}

func (m *MockCatalogGateway) GetShowTimes(ctx context.Context, movieID string) ([]domain.ShowTime, error) {
	return m.GetShowTimesFunc(ctx, movieID)
}
