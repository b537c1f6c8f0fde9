package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockServiceRatingRepository - мок репозитория агрегатов рейтинга
type MockServiceRatingRepository struct {
	mock.Mock
}

func (m *MockServiceRatingRepository) RecalculateService(ctx context.Context, serviceID string) error {
	args := m.Called(ctx, serviceID)
	return args.Error(0)
}

func (m *MockServiceRatingRepository) RecalculateAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockCacheRepository - мок репозитория кеша
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) InvalidateTopServices(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
