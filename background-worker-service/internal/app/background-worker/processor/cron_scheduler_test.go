package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// ===================== NewCronScheduler Tests =====================

func TestNewCronScheduler(t *testing.T) {
	// Arrange
	ratingSvc := new(MockRatingService)

	// Act
	scheduler := NewCronScheduler(ratingSvc)

	// Assert
	assert.NotNil(t, scheduler)
	assert.NotNil(t, scheduler.cron)
	assert.Equal(t, ratingSvc, scheduler.ratingSvc)
}

// ===================== Start Tests =====================

func TestCronScheduler_Start_Success(t *testing.T) {
	// Arrange
	ratingSvc := new(MockRatingService)
	scheduler := NewCronScheduler(ratingSvc)

	ctx := context.Background()

	// Первичная сверка при старте
	ratingSvc.On("ReconcileAll", mock.Anything).Return(nil)

	// Act - расписание с секундами: каждый час
	err := scheduler.Start(ctx, "0 0 * * * *")

	// Assert
	assert.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 1)

	// Cleanup
	scheduler.Stop()
	ratingSvc.AssertExpectations(t)
}

func TestCronScheduler_Start_InvalidSchedule(t *testing.T) {
	// Arrange
	ratingSvc := new(MockRatingService)
	scheduler := NewCronScheduler(ratingSvc)

	ctx := context.Background()

	// Act
	err := scheduler.Start(ctx, "invalid cron expression")

	// Assert
	assert.Error(t, err)
}

func TestCronScheduler_Start_InitialReconcileError_ContinuesWork(t *testing.T) {
	// Arrange
	ratingSvc := new(MockRatingService)
	scheduler := NewCronScheduler(ratingSvc)

	ctx := context.Background()

	// Первичная сверка падает, но scheduler продолжает работать
	ratingSvc.On("ReconcileAll", mock.Anything).Return(errors.New("db unavailable"))

	// Act
	err := scheduler.Start(ctx, "0 0 * * * *")

	// Assert
	assert.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 1)

	// Cleanup
	scheduler.Stop()
}

// ===================== GetEntries Tests =====================

func TestCronScheduler_GetEntries_Empty(t *testing.T) {
	// Arrange
	ratingSvc := new(MockRatingService)
	scheduler := NewCronScheduler(ratingSvc)

	// Act
	entries := scheduler.GetEntries()

	// Assert
	assert.Empty(t, entries)
}

// ===================== Cron Job Execution Tests =====================

func TestCronScheduler_JobExecution(t *testing.T) {
	// Arrange
	ratingSvc := new(MockRatingService)
	scheduler := NewCronScheduler(ratingSvc)

	ctx := context.Background()

	ratingSvc.On("ReconcileAll", mock.Anything).Return(nil)

	// robfig/cron округляет @every < 1s вверх до секунды, поэтому 1s + запас
	err := scheduler.Start(ctx, "@every 1s")
	assert.NoError(t, err)

	// Ждем срабатывания cron job
	time.Sleep(2500 * time.Millisecond)

	// Cleanup
	scheduler.Stop()

	// Assert - минимум 2 вызова: первичная сверка + срабатывания по расписанию
	assert.GreaterOrEqual(t, len(ratingSvc.Calls), 2)
}

func TestCronScheduler_JobExecution_WithError(t *testing.T) {
	// Cron job продолжает работать несмотря на ошибки сверки
	// Arrange
	ratingSvc := new(MockRatingService)
	scheduler := NewCronScheduler(ratingSvc)

	ctx := context.Background()

	ratingSvc.On("ReconcileAll", mock.Anything).Return(errors.New("db error"))

	err := scheduler.Start(ctx, "@every 1s")
	assert.NoError(t, err)

	time.Sleep(2500 * time.Millisecond)

	scheduler.Stop()

	// Assert
	assert.GreaterOrEqual(t, len(ratingSvc.Calls), 2)
}
