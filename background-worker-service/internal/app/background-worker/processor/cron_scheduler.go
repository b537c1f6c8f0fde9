package processor

import (
	"context"

	"servicehub/background-worker-service/internal/app/background-worker/service"
	"servicehub/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CronScheduler запускает периодическую сверку агрегатов рейтинга
type CronScheduler struct {
	cron      *cron.Cron
	ratingSvc service.RatingServiceInterface
}

func NewCronScheduler(ratingSvc service.RatingServiceInterface) *CronScheduler {
	// Расписание с секундами, как в конфиге по умолчанию
	c := cron.New(cron.WithSeconds())

	return &CronScheduler{
		cron:      c,
		ratingSvc: ratingSvc,
	}
}

func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting cron scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		logger.Info().Msg("Cron job triggered: reconciling service ratings")

		if err := s.ratingSvc.ReconcileAll(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to reconcile service ratings")
		}
	})

	if err != nil {
		return err
	}

	s.cron.Start()

	// Первичная сверка при старте: worker мог пропустить события пока не работал
	logger.Info().Msg("Performing initial rating reconciliation")
	if err := s.ratingSvc.ReconcileAll(ctx); err != nil {
		logger.Warn().Err(err).Msg("Initial rating reconciliation failed")
	}

	return nil
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
