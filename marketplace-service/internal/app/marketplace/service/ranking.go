package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"servicehub/marketplace-service/internal/app/marketplace/entity"
	"servicehub/marketplace-service/internal/app/marketplace/repository"
	"servicehub/marketplace-service/internal/app/marketplace/util"
	"servicehub/pkg/logger"
	"servicehub/pkg/metrics"

	"github.com/google/uuid"
)

var (
	// ErrInvalidRanking - некорректные параметры ранжирования (окно или размер топа)
	ErrInvalidRanking = errors.New("invalid ranking parameters")
)

// AggregateReviews группирует отзывы по услугам за окно [now-window, now]
// и считает средний рейтинг и количество
// Чистая функция над снапшотом отзывов и часами - без стора она проверяется
// юнит-тестами, SQL-вариант GroupByService дает те же строки на горячем пути
// Порядок групп: по первому попавшему в окно отзыву услуги во входном срезе
// Услуги без отзывов в окне в результат не попадают - среднее пустой группы
// не определено
func AggregateReviews(reviews []entity.Review, now time.Time, window time.Duration) []entity.ReviewAggregate {
	cutoff := now.Add(-window)

	type group struct {
		sum   int
		count int
	}

	order := make([]uuid.UUID, 0)
	groups := make(map[uuid.UUID]*group)

	for _, rv := range reviews {
		if rv.CreatedAt.Before(cutoff) || rv.CreatedAt.After(now) {
			continue
		}

		g, ok := groups[rv.ServiceID]
		if !ok {
			g = &group{}
			groups[rv.ServiceID] = g
			order = append(order, rv.ServiceID)
		}
		g.sum += rv.Rating
		g.count++
	}

	aggregates := make([]entity.ReviewAggregate, 0, len(order))
	for _, serviceID := range order {
		g := groups[serviceID]
		aggregates = append(aggregates, entity.ReviewAggregate{
			ServiceID:   serviceID,
			AvgRating:   float64(g.sum) / float64(g.count),
			ReviewCount: g.count,
		})
	}

	return aggregates
}

// RankAggregates считает скор, сортирует и отбирает топ-n
// score = средний рейтинг * количество отзывов: один пятизвездочный отзыв
// не обгонит услугу со многими хорошими
// Сортировка стабильная: при равном скоре сохраняется порядок агрегации
// Rank проставляется здесь, до резолва услуг - выпавшая при резолве услуга
// не сдвигает позиции остальных
func RankAggregates(aggregates []entity.ReviewAggregate, n int) []entity.RankedAggregate {
	if n <= 0 {
		return nil
	}

	ranked := make([]entity.RankedAggregate, 0, len(aggregates))
	for _, agg := range aggregates {
		ranked = append(ranked, entity.RankedAggregate{
			ReviewAggregate: agg,
			Score:           agg.AvgRating * float64(agg.ReviewCount),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}

	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	return ranked
}

// RankingService строит топ услуг по недавним отзывам
// Двухфазное чтение (агрегация, потом резолв) допускает небольшую
// рассинхронизацию: услуга, снятая с публикации между фазами, молча
// выпадает из результата
type RankingService struct {
	serviceRepo repository.ServiceRepository
	reviewRepo  repository.ReviewRepository
	cache       util.RankingCache
	window      time.Duration
	topN        int
	cacheTTL    time.Duration
}

// NewRankingService создает сервис ранжирования
func NewRankingService(
	serviceRepo repository.ServiceRepository,
	reviewRepo repository.ReviewRepository,
	cache util.RankingCache,
	window time.Duration,
	topN int,
	cacheTTL time.Duration,
) *RankingService {
	return &RankingService{
		serviceRepo: serviceRepo,
		reviewRepo:  reviewRepo,
		cache:       cache,
		window:      window,
		topN:        topN,
		cacheTTL:    cacheTTL,
	}
}

// GetTopServices возвращает топ-N услуг по скору за окно агрегации
// Результат может быть короче N: услуги, не прошедшие резолв со статусом
// APPROVED, отбрасываются без ошибки
func (s *RankingService) GetTopServices(ctx context.Context) ([]entity.TopServiceResponse, error) {
	// Параметры проверены при загрузке конфига, но сервис не полагается
	// на это и не идет в стор с бессмысленным окном
	if s.window <= 0 || s.topN <= 0 {
		return nil, ErrInvalidRanking
	}

	// Пытаемся отдать из кеша
	cached, err := s.cache.GetTopServices(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read top services cache")
	}
	if err == nil && cached != nil {
		metrics.TopRankedRequests.WithLabelValues("cache").Inc()
		metrics.RecordCacheHit("marketplace", util.TopServicesCacheKey)
		return cached, nil
	}
	metrics.RecordCacheMiss("marketplace", util.TopServicesCacheKey)

	// Фаза 1: агрегация отзывов за окно
	createdAfter := time.Now().Add(-s.window)
	aggregates, err := s.reviewRepo.GroupByService(ctx, createdAfter)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate recent reviews: %w", err)
	}

	ranked := RankAggregates(aggregates, s.topN)

	// Фаза 2: резолв услуг топа, только опубликованные
	ids := make([]uuid.UUID, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.ServiceID)
	}

	services, err := s.serviceRepo.GetByIDs(ctx, ids, entity.ApprovalApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve top services: %w", err)
	}

	byID := make(map[uuid.UUID]entity.Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}

	top := make([]entity.TopServiceResponse, 0, len(ranked))
	for _, r := range ranked {
		svc, ok := byID[r.ServiceID]
		if !ok {
			// Услуга исчезла или снята с публикации между фазами - пропускаем
			continue
		}

		item := entity.TopServiceResponse{
			ServiceResponse: TransformService(svc),
			Score:           r.Score,
			Rank:            r.Rank,
		}
		// Рейтинг и количество в топе - оконные агрегаты,
		// а не денормализованные колонки услуги
		item.Rating = r.AvgRating
		item.ReviewCount = r.ReviewCount

		top = append(top, item)
	}

	metrics.TopRankedRequests.WithLabelValues("db").Inc()

	if err := s.cache.SetTopServices(ctx, top, s.cacheTTL); err != nil {
		// Топ уже собран, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("failed to cache top services")
	}

	return top, nil
}
