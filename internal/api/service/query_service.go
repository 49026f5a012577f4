package service

import (
	"context"
	"fmt"
	"time"

	"golang-crypto-picker/internal/api/dto"
	"golang-crypto-picker/internal/entity"
	"golang-crypto-picker/internal/pipeline/repository"
	"golang-crypto-picker/pkg/logger"
	"golang-crypto-picker/pkg/utils"

	"github.com/patrickmn/go-cache"
)

const (
	cacheKeyLatestMetrics = "latest_metrics"
	cacheKeyModelHistory  = "model_history"
)

// QueryService serves the read-only dashboard queries. All writes happen in
// the pipeline binary; this service only aggregates what is already stored.
type QueryService interface {
	GetLatestMetrics(ctx context.Context) (*dto.LatestMetrics, error)
	GetRecentTrades(ctx context.Context, limit int) ([]entity.Trade, error)
	GetPendingTrades(ctx context.Context) ([]entity.Trade, error)
	GetModelHistory(ctx context.Context) ([]dto.ModelHistoryEntry, error)
	GetCurrentVersion(ctx context.Context) (*dto.CurrentVersion, error)
}

type queryService struct {
	tradeRepo    repository.TradeRepository
	modelRepo    repository.ModelVersionRepository
	backtestRepo repository.BacktestResultRepository
	cache        *cache.Cache
	logger       *logger.Logger
}

// NewQueryService creates a new QueryService with a short-lived in-process
// cache in front of the aggregate queries.
func NewQueryService(
	tradeRepo repository.TradeRepository,
	modelRepo repository.ModelVersionRepository,
	backtestRepo repository.BacktestResultRepository,
	cacheTTL time.Duration,
	log *logger.Logger,
) QueryService {
	return &queryService{
		tradeRepo:    tradeRepo,
		modelRepo:    modelRepo,
		backtestRepo: backtestRepo,
		cache:        cache.New(cacheTTL, 2*cacheTTL),
		logger:       log,
	}
}

func (s *queryService) GetLatestMetrics(ctx context.Context) (*dto.LatestMetrics, error) {
	if cached, found := s.cache.Get(cacheKeyLatestMetrics); found {
		return cached.(*dto.LatestMetrics), nil
	}

	current, err := s.modelRepo.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}

	avgReturn, count, err := s.tradeRepo.AggregateCompleted(ctx)
	if err != nil {
		return nil, err
	}

	metrics := &dto.LatestMetrics{
		CurrentVersion: current,
		LiveAvgReturn:  avgReturn,
		LiveTradeCount: count,
	}

	result, err := s.backtestRepo.FindLatestForVersion(ctx, current)
	if err != nil {
		return nil, err
	}
	if result != nil {
		start := utils.FormatDate(result.WindowStart)
		end := utils.FormatDate(result.WindowEnd)
		metrics.SpearmanCorrelation = &result.SpearmanCorrelation
		metrics.AvgDailyReturn = &result.AvgDailyReturn
		metrics.WindowStart = &start
		metrics.WindowEnd = &end
		metrics.EvaluatedAt = &result.EvaluatedAt
	}

	s.cache.Set(cacheKeyLatestMetrics, metrics, cache.DefaultExpiration)
	return metrics, nil
}

func (s *queryService) GetRecentTrades(ctx context.Context, limit int) ([]entity.Trade, error) {
	return s.tradeRepo.FindRecentCompleted(ctx, limit)
}

func (s *queryService) GetPendingTrades(ctx context.Context) ([]entity.Trade, error) {
	return s.tradeRepo.FindPending(ctx)
}

func (s *queryService) GetModelHistory(ctx context.Context) ([]dto.ModelHistoryEntry, error) {
	if cached, found := s.cache.Get(cacheKeyModelHistory); found {
		return cached.([]dto.ModelHistoryEntry), nil
	}

	versions, err := s.modelRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	history := make([]dto.ModelHistoryEntry, 0, len(versions))
	for _, v := range versions {
		history = append(history, dto.ModelHistoryEntry{
			Version:            v.Version,
			ParentVersion:      v.ParentVersion,
			Expression:         string(v.Expression),
			PromotionSpearman:  v.PromotionSpearman,
			PromotionAvgReturn: v.PromotionAvgReturn,
			CreatedAt:          v.CreatedAt,
		})
	}

	s.cache.Set(cacheKeyModelHistory, history, cache.DefaultExpiration)
	return history, nil
}

func (s *queryService) GetCurrentVersion(ctx context.Context) (*dto.CurrentVersion, error) {
	current, err := s.modelRepo.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}
	version, err := s.modelRepo.FindByVersion(ctx, current)
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, fmt.Errorf("model version %d not found in ledger", current)
	}
	return &dto.CurrentVersion{Version: version.Version, CreatedAt: version.CreatedAt}, nil
}
