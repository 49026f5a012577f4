package service

import (
	"context"
	"testing"
	"time"

	"golang-crypto-picker/internal/entity"
	"golang-crypto-picker/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type stubTradeRepo struct {
	aggCalls  int
	avgReturn float64
	count     int64
	recent    []entity.Trade
	pending   []entity.Trade
}

func (s *stubTradeRepo) Create(ctx context.Context, trade *entity.Trade) error { return nil }
func (s *stubTradeRepo) Update(ctx context.Context, trade *entity.Trade) error { return nil }
func (s *stubTradeRepo) FindByDate(ctx context.Context, date time.Time) (*entity.Trade, error) {
	return nil, nil
}
func (s *stubTradeRepo) FindRecentCompleted(ctx context.Context, limit int) ([]entity.Trade, error) {
	if len(s.recent) > limit {
		return s.recent[:limit], nil
	}
	return s.recent, nil
}
func (s *stubTradeRepo) FindPending(ctx context.Context) ([]entity.Trade, error) {
	return s.pending, nil
}
func (s *stubTradeRepo) AggregateCompleted(ctx context.Context) (float64, int64, error) {
	s.aggCalls++
	return s.avgReturn, s.count, nil
}

type stubModelRepo struct {
	current  int64
	versions map[int64]*entity.ModelVersion
	allCalls int
}

func (s *stubModelRepo) Create(ctx context.Context, version *entity.ModelVersion) error { return nil }
func (s *stubModelRepo) FindByVersion(ctx context.Context, version int64) (*entity.ModelVersion, error) {
	return s.versions[version], nil
}
func (s *stubModelRepo) FindAll(ctx context.Context) ([]entity.ModelVersion, error) {
	s.allCalls++
	var all []entity.ModelVersion
	for _, v := range s.versions {
		all = append(all, *v)
	}
	return all, nil
}
func (s *stubModelRepo) MaxVersion(ctx context.Context) (int64, error)     { return s.current, nil }
func (s *stubModelRepo) CurrentVersion(ctx context.Context) (int64, error) { return s.current, nil }
func (s *stubModelRepo) SetCurrentVersion(ctx context.Context, expected, next int64) error {
	return nil
}

type stubBacktestRepo struct {
	latest *entity.BacktestResult
}

func (s *stubBacktestRepo) Create(ctx context.Context, result *entity.BacktestResult) error {
	return nil
}
func (s *stubBacktestRepo) FindLatestForVersion(ctx context.Context, version int64) (*entity.BacktestResult, error) {
	return s.latest, nil
}
func (s *stubBacktestRepo) FindLatestForCandidate(ctx context.Context, candidateID int64) (*entity.BacktestResult, error) {
	return nil, nil
}
func (s *stubBacktestRepo) FindLatest(ctx context.Context) (*entity.BacktestResult, error) {
	return s.latest, nil
}

func nopLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func TestGetLatestMetrics(t *testing.T) {
	tradeRepo := &stubTradeRepo{avgReturn: 0.42, count: 37}
	modelRepo := &stubModelRepo{current: 3, versions: map[int64]*entity.ModelVersion{
		3: {Version: 3, Expression: datatypes.JSON(`{"field":"return_24h"}`), CreatedAt: time.Now()},
	}}
	start, _ := time.Parse("2006-01-02", "2026-01-01")
	end, _ := time.Parse("2006-01-02", "2026-06-29")
	backtestRepo := &stubBacktestRepo{latest: &entity.BacktestResult{
		WindowStart: start, WindowEnd: end,
		SpearmanCorrelation: 0.31, AvgDailyReturn: 0.55,
		EvaluatedAt: time.Now(),
	}}

	svc := NewQueryService(tradeRepo, modelRepo, backtestRepo, time.Minute, nopLogger())

	metrics, err := svc.GetLatestMetrics(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, metrics.CurrentVersion)
	assert.Equal(t, 0.42, metrics.LiveAvgReturn)
	assert.EqualValues(t, 37, metrics.LiveTradeCount)
	require.NotNil(t, metrics.SpearmanCorrelation)
	assert.Equal(t, 0.31, *metrics.SpearmanCorrelation)
	require.NotNil(t, metrics.WindowStart)
	assert.Equal(t, "2026-01-01", *metrics.WindowStart)

	// Second read is served from cache.
	_, err = svc.GetLatestMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, tradeRepo.aggCalls)
}

func TestGetLatestMetricsWithoutBacktest(t *testing.T) {
	tradeRepo := &stubTradeRepo{}
	modelRepo := &stubModelRepo{current: 1, versions: map[int64]*entity.ModelVersion{}}

	svc := NewQueryService(tradeRepo, modelRepo, &stubBacktestRepo{}, time.Minute, nopLogger())

	metrics, err := svc.GetLatestMetrics(context.Background())
	require.NoError(t, err)
	assert.Nil(t, metrics.SpearmanCorrelation)
	assert.Nil(t, metrics.WindowStart)
}

func TestGetModelHistoryCached(t *testing.T) {
	modelRepo := &stubModelRepo{current: 2, versions: map[int64]*entity.ModelVersion{
		1: {Version: 1, Expression: datatypes.JSON(`{"field":"return_24h"}`)},
		2: {Version: 2, Expression: datatypes.JSON(`{"field":"return_6h"}`)},
	}}

	svc := NewQueryService(&stubTradeRepo{}, modelRepo, &stubBacktestRepo{}, time.Minute, nopLogger())

	history, err := svc.GetModelHistory(context.Background())
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, err = svc.GetModelHistory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, modelRepo.allCalls)
}

func TestGetCurrentVersion(t *testing.T) {
	modelRepo := &stubModelRepo{current: 5, versions: map[int64]*entity.ModelVersion{
		5: {Version: 5, CreatedAt: time.Now()},
	}}

	svc := NewQueryService(&stubTradeRepo{}, modelRepo, &stubBacktestRepo{}, time.Minute, nopLogger())

	version, err := svc.GetCurrentVersion(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 5, version.Version)
}
