package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang-crypto-picker/internal/entity"
	"golang-crypto-picker/internal/pipeline/config"
	"golang-crypto-picker/internal/pipeline/repository"
	"golang-crypto-picker/internal/scoring"
	"golang-crypto-picker/pkg/logger"
	"golang-crypto-picker/pkg/stats"
	"golang-crypto-picker/pkg/utils"
)

// BacktestService replays a scoring function over a historical window and
// persists the aggregate metrics. Evaluation is read-only apart from the
// appended BacktestResult.
type BacktestService interface {
	EvaluateVersion(ctx context.Context, version int64, start, end time.Time) (*entity.BacktestResult, error)
	EvaluateCandidate(ctx context.Context, candidateID int64, start, end time.Time) (*entity.BacktestResult, error)
}

type backtestService struct {
	cfg             *config.Config
	historicalStore repository.HistoricalStoreRepository
	modelRepo       repository.ModelVersionRepository
	candidateRepo   repository.CandidateRepository
	resultRepo      repository.BacktestResultRepository
	logger          *logger.Logger
}

// NewBacktestService creates a new backtester.
func NewBacktestService(
	cfg *config.Config,
	historicalStore repository.HistoricalStoreRepository,
	modelRepo repository.ModelVersionRepository,
	candidateRepo repository.CandidateRepository,
	resultRepo repository.BacktestResultRepository,
	log *logger.Logger,
) BacktestService {
	return &backtestService{
		cfg:             cfg,
		historicalStore: historicalStore,
		modelRepo:       modelRepo,
		candidateRepo:   candidateRepo,
		resultRepo:      resultRepo,
		logger:          log,
	}
}

// EvaluateVersion backtests a promoted model version.
func (s *backtestService) EvaluateVersion(ctx context.Context, version int64, start, end time.Time) (*entity.BacktestResult, error) {
	model, err := s.modelRepo.FindByVersion(ctx, version)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, fmt.Errorf("model version %d not found", version)
	}
	expr, err := scoring.Decode(model.Expression)
	if err != nil {
		return nil, fmt.Errorf("model version %d carries an undecodable expression: %w", version, err)
	}

	result, err := s.evaluate(ctx, expr, start, end)
	if err != nil {
		return nil, err
	}
	result.ModelVersion = &version
	if err := s.resultRepo.Create(ctx, result); err != nil {
		return nil, err
	}
	s.logResult("version", version, result)
	return result, nil
}

// EvaluateCandidate backtests a validated advisor candidate.
func (s *backtestService) EvaluateCandidate(ctx context.Context, candidateID int64, start, end time.Time) (*entity.BacktestResult, error) {
	candidate, err := s.candidateRepo.FindByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, fmt.Errorf("candidate %d not found", candidateID)
	}
	if candidate.Status != entity.CandidateStatusValidated {
		return nil, fmt.Errorf("candidate %d has status %q, want %q", candidateID, candidate.Status, entity.CandidateStatusValidated)
	}
	expr, err := scoring.Decode(candidate.Expression)
	if err != nil {
		return nil, fmt.Errorf("candidate %d carries an undecodable expression: %w", candidateID, err)
	}

	result, err := s.evaluate(ctx, expr, start, end)
	if err != nil {
		return nil, err
	}
	result.CandidateID = &candidateID
	if err := s.resultRepo.Create(ctx, result); err != nil {
		return nil, err
	}
	s.logResult("candidate", candidateID, result)
	return result, nil
}

// dayMetrics is the replay output for one complete historical day.
type dayMetrics struct {
	predictedRanks []float64
	actualRanks    []float64
	topPickReturn  float64
}

// evaluate replays the expression over every complete day in the window and
// pools the per-day rank pairs into one Spearman correlation. Nothing is
// persisted here.
func (s *backtestService) evaluate(ctx context.Context, expr *scoring.Node, start, end time.Time) (*entity.BacktestResult, error) {
	window, err := s.historicalStore.GetWindow(ctx, start, end)
	if err != nil {
		return nil, err
	}

	universe := s.cfg.Pipeline.Universe
	var days []time.Time
	for day, records := range window {
		complete := true
		for _, symbol := range universe {
			if _, ok := records[symbol]; !ok {
				complete = false
				break
			}
		}
		if complete {
			days = append(days, day)
		}
	}
	sort.Slice(days, func(a, b int) bool { return days[a].Before(days[b]) })

	if len(days) < s.cfg.Pipeline.MinCompleteDays {
		return nil, fmt.Errorf("%w: %d complete days in %s..%s, need %d",
			entity.ErrInsufficientHistory,
			len(days), utils.FormatDate(start), utils.FormatDate(end), s.cfg.Pipeline.MinCompleteDays)
	}

	// Per-day replay is read-only, so days fan out over a bounded worker
	// pool; each worker writes only its own slice index.
	perDay := make([]dayMetrics, len(days))
	errs := make([]error, len(days))
	jobs := make(chan int)

	workers := s.cfg.Pipeline.BacktestWorkers
	if workers > len(days) {
		workers = len(days)
	}
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				perDay[i], errs[i] = s.replayDay(expr, window[days[i]], universe)
			}
		}()
	}
	for i := range days {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("replaying %s: %w", utils.FormatDate(days[i]), err)
		}
	}

	var predicted, actual, topReturns []float64
	for _, dm := range perDay {
		predicted = append(predicted, dm.predictedRanks...)
		actual = append(actual, dm.actualRanks...)
		topReturns = append(topReturns, dm.topPickReturn)
	}

	return &entity.BacktestResult{
		WindowStart:         utils.TruncateToDay(start),
		WindowEnd:           utils.TruncateToDay(end),
		SpearmanCorrelation: stats.Spearman(predicted, actual),
		AvgDailyReturn:      stats.Mean(topReturns),
		SampleSize:          len(days),
		EvaluatedAt:         utils.TimeNowUTC(),
	}, nil
}

// replayDay recomputes the ranking for one historical day and pairs it with
// the ordering induced by realized returns.
func (s *backtestService) replayDay(expr *scoring.Node, records map[string]repository.DayRecord, universe []string) (dayMetrics, error) {
	features := make(map[string]map[string]float64, len(records))
	for symbol, rec := range records {
		features[symbol] = rec.Features
	}

	predicted, err := scoring.RankAll(expr, features, universe)
	if err != nil {
		return dayMetrics{}, err
	}
	predictedRank := make(map[string]int, len(predicted))
	for _, sc := range predicted {
		predictedRank[sc.Symbol] = sc.Rank
	}

	// Realized returns are ranked best-first like the predicted side, but
	// tied returns share their average rank rather than an arbitrary order.
	negated := make([]float64, len(universe))
	for i, symbol := range universe {
		negated[i] = -records[symbol].RealizedReturn
	}

	dm := dayMetrics{
		predictedRanks: make([]float64, len(universe)),
		actualRanks:    stats.Ranks(negated),
		topPickReturn:  records[predicted[0].Symbol].RealizedReturn,
	}
	for i, symbol := range universe {
		dm.predictedRanks[i] = float64(predictedRank[symbol])
	}
	return dm, nil
}

func (s *backtestService) logResult(kind string, id int64, result *entity.BacktestResult) {
	s.logger.Info("Backtest complete",
		logger.StringField("subject", fmt.Sprintf("%s %d", kind, id)),
		logger.StringField("window_start", utils.FormatDate(result.WindowStart)),
		logger.StringField("window_end", utils.FormatDate(result.WindowEnd)),
		logger.Float64Field("spearman_correlation", result.SpearmanCorrelation),
		logger.Float64Field("avg_daily_return", result.AvgDailyReturn),
		logger.IntField("sample_size", result.SampleSize),
	)
}
