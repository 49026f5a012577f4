package service

import (
	"context"
	"time"

	"golang-crypto-picker/internal/entity"
	"golang-crypto-picker/internal/pipeline/config"
	"golang-crypto-picker/internal/pipeline/dto"
	"golang-crypto-picker/internal/pipeline/repository"
	"golang-crypto-picker/pkg/logger"
	"golang-crypto-picker/pkg/utils"

	"go.uber.org/zap"
)

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func testConfig(universe []string) *config.Config {
	return &config.Config{
		Pipeline: config.Pipeline{
			Universe:           universe,
			BacktestWindowDays: 180,
			MinCompleteDays:    2,
			BacktestWorkers:    2,
			SpearmanThreshold:  0.04,
			AvgReturnThreshold: 0.25,
			FeedbackTradeCount: 7,
		},
	}
}

// fakeUnitOfWork runs the transaction body directly against the fakes. It
// cannot roll back, so tests assert on what was written before a failure.
type fakeUnitOfWork struct {
	repos repository.TxRepositories
}

func (f *fakeUnitOfWork) Do(ctx context.Context, fn func(repository.TxRepositories) error) error {
	return fn(f.repos)
}

type fakePriceSource struct {
	entry float64
	exit  float64
	err   error
}

func (f *fakePriceSource) GetEntryExitPrice(ctx context.Context, date time.Time) (float64, float64, error) {
	return f.entry, f.exit, f.err
}

type fakeFeatureStore struct {
	features map[string]map[string]float64
	err      error
}

func (f *fakeFeatureStore) GetFeatures(ctx context.Context, date time.Time) (map[string]map[string]float64, error) {
	return f.features, f.err
}

type fakeHistoricalStore struct {
	window map[time.Time]map[string]repository.DayRecord
	err    error
}

func (f *fakeHistoricalStore) GetWindow(ctx context.Context, start, end time.Time) (map[time.Time]map[string]repository.DayRecord, error) {
	return f.window, f.err
}

type fakeRankingRepo struct {
	byDate  map[string]*entity.Ranking
	created []*entity.Ranking
}

func (f *fakeRankingRepo) Create(ctx context.Context, ranking *entity.Ranking) error {
	f.created = append(f.created, ranking)
	return nil
}

func (f *fakeRankingRepo) FindByDate(ctx context.Context, date time.Time) (*entity.Ranking, error) {
	return f.byDate[utils.FormatDate(date)], nil
}

type fakeTradeRepo struct {
	byDate  map[string]*entity.Trade
	recent  []entity.Trade
	updated []*entity.Trade
}

func (f *fakeTradeRepo) Create(ctx context.Context, trade *entity.Trade) error {
	if f.byDate == nil {
		f.byDate = map[string]*entity.Trade{}
	}
	f.byDate[utils.FormatDate(trade.Date)] = trade
	return nil
}

func (f *fakeTradeRepo) Update(ctx context.Context, trade *entity.Trade) error {
	f.updated = append(f.updated, trade)
	return nil
}

func (f *fakeTradeRepo) FindByDate(ctx context.Context, date time.Time) (*entity.Trade, error) {
	return f.byDate[utils.FormatDate(date)], nil
}

func (f *fakeTradeRepo) FindRecentCompleted(ctx context.Context, limit int) ([]entity.Trade, error) {
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeTradeRepo) FindPending(ctx context.Context) ([]entity.Trade, error) {
	return nil, nil
}

func (f *fakeTradeRepo) AggregateCompleted(ctx context.Context) (float64, int64, error) {
	return 0, 0, nil
}

type fakeModelRepo struct {
	versions map[int64]*entity.ModelVersion
	current  int64
	raced    bool
}

func (f *fakeModelRepo) Create(ctx context.Context, version *entity.ModelVersion) error {
	f.versions[version.Version] = version
	return nil
}

func (f *fakeModelRepo) FindByVersion(ctx context.Context, version int64) (*entity.ModelVersion, error) {
	return f.versions[version], nil
}

func (f *fakeModelRepo) FindAll(ctx context.Context) ([]entity.ModelVersion, error) {
	var all []entity.ModelVersion
	for _, v := range f.versions {
		all = append(all, *v)
	}
	return all, nil
}

func (f *fakeModelRepo) MaxVersion(ctx context.Context) (int64, error) {
	var max int64
	for v := range f.versions {
		if v > max {
			max = v
		}
	}
	return max, nil
}

func (f *fakeModelRepo) CurrentVersion(ctx context.Context) (int64, error) {
	return f.current, nil
}

func (f *fakeModelRepo) SetCurrentVersion(ctx context.Context, expected, next int64) error {
	if f.raced || f.current != expected {
		return entity.ErrVersionRace
	}
	f.current = next
	return nil
}

type fakeCandidateRepo struct {
	byID    map[int64]*entity.ScoringCandidate
	created []*entity.ScoringCandidate
}

func (f *fakeCandidateRepo) Create(ctx context.Context, candidate *entity.ScoringCandidate) error {
	if f.byID == nil {
		f.byID = map[int64]*entity.ScoringCandidate{}
	}
	candidate.ID = int64(len(f.byID) + 1)
	f.byID[candidate.ID] = candidate
	f.created = append(f.created, candidate)
	return nil
}

func (f *fakeCandidateRepo) FindByID(ctx context.Context, id int64) (*entity.ScoringCandidate, error) {
	return f.byID[id], nil
}

func (f *fakeCandidateRepo) FindLatestValidated(ctx context.Context) (*entity.ScoringCandidate, error) {
	var latest *entity.ScoringCandidate
	for _, c := range f.byID {
		if c.Status != entity.CandidateStatusValidated {
			continue
		}
		if latest == nil || c.ID > latest.ID {
			latest = c
		}
	}
	return latest, nil
}

func (f *fakeCandidateRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	f.byID[id].Status = status
	return nil
}

type fakeResultRepo struct {
	byVersion   map[int64]*entity.BacktestResult
	byCandidate map[int64]*entity.BacktestResult
	created     []*entity.BacktestResult
}

func (f *fakeResultRepo) Create(ctx context.Context, result *entity.BacktestResult) error {
	f.created = append(f.created, result)
	return nil
}

func (f *fakeResultRepo) FindLatestForVersion(ctx context.Context, version int64) (*entity.BacktestResult, error) {
	return f.byVersion[version], nil
}

func (f *fakeResultRepo) FindLatestForCandidate(ctx context.Context, candidateID int64) (*entity.BacktestResult, error) {
	return f.byCandidate[candidateID], nil
}

func (f *fakeResultRepo) FindLatest(ctx context.Context) (*entity.BacktestResult, error) {
	if len(f.created) == 0 {
		return nil, nil
	}
	return f.created[len(f.created)-1], nil
}

type fakePromotionDecisionRepo struct {
	created []*entity.PromotionDecision
}

func (f *fakePromotionDecisionRepo) Create(ctx context.Context, decision *entity.PromotionDecision) error {
	f.created = append(f.created, decision)
	return nil
}

func (f *fakePromotionDecisionRepo) FindRecent(ctx context.Context, limit int) ([]entity.PromotionDecision, error) {
	var out []entity.PromotionDecision
	for i := len(f.created) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *f.created[i])
	}
	return out, nil
}

type fakeAdvisor struct {
	proposal *dto.CandidateProposal
	err      error
	asked    []*dto.Feedback
}

func (f *fakeAdvisor) ProposeScoringFunction(ctx context.Context, feedback *dto.Feedback) (*dto.CandidateProposal, error) {
	f.asked = append(f.asked, feedback)
	return f.proposal, f.err
}
