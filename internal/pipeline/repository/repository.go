package repository

import (
	"context"
	"time"

	"golang-crypto-picker/internal/entity"
	"golang-crypto-picker/internal/pipeline/dto"
)

// DayRecord pairs one symbol's features with its realized 24h return for a
// historical day.
type DayRecord struct {
	Features       map[string]float64
	RealizedReturn float64
}

// FeatureStoreRepository supplies the feature vectors the ranking engine
// consumes. Acquisition of the underlying market/sentiment data is an
// external concern; the core only reads.
type FeatureStoreRepository interface {
	// GetFeatures returns a feature map per tracked symbol for the date.
	// Implementations return every symbol they have; completeness is checked
	// by the caller against the tracked universe.
	GetFeatures(ctx context.Context, date time.Time) (map[string]map[string]float64, error)
}

// HistoricalStoreRepository serves complete historical days for backtesting.
type HistoricalStoreRepository interface {
	// GetWindow returns, per day in [start, end], a mapping symbol -> DayRecord.
	// Days are only included when the symbol has both features and a realized
	// return; filtering incomplete days is the backtester's job.
	GetWindow(ctx context.Context, start, end time.Time) (map[time.Time]map[string]DayRecord, error)
}

// OutcomeRepository resolves the realized entry and exit price for the trade
// held on a date. Implementations sit outside the core (brokerage, market
// data); the record-outcome stage can also be fed prices directly.
type OutcomeRepository interface {
	GetEntryExitPrice(ctx context.Context, date time.Time) (entry, exit float64, err error)
}

// AdvisorRepository produces a candidate scoring expression from outcome
// feedback. Advisor output is untrusted and always passes through the
// proposer's validation gate.
type AdvisorRepository interface {
	ProposeScoringFunction(ctx context.Context, feedback *dto.Feedback) (*dto.CandidateProposal, error)
}

// RankingRepository persists and loads daily rankings.
type RankingRepository interface {
	Create(ctx context.Context, ranking *entity.Ranking) error
	FindByDate(ctx context.Context, date time.Time) (*entity.Ranking, error)
}

// TradeRepository persists the one-trade-per-date ledger.
type TradeRepository interface {
	Create(ctx context.Context, trade *entity.Trade) error
	Update(ctx context.Context, trade *entity.Trade) error
	FindByDate(ctx context.Context, date time.Time) (*entity.Trade, error)
	FindRecentCompleted(ctx context.Context, limit int) ([]entity.Trade, error)
	FindPending(ctx context.Context) ([]entity.Trade, error)
	AggregateCompleted(ctx context.Context) (avgReturn float64, count int64, err error)
}

// ModelVersionRepository reads the append-only version ledger. Writing a
// version happens only inside the promotion service's transaction.
type ModelVersionRepository interface {
	Create(ctx context.Context, version *entity.ModelVersion) error
	FindByVersion(ctx context.Context, version int64) (*entity.ModelVersion, error)
	FindAll(ctx context.Context) ([]entity.ModelVersion, error)
	MaxVersion(ctx context.Context) (int64, error)
	CurrentVersion(ctx context.Context) (int64, error)
	SetCurrentVersion(ctx context.Context, expected, next int64) error
}

// CandidateRepository persists validated advisor proposals.
type CandidateRepository interface {
	Create(ctx context.Context, candidate *entity.ScoringCandidate) error
	FindByID(ctx context.Context, id int64) (*entity.ScoringCandidate, error)
	FindLatestValidated(ctx context.Context) (*entity.ScoringCandidate, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// BacktestResultRepository appends and reads backtest evaluations.
type BacktestResultRepository interface {
	Create(ctx context.Context, result *entity.BacktestResult) error
	FindLatestForVersion(ctx context.Context, version int64) (*entity.BacktestResult, error)
	FindLatestForCandidate(ctx context.Context, candidateID int64) (*entity.BacktestResult, error)
	FindLatest(ctx context.Context) (*entity.BacktestResult, error)
}

// PromotionDecisionRepository appends and reads the promotion audit trail.
type PromotionDecisionRepository interface {
	Create(ctx context.Context, decision *entity.PromotionDecision) error
	FindRecent(ctx context.Context, limit int) ([]entity.PromotionDecision, error)
}
