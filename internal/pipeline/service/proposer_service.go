package service

import (
	"context"
	"fmt"
	"time"

	"golang-crypto-picker/internal/entity"
	"golang-crypto-picker/internal/pipeline/config"
	"golang-crypto-picker/internal/pipeline/dto"
	"golang-crypto-picker/internal/pipeline/repository"
	"golang-crypto-picker/internal/scoring"
	"golang-crypto-picker/pkg/logger"
	"golang-crypto-picker/pkg/utils"

	"gorm.io/datatypes"
)

// ProposerService asks the advisor for a candidate scoring expression and
// gates it. Only statically valid candidates are persisted; the advisor's
// output never reaches the backtester or the version ledger unvalidated.
type ProposerService interface {
	Propose(ctx context.Context, date time.Time, commentary string) (*entity.ScoringCandidate, error)
}

type proposerService struct {
	cfg             *config.Config
	advisor         repository.AdvisorRepository
	historicalStore repository.HistoricalStoreRepository
	tradeRepo       repository.TradeRepository
	modelRepo       repository.ModelVersionRepository
	candidateRepo   repository.CandidateRepository
	logger          *logger.Logger
}

// NewProposerService creates a new improvement proposer.
func NewProposerService(
	cfg *config.Config,
	advisor repository.AdvisorRepository,
	historicalStore repository.HistoricalStoreRepository,
	tradeRepo repository.TradeRepository,
	modelRepo repository.ModelVersionRepository,
	candidateRepo repository.CandidateRepository,
	log *logger.Logger,
) ProposerService {
	return &proposerService{
		cfg:             cfg,
		advisor:         advisor,
		historicalStore: historicalStore,
		tradeRepo:       tradeRepo,
		modelRepo:       modelRepo,
		candidateRepo:   candidateRepo,
		logger:          log,
	}
}

// Propose builds the outcome feedback for the day before `date`, asks the
// advisor for a candidate and validates it. Invalid candidates abort with
// nothing persisted.
func (s *proposerService) Propose(ctx context.Context, date time.Time, commentary string) (*entity.ScoringCandidate, error) {
	feedback, err := s.buildFeedback(ctx, utils.TruncateToDay(date), commentary)
	if err != nil {
		return nil, err
	}

	proposal, err := s.advisor.ProposeScoringFunction(ctx, feedback)
	if err != nil {
		return nil, fmt.Errorf("advisor call failed: %w", err)
	}

	expr, err := scoring.Decode(proposal.Expression)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidCandidate, err)
	}
	if err := scoring.Validate(expr); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidCandidate, err)
	}
	// Trial evaluation on a neutral vector; a valid tree must score any
	// schema-complete vector within the step budget.
	neutral := make(map[string]float64, len(scoring.Schema))
	for _, f := range scoring.Schema {
		neutral[f] = 0
	}
	if _, err := scoring.Evaluate(expr, neutral); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidCandidate, err)
	}

	canonical, err := expr.Encode()
	if err != nil {
		return nil, err
	}
	candidate := &entity.ScoringCandidate{
		Expression: datatypes.JSON(canonical),
		Commentary: proposal.Rationale,
		Status:     entity.CandidateStatusValidated,
	}
	if err := s.candidateRepo.Create(ctx, candidate); err != nil {
		return nil, err
	}

	s.logger.Info("Candidate validated",
		logger.IntField("candidate_id", int(candidate.ID)),
		logger.StringField("expression", expr.String()),
	)
	return candidate, nil
}

func (s *proposerService) buildFeedback(ctx context.Context, date time.Time, commentary string) (*dto.Feedback, error) {
	yesterday := date.AddDate(0, 0, -1)
	universeSize := len(s.cfg.Pipeline.Universe)

	feedback := &dto.Feedback{
		SymbolReturns: map[string]float64{},
		Commentary:    commentary,
	}

	trade, err := s.tradeRepo.FindByDate(ctx, yesterday)
	if err != nil {
		return nil, err
	}
	if trade != nil && trade.Status == entity.TradeStatusCompleted {
		feedback.Yesterday = &dto.TradeOutcome{
			Date:            utils.FormatDate(trade.Date),
			ChosenSymbol:    trade.ChosenSymbol,
			ChosenScore:     trade.ChosenScore,
			Actual24hReturn: *trade.Actual24hReturn,
			RankOfChosen:    *trade.RankOfChosen,
			UniverseSize:    universeSize,
			ModelVersion:    trade.ModelVersion,
		}
	}

	window, err := s.historicalStore.GetWindow(ctx, yesterday, yesterday)
	if err != nil {
		return nil, err
	}
	for symbol, rec := range window[yesterday] {
		feedback.SymbolReturns[symbol] = rec.RealizedReturn
	}

	recent, err := s.tradeRepo.FindRecentCompleted(ctx, s.cfg.Pipeline.FeedbackTradeCount)
	if err != nil {
		return nil, err
	}
	for _, t := range recent {
		if t.Actual24hReturn == nil || t.RankOfChosen == nil {
			continue
		}
		feedback.RecentOutcomes = append(feedback.RecentOutcomes, dto.TradeOutcome{
			Date:            utils.FormatDate(t.Date),
			ChosenSymbol:    t.ChosenSymbol,
			ChosenScore:     t.ChosenScore,
			Actual24hReturn: *t.Actual24hReturn,
			RankOfChosen:    *t.RankOfChosen,
			UniverseSize:    universeSize,
			ModelVersion:    t.ModelVersion,
		})
	}

	currentVersion, err := s.modelRepo.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}
	feedback.CurrentVersion = currentVersion
	if model, err := s.modelRepo.FindByVersion(ctx, currentVersion); err == nil && model != nil {
		if expr, err := scoring.Decode(model.Expression); err == nil {
			feedback.CurrentFunction = expr.String()
		}
	}

	return feedback, nil
}
