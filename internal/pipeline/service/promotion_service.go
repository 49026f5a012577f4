package service

import (
	"context"
	"fmt"

	"golang-crypto-picker/internal/entity"
	"golang-crypto-picker/internal/pipeline/config"
	"golang-crypto-picker/internal/pipeline/repository"
	"golang-crypto-picker/pkg/logger"
	"golang-crypto-picker/pkg/telegram"
	"golang-crypto-picker/pkg/utils"
)

// PromotionService is the sole writer of the model version ledger and the
// current-version pointer.
type PromotionService interface {
	Decide(ctx context.Context, candidateID int64) (*entity.PromotionDecision, error)
}

type promotionService struct {
	cfg           *config.Config
	uow           repository.UnitOfWork
	modelRepo     repository.ModelVersionRepository
	candidateRepo repository.CandidateRepository
	resultRepo    repository.BacktestResultRepository
	decisionRepo  repository.PromotionDecisionRepository
	notifier      telegram.Notifier
	logger        *logger.Logger
}

// NewPromotionService creates a new promotion gate. notifier may be nil.
func NewPromotionService(
	cfg *config.Config,
	uow repository.UnitOfWork,
	modelRepo repository.ModelVersionRepository,
	candidateRepo repository.CandidateRepository,
	resultRepo repository.BacktestResultRepository,
	decisionRepo repository.PromotionDecisionRepository,
	notifier telegram.Notifier,
	log *logger.Logger,
) PromotionService {
	return &promotionService{
		cfg:           cfg,
		uow:           uow,
		modelRepo:     modelRepo,
		candidateRepo: candidateRepo,
		resultRepo:    resultRepo,
		decisionRepo:  decisionRepo,
		notifier:      notifier,
		logger:        log,
	}
}

// Decide compares the candidate's latest backtest against the incumbent's
// over the same window and either promotes a new version or rejects the
// candidate. Every attempt appends exactly one PromotionDecision.
func (s *promotionService) Decide(ctx context.Context, candidateID int64) (*entity.PromotionDecision, error) {
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

	candResult, err := s.resultRepo.FindLatestForCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if candResult == nil {
		return nil, fmt.Errorf("candidate %d has no backtest result", candidateID)
	}

	incumbentVersion, err := s.modelRepo.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}
	baseResult, err := s.resultRepo.FindLatestForVersion(ctx, incumbentVersion)
	if err != nil {
		return nil, err
	}
	if baseResult == nil {
		return nil, fmt.Errorf("incumbent version %d has no backtest result", incumbentVersion)
	}

	if !candResult.WindowStart.Equal(baseResult.WindowStart) || !candResult.WindowEnd.Equal(baseResult.WindowEnd) {
		return nil, fmt.Errorf("%w: candidate %s..%s vs incumbent %s..%s",
			entity.ErrMetricWindowMismatch,
			utils.FormatDate(candResult.WindowStart), utils.FormatDate(candResult.WindowEnd),
			utils.FormatDate(baseResult.WindowStart), utils.FormatDate(baseResult.WindowEnd))
	}

	promote, deltaSpearman, deltaReturn := promotionGate(candResult, baseResult,
		s.cfg.Pipeline.SpearmanThreshold, s.cfg.Pipeline.AvgReturnThreshold)

	decision := &entity.PromotionDecision{
		CandidateID:        candidateID,
		BaselineVersion:    incumbentVersion,
		BaselineSpearman:   baseResult.SpearmanCorrelation,
		BaselineAvgReturn:  baseResult.AvgDailyReturn,
		CandidateSpearman:  candResult.SpearmanCorrelation,
		CandidateAvgReturn: candResult.AvgDailyReturn,
		DecidedAt:          utils.TimeNowUTC(),
	}

	if !promote {
		decision.Decision = entity.DecisionRejected
		decision.Reason = fmt.Sprintf(
			"delta spearman %+.4f < %.2f and delta avg return %+.4fpp < %.2fpp (baseline corr=%.4f avg=%.4f, candidate corr=%.4f avg=%.4f)",
			deltaSpearman, s.cfg.Pipeline.SpearmanThreshold,
			deltaReturn, s.cfg.Pipeline.AvgReturnThreshold,
			baseResult.SpearmanCorrelation, baseResult.AvgDailyReturn,
			candResult.SpearmanCorrelation, candResult.AvgDailyReturn)

		err = s.uow.Do(ctx, func(tx repository.TxRepositories) error {
			if err := tx.Decisions.Create(ctx, decision); err != nil {
				return err
			}
			return tx.Candidates.UpdateStatus(ctx, candidateID, entity.CandidateStatusRejected)
		})
		if err != nil {
			return nil, err
		}

		s.logger.Info("Candidate rejected",
			logger.IntField("candidate_id", int(candidateID)),
			logger.StringField("reason", decision.Reason),
		)
		s.notify(decision)
		return decision, nil
	}

	decision.Decision = entity.DecisionPromoted
	decision.Reason = fmt.Sprintf(
		"delta spearman %+.4f (threshold %.2f), delta avg return %+.4fpp (threshold %.2fpp)",
		deltaSpearman, s.cfg.Pipeline.SpearmanThreshold,
		deltaReturn, s.cfg.Pipeline.AvgReturnThreshold)

	err = s.uow.Do(ctx, func(tx repository.TxRepositories) error {
		maxVersion, err := tx.Models.MaxVersion(ctx)
		if err != nil {
			return err
		}
		newVersion := maxVersion + 1

		// The ledger row must exist before the pointer references it;
		// model_pointer.current_version carries a foreign key into
		// model_versions.
		parent := incumbentVersion
		if err := tx.Models.Create(ctx, &entity.ModelVersion{
			Version:            newVersion,
			Expression:         candidate.Expression,
			ParentVersion:      &parent,
			PromotionSpearman:  &candResult.SpearmanCorrelation,
			PromotionAvgReturn: &candResult.AvgDailyReturn,
		}); err != nil {
			return err
		}

		// The pointer move fails if another promotion landed since the
		// candidate was evaluated against incumbentVersion.
		if err := tx.Models.SetCurrentVersion(ctx, incumbentVersion, newVersion); err != nil {
			return err
		}
		decision.NewVersion = &newVersion
		if err := tx.Candidates.UpdateStatus(ctx, candidateID, entity.CandidateStatusPromoted); err != nil {
			return err
		}
		return tx.Decisions.Create(ctx, decision)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Model promoted",
		logger.IntField("candidate_id", int(candidateID)),
		logger.IntField("old_version", int(incumbentVersion)),
		logger.IntField("new_version", int(*decision.NewVersion)),
		logger.StringField("reason", decision.Reason),
	)
	s.notify(decision)
	return decision, nil
}

// promotionGate applies the improvement thresholds: a candidate promotes when
// either delta clears its threshold.
func promotionGate(candidate, baseline *entity.BacktestResult, spearmanThreshold, avgReturnThreshold float64) (promote bool, deltaSpearman, deltaReturn float64) {
	deltaSpearman = candidate.SpearmanCorrelation - baseline.SpearmanCorrelation
	deltaReturn = candidate.AvgDailyReturn - baseline.AvgDailyReturn
	promote = deltaSpearman >= spearmanThreshold || deltaReturn >= avgReturnThreshold
	return promote, deltaSpearman, deltaReturn
}

func (s *promotionService) notify(decision *entity.PromotionDecision) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendMessage(telegram.FormatPromotionDecision(decision)); err != nil {
		s.logger.Warn("Failed to send promotion notification", logger.ErrorField(err))
	}
}
