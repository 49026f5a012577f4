package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang-crypto-picker/internal/entity"
	"golang-crypto-picker/internal/pipeline/repository"
	"golang-crypto-picker/pkg/logger"
	"golang-crypto-picker/pkg/utils"
)

// returnTolerance bounds acceptable float drift when re-verifying an already
// completed trade.
const returnTolerance = 1e-9

// OutcomeService finalizes the day's trade once entry and exit prices are
// known. Prices come either from the caller or from the configured price
// source.
type OutcomeService interface {
	Record(ctx context.Context, date time.Time, entryPrice, exitPrice float64) (*entity.Trade, error)
	RecordFromSource(ctx context.Context, date time.Time) (*entity.Trade, error)
}

type outcomeService struct {
	uow         repository.UnitOfWork
	rankingRepo repository.RankingRepository
	tradeRepo   repository.TradeRepository
	priceSource repository.OutcomeRepository
	logger      *logger.Logger
}

// NewOutcomeService creates a new outcome recorder. priceSource may be nil
// when prices are always supplied by the caller.
func NewOutcomeService(
	uow repository.UnitOfWork,
	rankingRepo repository.RankingRepository,
	tradeRepo repository.TradeRepository,
	priceSource repository.OutcomeRepository,
	log *logger.Logger,
) OutcomeService {
	return &outcomeService{
		uow:         uow,
		rankingRepo: rankingRepo,
		tradeRepo:   tradeRepo,
		priceSource: priceSource,
		logger:      log,
	}
}

// RecordFromSource resolves the date's entry and exit prices from the
// configured price source and records the outcome.
func (s *outcomeService) RecordFromSource(ctx context.Context, date time.Time) (*entity.Trade, error) {
	if s.priceSource == nil {
		return nil, fmt.Errorf("no outcome price source configured for %s", utils.FormatDate(date))
	}
	entry, exit, err := s.priceSource.GetEntryExitPrice(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("resolving prices for %s: %w", utils.FormatDate(date), err)
	}
	return s.Record(ctx, date, entry, exit)
}

// Record computes the realized 24h return of the date's chosen asset and
// completes the trade. Recording twice with the same prices is a no-op
// returning the stored record; diverging values are a hard failure.
func (s *outcomeService) Record(ctx context.Context, date time.Time, entryPrice, exitPrice float64) (*entity.Trade, error) {
	day := utils.TruncateToDay(date)

	if entryPrice <= 0 {
		return nil, fmt.Errorf("entry price must be positive, got %g", entryPrice)
	}

	trade, err := s.tradeRepo.FindByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, fmt.Errorf("no trade recorded for %s", utils.FormatDate(day))
	}

	ranking, err := s.rankingRepo.FindByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	if ranking == nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrRankingNotFound, utils.FormatDate(day))
	}
	entries, err := ranking.DecodeEntries()
	if err != nil {
		return nil, err
	}
	rank := 0
	for _, e := range entries {
		if e.Symbol == trade.ChosenSymbol {
			rank = e.Rank
			break
		}
	}
	if rank == 0 {
		return nil, fmt.Errorf("chosen symbol %s absent from ranking for %s", trade.ChosenSymbol, utils.FormatDate(day))
	}

	actualReturn := (exitPrice - entryPrice) / entryPrice * 100

	if trade.Status == entity.TradeStatusCompleted {
		if trade.EntryPrice == nil || trade.ExitPrice == nil || trade.Actual24hReturn == nil || trade.RankOfChosen == nil {
			return nil, fmt.Errorf("%w: completed trade for %s is missing outcome fields", entity.ErrInconsistentOutcome, utils.FormatDate(day))
		}
		if *trade.EntryPrice != entryPrice ||
			*trade.ExitPrice != exitPrice ||
			math.Abs(*trade.Actual24hReturn-actualReturn) > returnTolerance ||
			*trade.RankOfChosen != rank {
			return nil, fmt.Errorf("%w: stored (entry=%g exit=%g return=%.6f rank=%d) vs recomputed (entry=%g exit=%g return=%.6f rank=%d)",
				entity.ErrInconsistentOutcome,
				*trade.EntryPrice, *trade.ExitPrice, *trade.Actual24hReturn, *trade.RankOfChosen,
				entryPrice, exitPrice, actualReturn, rank)
		}
		s.logger.Info("Trade already completed, no-op",
			logger.StringField("date", utils.FormatDate(day)),
			logger.StringField("symbol", trade.ChosenSymbol),
		)
		return trade, nil
	}

	trade.EntryPrice = &entryPrice
	trade.ExitPrice = &exitPrice
	trade.Actual24hReturn = &actualReturn
	trade.RankOfChosen = &rank
	trade.Status = entity.TradeStatusCompleted

	err = s.uow.Do(ctx, func(tx repository.TxRepositories) error {
		return tx.Trades.Update(ctx, trade)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Trade outcome recorded",
		logger.StringField("date", utils.FormatDate(day)),
		logger.StringField("symbol", trade.ChosenSymbol),
		logger.Float64Field("actual_24h_return", actualReturn),
		logger.IntField("rank_of_chosen", rank),
	)

	return trade, nil
}
