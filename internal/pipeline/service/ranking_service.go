package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang-crypto-picker/internal/entity"
	"golang-crypto-picker/internal/pipeline/config"
	"golang-crypto-picker/internal/pipeline/repository"
	"golang-crypto-picker/internal/scoring"
	"golang-crypto-picker/pkg/logger"
	"golang-crypto-picker/pkg/telegram"
	"golang-crypto-picker/pkg/utils"
)

// RankingService computes and persists the daily ranking and opens the day's
// pending trade for the top pick.
type RankingService interface {
	Rank(ctx context.Context, date time.Time) (*entity.Ranking, error)
}

type rankingService struct {
	cfg          *config.Config
	uow          repository.UnitOfWork
	featureStore repository.FeatureStoreRepository
	modelRepo    repository.ModelVersionRepository
	rankingRepo  repository.RankingRepository
	tradeRepo    repository.TradeRepository
	notifier     telegram.Notifier
	logger       *logger.Logger
}

// NewRankingService creates a new ranking service. notifier may be nil.
func NewRankingService(
	cfg *config.Config,
	uow repository.UnitOfWork,
	featureStore repository.FeatureStoreRepository,
	modelRepo repository.ModelVersionRepository,
	rankingRepo repository.RankingRepository,
	tradeRepo repository.TradeRepository,
	notifier telegram.Notifier,
	log *logger.Logger,
) RankingService {
	return &rankingService{
		cfg:          cfg,
		uow:          uow,
		featureStore: featureStore,
		modelRepo:    modelRepo,
		rankingRepo:  rankingRepo,
		tradeRepo:    tradeRepo,
		notifier:     notifier,
		logger:       log,
	}
}

// Rank ranks every tracked symbol for the date with the current model
// version. Re-running for an already-ranked date returns the stored ranking
// untouched.
func (s *rankingService) Rank(ctx context.Context, date time.Time) (*entity.Ranking, error) {
	day := utils.TruncateToDay(date)

	existing, err := s.rankingRepo.FindByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Info("Ranking already exists for date, skipping",
			logger.StringField("date", utils.FormatDate(day)),
			logger.IntField("model_version", int(existing.ModelVersion)),
		)
		return existing, nil
	}

	features, err := s.featureStore.GetFeatures(ctx, day)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, symbol := range s.cfg.Pipeline.Universe {
		if _, ok := features[symbol]; !ok {
			missing = append(missing, symbol)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s on %s", entity.ErrIncompleteFeatureData,
			strings.Join(missing, ", "), utils.FormatDate(day))
	}

	currentVersion, err := s.modelRepo.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}
	model, err := s.modelRepo.FindByVersion(ctx, currentVersion)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, fmt.Errorf("current model version %d not found in ledger", currentVersion)
	}
	expr, err := scoring.Decode(model.Expression)
	if err != nil {
		return nil, fmt.Errorf("model version %d carries an undecodable expression: %w", currentVersion, err)
	}

	scored, err := scoring.RankAll(expr, features, s.cfg.Pipeline.Universe)
	if err != nil {
		return nil, err
	}

	entries := make([]entity.RankingEntry, len(scored))
	for i, sc := range scored {
		entries[i] = entity.RankingEntry{Symbol: sc.Symbol, Score: sc.Score, Rank: sc.Rank}
	}
	encoded, err := entity.EncodeEntries(entries)
	if err != nil {
		return nil, err
	}

	ranking := &entity.Ranking{
		Date:         day,
		ModelVersion: currentVersion,
		Entries:      encoded,
	}

	top := entries[0]
	err = s.uow.Do(ctx, func(tx repository.TxRepositories) error {
		if err := tx.Rankings.Create(ctx, ranking); err != nil {
			return err
		}
		trade, err := tx.Trades.FindByDate(ctx, day)
		if err != nil {
			return err
		}
		if trade != nil {
			return nil
		}
		return tx.Trades.Create(ctx, &entity.Trade{
			Date:         day,
			ChosenSymbol: top.Symbol,
			ChosenScore:  top.Score,
			ModelVersion: currentVersion,
			Status:       entity.TradeStatusPending,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Ranking persisted",
		logger.StringField("date", utils.FormatDate(day)),
		logger.IntField("model_version", int(currentVersion)),
		logger.StringField("top_pick", top.Symbol),
		logger.Float64Field("top_score", top.Score),
	)

	if s.notifier != nil {
		msg := telegram.FormatDailyPick(utils.FormatDate(day), currentVersion, entries)
		if err := s.notifier.SendMessage(msg); err != nil {
			s.logger.Warn("Failed to send pick notification", logger.ErrorField(err))
		}
	}

	return ranking, nil
}
