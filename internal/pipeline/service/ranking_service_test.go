package service

import (
	"context"
	"testing"

	"golang-crypto-picker/internal/entity"
	"golang-crypto-picker/internal/pipeline/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestRankPersistsRankingAndPendingTrade(t *testing.T) {
	cfg := testConfig([]string{"AAA", "BBB"})

	featureStore := &fakeFeatureStore{features: map[string]map[string]float64{
		"AAA": {"return_24h": 0.5},
		"BBB": {"return_24h": 0.9},
	}}
	modelRepo := &fakeModelRepo{
		current: 1,
		versions: map[int64]*entity.ModelVersion{
			1: {Version: 1, Expression: datatypes.JSON(`{"field":"return_24h"}`)},
		},
	}
	rankingRepo := &fakeRankingRepo{byDate: map[string]*entity.Ranking{}}
	tradeRepo := &fakeTradeRepo{}
	uow := &fakeUnitOfWork{repos: repository.TxRepositories{Rankings: rankingRepo, Trades: tradeRepo}}

	svc := NewRankingService(cfg, uow, featureStore, modelRepo, rankingRepo, tradeRepo, nil, testLogger())

	ranking, err := svc.Rank(context.Background(), day("2026-03-10"))
	require.NoError(t, err)

	require.Len(t, rankingRepo.created, 1)
	assert.Same(t, ranking, rankingRepo.created[0])
	assert.EqualValues(t, 1, ranking.ModelVersion)

	entries, err := ranking.DecodeEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entity.RankingEntry{Symbol: "BBB", Score: 0.9, Rank: 1}, entries[0])
	assert.Equal(t, entity.RankingEntry{Symbol: "AAA", Score: 0.5, Rank: 2}, entries[1])

	// The same commit opens the pending trade on the top pick.
	trade, err := tradeRepo.FindByDate(context.Background(), day("2026-03-10"))
	require.NoError(t, err)
	require.NotNil(t, trade)
	assert.Equal(t, "BBB", trade.ChosenSymbol)
	assert.Equal(t, 0.9, trade.ChosenScore)
	assert.EqualValues(t, 1, trade.ModelVersion)
	assert.Equal(t, entity.TradeStatusPending, trade.Status)
}

func TestRankReturnsExistingRanking(t *testing.T) {
	cfg := testConfig([]string{"AAA", "BBB"})

	entries, err := entity.EncodeEntries([]entity.RankingEntry{
		{Symbol: "AAA", Score: 1.0, Rank: 1},
		{Symbol: "BBB", Score: 0.5, Rank: 2},
	})
	require.NoError(t, err)
	existing := &entity.Ranking{Date: day("2026-03-10"), ModelVersion: 4, Entries: entries}

	rankingRepo := &fakeRankingRepo{byDate: map[string]*entity.Ranking{"2026-03-10": existing}}
	svc := NewRankingService(cfg, nil, &fakeFeatureStore{}, &fakeModelRepo{}, rankingRepo, &fakeTradeRepo{}, nil, testLogger())

	got, err := svc.Rank(context.Background(), day("2026-03-10"))
	require.NoError(t, err)
	assert.Same(t, existing, got)
	assert.Empty(t, rankingRepo.created)
}

func TestRankIncompleteFeatureData(t *testing.T) {
	cfg := testConfig([]string{"AAA", "BBB", "CCC"})

	featureStore := &fakeFeatureStore{features: map[string]map[string]float64{
		"AAA": {"return_24h": 1.0},
		// BBB and CCC missing.
	}}
	modelRepo := &fakeModelRepo{
		current: 1,
		versions: map[int64]*entity.ModelVersion{
			1: {Version: 1, Expression: datatypes.JSON(`{"field":"return_24h"}`)},
		},
	}
	rankingRepo := &fakeRankingRepo{byDate: map[string]*entity.Ranking{}}

	svc := NewRankingService(cfg, nil, featureStore, modelRepo, rankingRepo, &fakeTradeRepo{}, nil, testLogger())

	_, err := svc.Rank(context.Background(), day("2026-03-10"))
	require.ErrorIs(t, err, entity.ErrIncompleteFeatureData)
	assert.Contains(t, err.Error(), "BBB")
	assert.Contains(t, err.Error(), "CCC")
	assert.NotContains(t, err.Error(), "AAA,")

	// A failed stage persists nothing.
	assert.Empty(t, rankingRepo.created)
}

func TestRankFailsOnUndecodableModel(t *testing.T) {
	cfg := testConfig([]string{"AAA"})

	featureStore := &fakeFeatureStore{features: map[string]map[string]float64{
		"AAA": {"return_24h": 1.0},
	}}
	modelRepo := &fakeModelRepo{
		current: 1,
		versions: map[int64]*entity.ModelVersion{
			1: {Version: 1, Expression: datatypes.JSON(`not json`)},
		},
	}

	svc := NewRankingService(cfg, nil, featureStore, modelRepo, &fakeRankingRepo{byDate: map[string]*entity.Ranking{}}, &fakeTradeRepo{}, nil, testLogger())

	_, err := svc.Rank(context.Background(), day("2026-03-10"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undecodable")
}
