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

func TestPromotionGate(t *testing.T) {
	tests := []struct {
		name         string
		baseSpearman float64
		baseReturn   float64
		candSpearman float64
		candReturn   float64
		wantPromote  bool
	}{
		{
			name:         "spearman improvement clears threshold",
			baseSpearman: 0.40, candSpearman: 0.45,
			baseReturn: 0.10, candReturn: 0.10,
			wantPromote: true,
		},
		{
			name:         "spearman improvement below threshold",
			baseSpearman: 0.40, candSpearman: 0.42,
			baseReturn: 0.10, candReturn: 0.10,
			wantPromote: false,
		},
		{
			name:         "spearman improvement exactly at threshold",
			baseSpearman: 0.0, candSpearman: 0.04,
			baseReturn: 0.10, candReturn: 0.10,
			wantPromote: true,
		},
		{
			name:         "return improvement clears threshold",
			baseSpearman: 0.40, candSpearman: 0.38,
			baseReturn: 0.10, candReturn: 0.40,
			wantPromote: true,
		},
		{
			name:         "return improvement below threshold",
			baseSpearman: 0.40, candSpearman: 0.40,
			baseReturn: 0.10, candReturn: 0.30,
			wantPromote: false,
		},
		{
			name:         "worse on both axes",
			baseSpearman: 0.40, candSpearman: 0.20,
			baseReturn: 0.10, candReturn: -0.50,
			wantPromote: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := &entity.BacktestResult{SpearmanCorrelation: tt.candSpearman, AvgDailyReturn: tt.candReturn}
			baseline := &entity.BacktestResult{SpearmanCorrelation: tt.baseSpearman, AvgDailyReturn: tt.baseReturn}

			promote, deltaSpearman, deltaReturn := promotionGate(candidate, baseline, 0.04, 0.25)
			assert.Equal(t, tt.wantPromote, promote)
			assert.InDelta(t, tt.candSpearman-tt.baseSpearman, deltaSpearman, 1e-12)
			assert.InDelta(t, tt.candReturn-tt.baseReturn, deltaReturn, 1e-12)
		})
	}
}

type promotionFakes struct {
	modelRepo     *fakeModelRepo
	candidateRepo *fakeCandidateRepo
	decisionRepo  *fakePromotionDecisionRepo
}

func promotionFixture(candidateStatus string, candResult, baseResult *entity.BacktestResult) (PromotionService, promotionFakes) {
	cfg := testConfig([]string{"AAA"})

	fakes := promotionFakes{
		modelRepo: &fakeModelRepo{
			current: 2,
			versions: map[int64]*entity.ModelVersion{
				2: {Version: 2, Expression: datatypes.JSON(`{"field":"return_24h"}`)},
			},
		},
		candidateRepo: &fakeCandidateRepo{byID: map[int64]*entity.ScoringCandidate{
			5: {ID: 5, Expression: datatypes.JSON(`{"field":"return_6h"}`), Status: candidateStatus},
		}},
		decisionRepo: &fakePromotionDecisionRepo{},
	}
	resultRepo := &fakeResultRepo{
		byVersion:   map[int64]*entity.BacktestResult{},
		byCandidate: map[int64]*entity.BacktestResult{},
	}
	if candResult != nil {
		resultRepo.byCandidate[5] = candResult
	}
	if baseResult != nil {
		resultRepo.byVersion[2] = baseResult
	}

	uow := &fakeUnitOfWork{repos: repository.TxRepositories{
		Models:     fakes.modelRepo,
		Candidates: fakes.candidateRepo,
		Decisions:  fakes.decisionRepo,
	}}
	svc := NewPromotionService(cfg, uow, fakes.modelRepo, fakes.candidateRepo, resultRepo, fakes.decisionRepo, nil, testLogger())
	return svc, fakes
}

func sharedWindowResults(candSpearman, candReturn, baseSpearman, baseReturn float64) (cand, base *entity.BacktestResult) {
	cand = &entity.BacktestResult{
		WindowStart: day("2026-01-01"), WindowEnd: day("2026-06-29"),
		SpearmanCorrelation: candSpearman, AvgDailyReturn: candReturn,
	}
	base = &entity.BacktestResult{
		WindowStart: day("2026-01-01"), WindowEnd: day("2026-06-29"),
		SpearmanCorrelation: baseSpearman, AvgDailyReturn: baseReturn,
	}
	return cand, base
}

func TestPromotionPromotesAndAppendsVersion(t *testing.T) {
	candResult, baseResult := sharedWindowResults(0.50, 1.0, 0.40, 0.9)
	svc, fakes := promotionFixture(entity.CandidateStatusValidated, candResult, baseResult)

	decision, err := svc.Decide(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, entity.DecisionPromoted, decision.Decision)
	require.NotNil(t, decision.NewVersion)
	assert.EqualValues(t, 3, *decision.NewVersion)

	// The ledger grows by exactly one version, parented on the incumbent,
	// and the pointer follows.
	created := fakes.modelRepo.versions[3]
	require.NotNil(t, created)
	assert.Equal(t, datatypes.JSON(`{"field":"return_6h"}`), created.Expression)
	require.NotNil(t, created.ParentVersion)
	assert.EqualValues(t, 2, *created.ParentVersion)
	assert.EqualValues(t, 3, fakes.modelRepo.current)

	assert.Equal(t, entity.CandidateStatusPromoted, fakes.candidateRepo.byID[5].Status)
	require.Len(t, fakes.decisionRepo.created, 1)
	assert.Same(t, decision, fakes.decisionRepo.created[0])
}

func TestPromotionRejectionAppendsDecision(t *testing.T) {
	candResult, baseResult := sharedWindowResults(0.41, 1.0, 0.40, 0.9)
	svc, fakes := promotionFixture(entity.CandidateStatusValidated, candResult, baseResult)

	decision, err := svc.Decide(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, entity.DecisionRejected, decision.Decision)
	assert.Nil(t, decision.NewVersion)
	assert.Contains(t, decision.Reason, "delta spearman")

	// The incumbent stays in place and no version is appended.
	assert.EqualValues(t, 2, fakes.modelRepo.current)
	assert.Nil(t, fakes.modelRepo.versions[3])
	assert.Equal(t, entity.CandidateStatusRejected, fakes.candidateRepo.byID[5].Status)
	require.Len(t, fakes.decisionRepo.created, 1)
}

func TestPromotionVersionRace(t *testing.T) {
	candResult, baseResult := sharedWindowResults(0.50, 1.0, 0.40, 0.9)
	svc, fakes := promotionFixture(entity.CandidateStatusValidated, candResult, baseResult)
	fakes.modelRepo.raced = true

	_, err := svc.Decide(context.Background(), 5)
	require.ErrorIs(t, err, entity.ErrVersionRace)
	assert.Empty(t, fakes.decisionRepo.created)
}

func TestPromotionRequiresValidatedCandidate(t *testing.T) {
	svc, _ := promotionFixture(entity.CandidateStatusRejected, nil, nil)
	_, err := svc.Decide(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status")
}

func TestPromotionRequiresCandidateBacktest(t *testing.T) {
	svc, _ := promotionFixture(entity.CandidateStatusValidated, nil, nil)
	_, err := svc.Decide(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no backtest result")
}

func TestPromotionWindowMismatch(t *testing.T) {
	candResult := &entity.BacktestResult{
		WindowStart: day("2026-01-01"), WindowEnd: day("2026-06-29"),
		SpearmanCorrelation: 0.5, AvgDailyReturn: 1.0,
	}
	baseResult := &entity.BacktestResult{
		WindowStart: day("2026-01-02"), WindowEnd: day("2026-06-30"),
		SpearmanCorrelation: 0.4, AvgDailyReturn: 0.5,
	}

	svc, _ := promotionFixture(entity.CandidateStatusValidated, candResult, baseResult)
	_, err := svc.Decide(context.Background(), 5)
	require.ErrorIs(t, err, entity.ErrMetricWindowMismatch)
}

func TestPromotionUnknownCandidate(t *testing.T) {
	svc, _ := promotionFixture(entity.CandidateStatusValidated, nil, nil)
	_, err := svc.Decide(context.Background(), 99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
