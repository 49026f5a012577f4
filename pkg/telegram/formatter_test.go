package telegram

import (
	"testing"

	"golang-crypto-picker/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestFormatDailyPick(t *testing.T) {
	entries := []entity.RankingEntry{
		{Symbol: "BTCUSD", Score: 1.2345, Rank: 1},
		{Symbol: "ETHUSD", Score: 0.9876, Rank: 2},
		{Symbol: "SOLUSD", Score: 0.5, Rank: 3},
		{Symbol: "ADAUSD", Score: 0.4, Rank: 4},
		{Symbol: "DOTUSD", Score: 0.3, Rank: 5},
		{Symbol: "XLMUSD", Score: 0.2, Rank: 6},
	}

	msg := FormatDailyPick("2026-03-10", 3, entries)

	assert.Contains(t, msg, "2026-03-10")
	assert.Contains(t, msg, "v3")
	assert.Contains(t, msg, "🥇 1. *BTCUSD* — score 1.2345")
	assert.Contains(t, msg, "and 1 more")
	assert.NotContains(t, msg, "XLMUSD")
}

func TestFormatDailyPickShortList(t *testing.T) {
	entries := []entity.RankingEntry{
		{Symbol: "BTCUSD", Score: 1.0, Rank: 1},
	}

	msg := FormatDailyPick("2026-03-10", 1, entries)
	assert.Contains(t, msg, "BTCUSD")
	assert.NotContains(t, msg, "more")
}

func TestFormatPromotionDecision(t *testing.T) {
	newVersion := int64(4)
	promoted := &entity.PromotionDecision{
		BaselineVersion:    3,
		BaselineSpearman:   0.31,
		BaselineAvgReturn:  0.50,
		CandidateSpearman:  0.40,
		CandidateAvgReturn: 0.80,
		Decision:           entity.DecisionPromoted,
		Reason:             "spearman improvement 0.0900 >= 0.0400",
		NewVersion:         &newVersion,
	}

	msg := FormatPromotionDecision(promoted)
	assert.Contains(t, msg, "v3 → v4")
	assert.Contains(t, msg, "corr 0.3100")
	assert.Contains(t, msg, "spearman improvement")

	rejected := &entity.PromotionDecision{
		BaselineVersion: 3,
		Decision:        entity.DecisionRejected,
		Reason:          "no threshold cleared",
	}
	msg = FormatPromotionDecision(rejected)
	assert.Contains(t, msg, "rejected")
	assert.Contains(t, msg, "v3")
	assert.Contains(t, msg, "no threshold cleared")
}
