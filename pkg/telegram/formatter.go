package telegram

import (
	"fmt"
	"strings"

	"golang-crypto-picker/internal/entity"
)

// FormatDailyPick renders the day's ranking into a Telegram Markdown message.
// Only the top five entries are listed in full.
func FormatDailyPick(date string, modelVersion int64, entries []entity.RankingEntry) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📈 *Daily Pick — %s*\n", date))
	sb.WriteString(fmt.Sprintf("Model version: v%d\n\n", modelVersion))

	limit := 5
	if len(entries) < limit {
		limit = len(entries)
	}
	for _, e := range entries[:limit] {
		marker := "  "
		if e.Rank == 1 {
			marker = "🥇"
		}
		sb.WriteString(fmt.Sprintf("%s %d. *%s* — score %.4f\n", marker, e.Rank, e.Symbol, e.Score))
	}
	if len(entries) > limit {
		sb.WriteString(fmt.Sprintf("… and %d more\n", len(entries)-limit))
	}
	return sb.String()
}

// FormatPromotionDecision renders a promotion attempt into a Telegram
// Markdown message.
func FormatPromotionDecision(d *entity.PromotionDecision) string {
	var sb strings.Builder
	if d.Decision == entity.DecisionPromoted && d.NewVersion != nil {
		sb.WriteString(fmt.Sprintf("🚀 *Model promoted: v%d → v%d*\n\n", d.BaselineVersion, *d.NewVersion))
	} else {
		sb.WriteString(fmt.Sprintf("🛑 *Candidate rejected* (incumbent stays v%d)\n\n", d.BaselineVersion))
	}
	sb.WriteString(fmt.Sprintf("Baseline:  corr %.4f, avg return %.2f%%\n", d.BaselineSpearman, d.BaselineAvgReturn))
	sb.WriteString(fmt.Sprintf("Candidate: corr %.4f, avg return %.2f%%\n\n", d.CandidateSpearman, d.CandidateAvgReturn))
	sb.WriteString(d.Reason)
	return sb.String()
}
