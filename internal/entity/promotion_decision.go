package entity

import (
	"time"
)

// PromotionDecision outcomes.
const (
	DecisionPromoted = "promoted"
	DecisionRejected = "rejected"
)

// PromotionDecision is the append-only audit record of one promotion attempt.
// Every attempt, successful or not, produces exactly one row.
type PromotionDecision struct {
	ID                 int64     `json:"id"`
	CandidateID        int64     `json:"candidate_id"`
	BaselineVersion    int64     `json:"baseline_version"`
	BaselineSpearman   float64   `json:"baseline_spearman"`
	BaselineAvgReturn  float64   `json:"baseline_avg_return"`
	CandidateSpearman  float64   `json:"candidate_spearman"`
	CandidateAvgReturn float64   `json:"candidate_avg_return"`
	Decision           string    `json:"decision"`
	Reason             string    `json:"reason"`
	NewVersion         *int64    `json:"new_version"`
	DecidedAt          time.Time `json:"decided_at"`
}

func (PromotionDecision) TableName() string {
	return "promotion_decisions"
}
