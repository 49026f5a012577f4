package entity

import (
	"time"

	"gorm.io/datatypes"
)

// ScoringCandidate status values.
const (
	CandidateStatusValidated = "validated"
	CandidateStatusRejected  = "rejected"
	CandidateStatusPromoted  = "promoted"
)

// ScoringCandidate is an advisor-proposed scoring expression that passed
// static validation and awaits backtesting. Candidates never become rankable
// until the promotion gate turns one into a ModelVersion.
type ScoringCandidate struct {
	ID         int64          `json:"id"`
	Expression datatypes.JSON `json:"expression" gorm:"type:jsonb"`
	Commentary string         `json:"commentary"`
	Status     string         `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (ScoringCandidate) TableName() string {
	return "scoring_candidates"
}
