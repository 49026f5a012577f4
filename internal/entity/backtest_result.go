package entity

import (
	"time"
)

// BacktestResult is one append-only evaluation of a scoring function over a
// historical window. Exactly one of ModelVersion and CandidateID is set.
type BacktestResult struct {
	ID                  int64     `json:"id"`
	ModelVersion        *int64    `json:"model_version"`
	CandidateID         *int64    `json:"candidate_id"`
	WindowStart         time.Time `json:"window_start" gorm:"type:date"`
	WindowEnd           time.Time `json:"window_end" gorm:"type:date"`
	SpearmanCorrelation float64   `json:"spearman_correlation"`
	AvgDailyReturn      float64   `json:"avg_daily_return"`
	SampleSize          int       `json:"sample_size"`
	EvaluatedAt         time.Time `json:"evaluated_at"`
}

func (BacktestResult) TableName() string {
	return "backtest_results"
}
