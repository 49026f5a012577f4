package dto

import "time"

// LatestMetrics is the dashboard headline: the current model, its latest
// backtest metrics and the live performance of every completed trade.
type LatestMetrics struct {
	CurrentVersion      int64      `json:"current_version"`
	SpearmanCorrelation *float64   `json:"spearman_correlation,omitempty"`
	AvgDailyReturn      *float64   `json:"avg_daily_return,omitempty"`
	WindowStart         *string    `json:"window_start,omitempty"`
	WindowEnd           *string    `json:"window_end,omitempty"`
	EvaluatedAt         *time.Time `json:"evaluated_at,omitempty"`
	LiveAvgReturn       float64    `json:"live_avg_return"`
	LiveTradeCount      int64      `json:"live_trade_count"`
}

// ModelHistoryEntry is one promoted version in the ledger.
type ModelHistoryEntry struct {
	Version            int64     `json:"version"`
	ParentVersion      *int64    `json:"parent_version,omitempty"`
	Expression         string    `json:"expression"`
	PromotionSpearman  *float64  `json:"promotion_spearman,omitempty"`
	PromotionAvgReturn *float64  `json:"promotion_avg_return,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// CurrentVersion names the version the ranking engine uses right now.
type CurrentVersion struct {
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}
