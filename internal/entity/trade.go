package entity

import (
	"time"
)

// Trade status values. A trade opens pending when the day's top pick is acted
// upon and completes exactly once when the exit price is known.
const (
	TradeStatusPending   = "pending"
	TradeStatusCompleted = "completed"
)

// Trade records the single position taken for one trading day.
type Trade struct {
	ID              int64     `json:"id"`
	Date            time.Time `json:"date" gorm:"type:date;uniqueIndex"`
	ChosenSymbol    string    `json:"chosen_symbol"`
	ChosenScore     float64   `json:"chosen_score"`
	ModelVersion    int64     `json:"model_version"`
	Status          string    `json:"status"`
	RankOfChosen    *int      `json:"rank_of_chosen"`
	EntryPrice      *float64  `json:"entry_price"`
	ExitPrice       *float64  `json:"exit_price"`
	Actual24hReturn *float64  `json:"actual_24h_return" gorm:"column:actual_24h_return"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Trade) TableName() string {
	return "trades"
}
