package dto

// TradeOutcome summarizes one completed trade for the advisor feedback
// payload.
type TradeOutcome struct {
	Date            string  `json:"date"`
	ChosenSymbol    string  `json:"chosen_symbol"`
	ChosenScore     float64 `json:"chosen_score"`
	Actual24hReturn float64 `json:"actual_24h_return"`
	RankOfChosen    int     `json:"rank_of_chosen"`
	UniverseSize    int     `json:"universe_size"`
	ModelVersion    int64   `json:"model_version"`
}

// Feedback is the structured payload handed to the advisor when asking for a
// candidate scoring expression.
type Feedback struct {
	Yesterday       *TradeOutcome      `json:"yesterday"`
	SymbolReturns   map[string]float64 `json:"symbol_returns"`
	RecentOutcomes  []TradeOutcome     `json:"recent_outcomes"`
	Commentary      string             `json:"commentary,omitempty"`
	CurrentVersion  int64              `json:"current_version"`
	CurrentFunction string             `json:"current_function"`
}
