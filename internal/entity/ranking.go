package entity

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// RankingEntry is one row of a day's ranking, rank 1 being the top pick.
type RankingEntry struct {
	Symbol string  `json:"symbol"`
	Score  float64 `json:"score"`
	Rank   int     `json:"rank"`
}

// Ranking is the deterministic total order the model produced for one trading
// day. At most one ranking exists per date and it is never mutated.
type Ranking struct {
	ID           int64          `json:"id"`
	Date         time.Time      `json:"date" gorm:"type:date;uniqueIndex"`
	ModelVersion int64          `json:"model_version"`
	Entries      datatypes.JSON `json:"entries" gorm:"type:jsonb"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (Ranking) TableName() string {
	return "rankings"
}

// DecodeEntries unpacks the ordered ranking entries.
func (r *Ranking) DecodeEntries() ([]RankingEntry, error) {
	var entries []RankingEntry
	if err := json.Unmarshal(r.Entries, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// EncodeEntries packs ranking entries into a JSON column value.
func EncodeEntries(entries []RankingEntry) (datatypes.JSON, error) {
	raw, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
