package entity

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// FeatureVector holds the fixed-schema numeric features for one symbol on one
// trading day. Rows are written by the external feature pipeline and are
// immutable once fetched; RealizedReturn is filled in by the same pipeline
// once the 24h outcome is known.
type FeatureVector struct {
	ID             int64          `json:"id"`
	Date           time.Time      `json:"date" gorm:"type:date;uniqueIndex:idx_feature_vectors_date_symbol"`
	Symbol         string         `json:"symbol" gorm:"uniqueIndex:idx_feature_vectors_date_symbol"`
	Features       datatypes.JSON `json:"features" gorm:"type:jsonb"`
	RealizedReturn *float64       `json:"realized_return"`
	CreatedAt      time.Time      `json:"created_at"`
}

func (FeatureVector) TableName() string {
	return "feature_vectors"
}

// DecodeFeatures unpacks the JSON feature map.
func (f *FeatureVector) DecodeFeatures() (map[string]float64, error) {
	features := map[string]float64{}
	if err := json.Unmarshal(f.Features, &features); err != nil {
		return nil, err
	}
	return features, nil
}
