package entity

import (
	"time"

	"gorm.io/datatypes"
)

// ModelVersion is one immutable snapshot of the scoring expression. Versions
// are strictly increasing and never edited or deleted.
type ModelVersion struct {
	ID                 int64          `json:"id"`
	Version            int64          `json:"version" gorm:"uniqueIndex"`
	Expression         datatypes.JSON `json:"expression" gorm:"type:jsonb"`
	ParentVersion      *int64         `json:"parent_version"`
	PromotionSpearman  *float64       `json:"promotion_spearman"`
	PromotionAvgReturn *float64       `json:"promotion_avg_return"`
	CreatedAt          time.Time      `json:"created_at"`
}

func (ModelVersion) TableName() string {
	return "model_versions"
}

// ModelPointer is the single-row table naming the version the Ranking Engine
// uses. Only the promotion gate moves it.
type ModelPointer struct {
	ID             int64     `json:"id"`
	CurrentVersion int64     `json:"current_version"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (ModelPointer) TableName() string {
	return "model_pointer"
}
