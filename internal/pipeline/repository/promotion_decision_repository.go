package repository

import (
	"context"

	"golang-crypto-picker/internal/entity"

	"gorm.io/gorm"
)

type promotionDecisionRepository struct {
	db *gorm.DB
}

// NewPromotionDecisionRepository creates a repository for the append-only
// promotion audit trail.
func NewPromotionDecisionRepository(db *gorm.DB) PromotionDecisionRepository {
	return &promotionDecisionRepository{db: db}
}

func (r *promotionDecisionRepository) Create(ctx context.Context, decision *entity.PromotionDecision) error {
	return r.db.WithContext(ctx).Create(decision).Error
}

func (r *promotionDecisionRepository) FindRecent(ctx context.Context, limit int) ([]entity.PromotionDecision, error) {
	var decisions []entity.PromotionDecision
	err := r.db.WithContext(ctx).
		Order("decided_at desc").
		Limit(limit).
		Find(&decisions).Error
	return decisions, err
}
