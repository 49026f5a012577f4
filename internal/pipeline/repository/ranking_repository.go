package repository

import (
	"context"
	"errors"
	"time"

	"golang-crypto-picker/internal/entity"
	"golang-crypto-picker/pkg/utils"

	"gorm.io/gorm"
)

type rankingRepository struct {
	db *gorm.DB
}

// NewRankingRepository creates a ranking repository over the given handle,
// which may be a transaction.
func NewRankingRepository(db *gorm.DB) RankingRepository {
	return &rankingRepository{db: db}
}

func (r *rankingRepository) Create(ctx context.Context, ranking *entity.Ranking) error {
	return r.db.WithContext(ctx).Create(ranking).Error
}

func (r *rankingRepository) FindByDate(ctx context.Context, date time.Time) (*entity.Ranking, error) {
	var ranking entity.Ranking
	err := r.db.WithContext(ctx).Where("date = ?", utils.TruncateToDay(date)).First(&ranking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ranking, nil
}
