package repository

import (
	"context"
	"errors"

	"golang-crypto-picker/internal/entity"

	"gorm.io/gorm"
)

type backtestResultRepository struct {
	db *gorm.DB
}

// NewBacktestResultRepository creates a repository for the append-only
// backtest ledger. Re-evaluation adds rows, never overwrites.
func NewBacktestResultRepository(db *gorm.DB) BacktestResultRepository {
	return &backtestResultRepository{db: db}
}

func (r *backtestResultRepository) Create(ctx context.Context, result *entity.BacktestResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *backtestResultRepository) FindLatestForVersion(ctx context.Context, version int64) (*entity.BacktestResult, error) {
	var result entity.BacktestResult
	err := r.db.WithContext(ctx).
		Where("model_version = ?", version).
		Order("evaluated_at desc").
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *backtestResultRepository) FindLatestForCandidate(ctx context.Context, candidateID int64) (*entity.BacktestResult, error) {
	var result entity.BacktestResult
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("evaluated_at desc").
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *backtestResultRepository) FindLatest(ctx context.Context) (*entity.BacktestResult, error) {
	var result entity.BacktestResult
	err := r.db.WithContext(ctx).Order("evaluated_at desc").First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
