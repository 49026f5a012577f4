package repository

import (
	"context"
	"errors"

	"golang-crypto-picker/internal/entity"

	"gorm.io/gorm"
)

type candidateRepository struct {
	db *gorm.DB
}

// NewCandidateRepository creates a repository for validated advisor proposals.
func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(ctx context.Context, candidate *entity.ScoringCandidate) error {
	return r.db.WithContext(ctx).Create(candidate).Error
}

func (r *candidateRepository) FindByID(ctx context.Context, id int64) (*entity.ScoringCandidate, error) {
	var candidate entity.ScoringCandidate
	err := r.db.WithContext(ctx).First(&candidate, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *candidateRepository) FindLatestValidated(ctx context.Context) (*entity.ScoringCandidate, error) {
	var candidate entity.ScoringCandidate
	err := r.db.WithContext(ctx).
		Where("status = ?", entity.CandidateStatusValidated).
		Order("created_at desc").
		First(&candidate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *candidateRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).
		Model(&entity.ScoringCandidate{}).
		Where("id = ?", id).
		Update("status", status).Error
}
