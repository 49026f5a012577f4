package repository

import (
	"context"
	"errors"
	"fmt"

	"golang-crypto-picker/internal/entity"

	"gorm.io/gorm"
)

type modelVersionRepository struct {
	db *gorm.DB
}

// NewModelVersionRepository creates a repository over the append-only version
// ledger and the single-row current-version pointer.
func NewModelVersionRepository(db *gorm.DB) ModelVersionRepository {
	return &modelVersionRepository{db: db}
}

func (r *modelVersionRepository) Create(ctx context.Context, version *entity.ModelVersion) error {
	return r.db.WithContext(ctx).Create(version).Error
}

func (r *modelVersionRepository) FindByVersion(ctx context.Context, version int64) (*entity.ModelVersion, error) {
	var mv entity.ModelVersion
	err := r.db.WithContext(ctx).Where("version = ?", version).First(&mv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mv, nil
}

func (r *modelVersionRepository) FindAll(ctx context.Context) ([]entity.ModelVersion, error) {
	var versions []entity.ModelVersion
	err := r.db.WithContext(ctx).Order("version asc").Find(&versions).Error
	return versions, err
}

func (r *modelVersionRepository) MaxVersion(ctx context.Context) (int64, error) {
	var max int64
	err := r.db.WithContext(ctx).
		Model(&entity.ModelVersion{}).
		Select("COALESCE(MAX(version), 0)").
		Scan(&max).Error
	return max, err
}

func (r *modelVersionRepository) CurrentVersion(ctx context.Context) (int64, error) {
	var pointer entity.ModelPointer
	if err := r.db.WithContext(ctx).First(&pointer).Error; err != nil {
		return 0, err
	}
	return pointer.CurrentVersion, nil
}

// SetCurrentVersion moves the pointer only when it still names the expected
// version. A zero-row update means a concurrent promotion won the race.
func (r *modelVersionRepository) SetCurrentVersion(ctx context.Context, expected, next int64) error {
	res := r.db.WithContext(ctx).
		Model(&entity.ModelPointer{}).
		Where("current_version = ?", expected).
		Update("current_version", next)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: expected current version %d", entity.ErrVersionRace, expected)
	}
	return nil
}
