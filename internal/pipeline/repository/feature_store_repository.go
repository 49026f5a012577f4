package repository

import (
	"context"
	"time"

	"golang-crypto-picker/internal/entity"
	"golang-crypto-picker/pkg/utils"

	"gorm.io/gorm"
)

type featureStoreRepository struct {
	db *gorm.DB
}

// NewFeatureStoreRepository reads feature vectors the external feature
// pipeline has landed in the feature_vectors table.
func NewFeatureStoreRepository(db *gorm.DB) FeatureStoreRepository {
	return &featureStoreRepository{db: db}
}

func (r *featureStoreRepository) GetFeatures(ctx context.Context, date time.Time) (map[string]map[string]float64, error) {
	var rows []entity.FeatureVector
	day := utils.TruncateToDay(date)
	if err := r.db.WithContext(ctx).Where("date = ?", day).Find(&rows).Error; err != nil {
		return nil, err
	}

	features := make(map[string]map[string]float64, len(rows))
	for i := range rows {
		decoded, err := rows[i].DecodeFeatures()
		if err != nil {
			return nil, err
		}
		features[rows[i].Symbol] = decoded
	}
	return features, nil
}

type historicalStoreRepository struct {
	db *gorm.DB
}

// NewHistoricalStoreRepository serves historical feature vectors together
// with their realized returns for backtest replay.
func NewHistoricalStoreRepository(db *gorm.DB) HistoricalStoreRepository {
	return &historicalStoreRepository{db: db}
}

func (r *historicalStoreRepository) GetWindow(ctx context.Context, start, end time.Time) (map[time.Time]map[string]DayRecord, error) {
	var rows []entity.FeatureVector
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ? AND realized_return IS NOT NULL", utils.TruncateToDay(start), utils.TruncateToDay(end)).
		Order("date asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	window := make(map[time.Time]map[string]DayRecord)
	for i := range rows {
		decoded, err := rows[i].DecodeFeatures()
		if err != nil {
			return nil, err
		}
		day := utils.TruncateToDay(rows[i].Date)
		if window[day] == nil {
			window[day] = make(map[string]DayRecord)
		}
		window[day][rows[i].Symbol] = DayRecord{
			Features:       decoded,
			RealizedReturn: *rows[i].RealizedReturn,
		}
	}
	return window, nil
}
