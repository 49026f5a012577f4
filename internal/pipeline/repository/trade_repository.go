package repository

import (
	"context"
	"errors"
	"time"

	"golang-crypto-picker/internal/entity"
	"golang-crypto-picker/pkg/utils"

	"gorm.io/gorm"
)

type tradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository creates a trade repository over the given handle.
func NewTradeRepository(db *gorm.DB) TradeRepository {
	return &tradeRepository{db: db}
}

func (r *tradeRepository) Create(ctx context.Context, trade *entity.Trade) error {
	return r.db.WithContext(ctx).Create(trade).Error
}

func (r *tradeRepository) Update(ctx context.Context, trade *entity.Trade) error {
	return r.db.WithContext(ctx).Save(trade).Error
}

func (r *tradeRepository) FindByDate(ctx context.Context, date time.Time) (*entity.Trade, error) {
	var trade entity.Trade
	err := r.db.WithContext(ctx).Where("date = ?", utils.TruncateToDay(date)).First(&trade).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

func (r *tradeRepository) FindRecentCompleted(ctx context.Context, limit int) ([]entity.Trade, error) {
	var trades []entity.Trade
	err := r.db.WithContext(ctx).
		Where("status = ?", entity.TradeStatusCompleted).
		Order("date desc").
		Limit(limit).
		Find(&trades).Error
	return trades, err
}

func (r *tradeRepository) AggregateCompleted(ctx context.Context) (float64, int64, error) {
	var agg struct {
		AvgReturn float64
		Count     int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.Trade{}).
		Select("COALESCE(AVG(actual_24h_return), 0) AS avg_return, COUNT(*) AS count").
		Where("status = ?", entity.TradeStatusCompleted).
		Scan(&agg).Error
	return agg.AvgReturn, agg.Count, err
}

func (r *tradeRepository) FindPending(ctx context.Context) ([]entity.Trade, error) {
	var trades []entity.Trade
	err := r.db.WithContext(ctx).
		Where("status = ?", entity.TradeStatusPending).
		Order("date desc").
		Find(&trades).Error
	return trades, err
}
