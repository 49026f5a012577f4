package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxRepositories bundles the repositories bound to one transaction. Stage
// services write through these so every stage commit is all-or-nothing.
type TxRepositories struct {
	Rankings   RankingRepository
	Trades     TradeRepository
	Models     ModelVersionRepository
	Candidates CandidateRepository
	Decisions  PromotionDecisionRepository
}

// UnitOfWork runs a function against transaction-bound repositories,
// committing when it returns nil and rolling back on error.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx TxRepositories) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a UnitOfWork backed by gorm transactions.
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(tx TxRepositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(TxRepositories{
			Rankings:   NewRankingRepository(tx),
			Trades:     NewTradeRepository(tx),
			Models:     NewModelVersionRepository(tx),
			Candidates: NewCandidateRepository(tx),
			Decisions:  NewPromotionDecisionRepository(tx),
		})
	})
}
