package config

import (
	"golang-crypto-picker/pkg/common"
	"golang-crypto-picker/pkg/config"
)

// Pipeline holds the stage-loop tunables.
type Pipeline struct {
	Universe           []string `mapstructure:"universe"`
	BacktestWindowDays int      `mapstructure:"backtest_window_days"`
	MinCompleteDays    int      `mapstructure:"min_complete_days"`
	BacktestWorkers    int      `mapstructure:"backtest_workers"`
	SpearmanThreshold  float64  `mapstructure:"spearman_threshold"`
	AvgReturnThreshold float64  `mapstructure:"avg_return_threshold"`
	FeedbackTradeCount int      `mapstructure:"feedback_trade_count"`
}

// Config holds the full configuration for the pipeline service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Gemini   config.Gemini   `mapstructure:"gemini"`
	Telegram config.Telegram `mapstructure:"telegram"`
	Pipeline Pipeline        `mapstructure:"pipeline"`
}

// Load loads the pipeline configuration from the given path and fills in
// defaults for anything unset.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Pipeline.Universe) == 0 {
		cfg.Pipeline.Universe = common.DefaultUniverse
	}
	if cfg.Pipeline.BacktestWindowDays <= 0 {
		cfg.Pipeline.BacktestWindowDays = common.DefaultBacktestWindowDays
	}
	if cfg.Pipeline.MinCompleteDays <= 0 {
		cfg.Pipeline.MinCompleteDays = common.DefaultMinCompleteDays
	}
	if cfg.Pipeline.BacktestWorkers <= 0 {
		cfg.Pipeline.BacktestWorkers = 8
	}
	if cfg.Pipeline.SpearmanThreshold == 0 {
		cfg.Pipeline.SpearmanThreshold = common.DefaultSpearmanThreshold
	}
	if cfg.Pipeline.AvgReturnThreshold == 0 {
		cfg.Pipeline.AvgReturnThreshold = common.DefaultAvgReturnThreshold
	}
	if cfg.Pipeline.FeedbackTradeCount <= 0 {
		cfg.Pipeline.FeedbackTradeCount = 7
	}
	return &cfg, nil
}
