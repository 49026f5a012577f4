package common

// DefaultUniverse is the fixed set of tracked symbols. The universe is part of
// the configuration surface; this list is the default when none is configured.
var DefaultUniverse = []string{
	"AAVEUSD", "ADAUSD", "ALGOUSD", "AVAXUSD",
	"BCHUSD", "BTCUSD", "DOGEUSD", "DOTUSD",
	"ETHUSD", "LINKUSD", "LTCUSD", "MATICUSD",
	"MKRUSD", "SOLUSD", "UNIUSD", "XLMUSD",
}

const (
	// DefaultBacktestWindowDays is how far back a backtest replays.
	DefaultBacktestWindowDays = 180

	// DefaultMinCompleteDays is the minimum number of complete historical days
	// a backtest window must contain.
	DefaultMinCompleteDays = 10

	// DefaultSpearmanThreshold is the minimum Spearman improvement that
	// promotes a candidate.
	DefaultSpearmanThreshold = 0.04

	// DefaultAvgReturnThreshold is the minimum average-daily-return improvement
	// (percentage points) that promotes a candidate.
	DefaultAvgReturnThreshold = 0.25
)
