package scoring

import (
	"fmt"
	"sort"
)

// Scored is one symbol's position in a total order, rank 1 being best.
type Scored struct {
	Symbol string
	Score  float64
	Rank   int
}

// RankAll scores every symbol with the expression and returns the
// deterministic total order: descending score, bit-identical scores broken by
// ascending symbol. Every symbol must have a feature map.
func RankAll(expr *Node, features map[string]map[string]float64, symbols []string) ([]Scored, error) {
	scored := make([]Scored, 0, len(symbols))
	for _, symbol := range symbols {
		fv, ok := features[symbol]
		if !ok {
			return nil, fmt.Errorf("no features for symbol %q", symbol)
		}
		score, err := Evaluate(expr, fv)
		if err != nil {
			return nil, fmt.Errorf("scoring %s: %w", symbol, err)
		}
		scored = append(scored, Scored{Symbol: symbol, Score: score})
	}
	orderScored(scored)
	return scored, nil
}

func orderScored(scored []Scored) {
	sort.Slice(scored, func(a, b int) bool {
		if scored[a].Score != scored[b].Score {
			return scored[a].Score > scored[b].Score
		}
		return scored[a].Symbol < scored[b].Symbol
	})
	for i := range scored {
		scored[i].Rank = i + 1
	}
}
