package repository

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang-crypto-picker/internal/pipeline/dto"
	"golang-crypto-picker/internal/scoring"
)

// BuildProposeScorerPrompt renders the feedback payload into the advisor
// prompt. The answer contract is strict JSON: an expression tree over the
// fixed feature schema with a bounded operator set, so the reply can be
// statically validated before anything else touches it.
func BuildProposeScorerPrompt(feedback *dto.Feedback) string {
	var sb strings.Builder

	if feedback.Yesterday != nil {
		y := feedback.Yesterday
		sb.WriteString(fmt.Sprintf(
			"Yesterday (%s) we picked %s with score %.4f. Its actual 24h return ranked #%d out of %d.\n\n",
			y.Date, y.ChosenSymbol, y.ChosenScore, y.RankOfChosen, y.UniverseSize,
		))
	}

	if len(feedback.SymbolReturns) > 0 {
		symbols := make([]string, 0, len(feedback.SymbolReturns))
		for s := range feedback.SymbolReturns {
			symbols = append(symbols, s)
		}
		sort.Strings(symbols)
		sb.WriteString("Actual 24h returns yesterday:\n")
		for _, s := range symbols {
			sb.WriteString(fmt.Sprintf("%s: %.2f%%\n", s, feedback.SymbolReturns[s]))
		}
		sb.WriteString("\n")
	}

	if len(feedback.RecentOutcomes) > 0 {
		sb.WriteString("Recent picks:\n")
		for _, t := range feedback.RecentOutcomes {
			sb.WriteString(fmt.Sprintf(
				"%s: picked %s, return %.2f%%, rank %d/%d (model v%d)\n",
				t.Date, t.ChosenSymbol, t.Actual24hReturn, t.RankOfChosen, t.UniverseSize, t.ModelVersion,
			))
		}
		sb.WriteString("\n")
	}

	if feedback.Commentary != "" {
		sb.WriteString("Market commentary:\n")
		sb.WriteString(feedback.Commentary)
		sb.WriteString("\n\n")
	}

	schemaJSON, _ := json.Marshal(scoring.Schema)

	return fmt.Sprintf(`You are improving the daily scoring function of a crypto ranking system.
The system scores every tracked asset each day and buys the highest-scoring one for 24 hours.

%sThe current scoring function (version %d) is:
%s

Propose a better scoring function as an expression tree. The tree must use only these feature fields:
%s

Allowed operators and arities:
- "add", "mul", "min", "max": 2 or more args
- "sub", "div": exactly 2 args
- "neg", "abs", "tanh", "log1p": exactly 1 arg

Each node is exactly one of:
- {"op": "<operator>", "args": [<nodes>]}
- {"field": "<feature field>"}
- {"value": <number>}

Keep the tree at most %d levels deep and at most %d nodes.

Answer with ONLY this JSON, nothing else:
{
  "expression": { <expression tree> },
  "rationale": "<one short paragraph: what drove the best and worst movers and why this scoring would have ranked them correctly>"
}`,
		sb.String(),
		feedback.CurrentVersion,
		feedback.CurrentFunction,
		string(schemaJSON),
		scoring.MaxDepth,
		scoring.MaxNodes,
	)
}
