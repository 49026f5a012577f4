package scoring

import (
	"fmt"
	"math"
)

// MaxEvalSteps caps the work a single evaluation may do. Validated trees stay
// well under it; the budget is enforced anyway so evaluation is bounded even
// for a tree that skipped validation.
const MaxEvalSteps = 1024

// Evaluate interprets the expression against one feature map and returns the
// score. Evaluation is pure and total: protected division and log keep every
// operator defined everywhere, and a non-finite result collapses to 0 so the
// ranking comparator always sees ordered values.
func Evaluate(n *Node, features map[string]float64) (float64, error) {
	steps := 0
	v, err := eval(n, features, &steps)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, nil
	}
	return v, nil
}

func eval(n *Node, features map[string]float64, steps *int) (float64, error) {
	*steps++
	if *steps > MaxEvalSteps {
		return 0, fmt.Errorf("evaluation exceeded %d steps", MaxEvalSteps)
	}
	if n == nil {
		return 0, fmt.Errorf("null node")
	}

	switch {
	case n.Field != "":
		v, ok := features[n.Field]
		if !ok {
			return 0, fmt.Errorf("feature %q missing from vector", n.Field)
		}
		return v, nil
	case n.Value != nil:
		return *n.Value, nil
	}

	args := make([]float64, len(n.Args))
	for i, a := range n.Args {
		v, err := eval(a, features, steps)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}

	switch n.Op {
	case "add":
		total := 0.0
		for _, v := range args {
			total += v
		}
		return total, nil
	case "sub":
		return args[0] - args[1], nil
	case "mul":
		total := 1.0
		for _, v := range args {
			total *= v
		}
		return total, nil
	case "div":
		// Protected division keeps candidates total.
		if args[1] == 0 {
			return 0, nil
		}
		return args[0] / args[1], nil
	case "neg":
		return -args[0], nil
	case "abs":
		return math.Abs(args[0]), nil
	case "min":
		best := args[0]
		for _, v := range args[1:] {
			best = math.Min(best, v)
		}
		return best, nil
	case "max":
		best := args[0]
		for _, v := range args[1:] {
			best = math.Max(best, v)
		}
		return best, nil
	case "tanh":
		return math.Tanh(args[0]), nil
	case "log1p":
		// Protected: the log of anything at or below -1 is 0.
		if args[0] <= -1 {
			return 0, nil
		}
		return math.Log1p(args[0]), nil
	default:
		return 0, fmt.Errorf("unknown operator %q", n.Op)
	}
}
