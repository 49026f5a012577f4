package scoring

import (
	"fmt"
	"math"
)

// Structural budgets for candidate expressions. A tree inside these bounds
// always evaluates within the step budget in eval.go.
const (
	MaxDepth = 10
	MaxNodes = 128
)

// Validate statically checks a candidate expression: every node is exactly one
// of operator/field/constant, fields exist in the schema, operators are in the
// allow-list with a legal arity, constants are finite, and the tree stays
// inside the depth and node budgets. A nil error means the expression is a
// pure, total, deterministic function of a FeatureVector.
func Validate(n *Node) error {
	if n == nil {
		return fmt.Errorf("empty expression")
	}
	if total := Complexity(n); total > MaxNodes {
		return fmt.Errorf("expression has %d nodes, budget is %d", total, MaxNodes)
	}
	return validateNode(n, 1)
}

func validateNode(n *Node, depth int) error {
	if n == nil {
		return fmt.Errorf("null node")
	}
	if depth > MaxDepth {
		return fmt.Errorf("expression depth exceeds %d", MaxDepth)
	}

	kinds := 0
	if n.Op != "" {
		kinds++
	}
	if n.Field != "" {
		kinds++
	}
	if n.Value != nil {
		kinds++
	}
	if kinds != 1 {
		return fmt.Errorf("node must be exactly one of op, field or value")
	}

	switch {
	case n.Field != "":
		if !IsSchemaField(n.Field) {
			return fmt.Errorf("unknown feature field %q", n.Field)
		}
		if len(n.Args) > 0 {
			return fmt.Errorf("field node %q must not have args", n.Field)
		}
	case n.Value != nil:
		if math.IsNaN(*n.Value) || math.IsInf(*n.Value, 0) {
			return fmt.Errorf("constant must be finite")
		}
		if len(n.Args) > 0 {
			return fmt.Errorf("value node must not have args")
		}
	default:
		bounds, ok := operators[n.Op]
		if !ok {
			return fmt.Errorf("unknown operator %q", n.Op)
		}
		if len(n.Args) < bounds.min || (bounds.max >= 0 && len(n.Args) > bounds.max) {
			if bounds.max < 0 {
				return fmt.Errorf("operator %q takes at least %d args, got %d", n.Op, bounds.min, len(n.Args))
			}
			return fmt.Errorf("operator %q takes %d to %d args, got %d", n.Op, bounds.min, bounds.max, len(n.Args))
		}
		for _, a := range n.Args {
			if err := validateNode(a, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
