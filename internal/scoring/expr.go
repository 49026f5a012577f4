package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Node is one node of a scoring expression tree. Exactly one of Op, Field and
// Value is set: operator nodes carry Args, field nodes reference a schema
// feature, value nodes hold a constant.
//
// Expressions are data, not code. The advisor hands the core a JSON tree and
// the core interprets it against the feature schema, so a candidate can never
// execute anything.
type Node struct {
	Op    string   `json:"op,omitempty"`
	Field string   `json:"field,omitempty"`
	Value *float64 `json:"value,omitempty"`
	Args  []*Node  `json:"args,omitempty"`
}

// arity bounds per operator; max of -1 means variadic.
type arity struct {
	min, max int
}

var operators = map[string]arity{
	"add":   {2, -1},
	"sub":   {2, 2},
	"mul":   {2, -1},
	"div":   {2, 2},
	"neg":   {1, 1},
	"abs":   {1, 1},
	"min":   {2, -1},
	"max":   {2, -1},
	"tanh":  {1, 1},
	"log1p": {1, 1},
}

// Decode parses a JSON expression tree. Unknown JSON fields are rejected so a
// malformed candidate cannot silently degrade into a constant.
func Decode(raw []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var n Node
	if err := dec.Decode(&n); err != nil {
		return nil, fmt.Errorf("malformed expression: %w", err)
	}
	return &n, nil
}

// Encode renders the expression tree back to canonical JSON.
func (n *Node) Encode() ([]byte, error) {
	return json.Marshal(n)
}

// String renders a compact infix-ish form for logs and audit reasons.
func (n *Node) String() string {
	switch {
	case n == nil:
		return "<nil>"
	case n.Field != "":
		return n.Field
	case n.Value != nil:
		return fmt.Sprintf("%g", *n.Value)
	default:
		s := n.Op + "("
		for i, a := range n.Args {
			if i > 0 {
				s += ", "
			}
			s += a.String()
		}
		return s + ")"
	}
}

// Complexity counts the nodes in the tree.
func Complexity(n *Node) int {
	if n == nil {
		return 0
	}
	total := 1
	for _, a := range n.Args {
		total += Complexity(a)
	}
	return total
}
