package dto

import "encoding/json"

// CandidateProposal is the JSON shape the advisor must answer with: a scoring
// expression tree plus a short rationale. The expression is kept raw here;
// decoding and validation happen inside the proposer's acceptance gate.
type CandidateProposal struct {
	Expression json.RawMessage `json:"expression"`
	Rationale  string          `json:"rationale"`
}
