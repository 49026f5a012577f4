package entity

import "fmt"

// StageError is a pipeline failure with a machine-readable kind. Stage
// commands surface the kind and exit nonzero; wrapping keeps errors.Is
// working against the sentinels below.
type StageError struct {
	Kind    string
	Message string
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Stage failure taxonomy. The core fails closed: incomplete or inconsistent
// inputs abort the stage instead of degrading silently.
var (
	ErrIncompleteFeatureData = &StageError{Kind: "INCOMPLETE_FEATURE_DATA", Message: "feature vectors missing for one or more tracked symbols"}
	ErrRankingNotFound       = &StageError{Kind: "RANKING_NOT_FOUND", Message: "no ranking persisted for the requested date"}
	ErrInconsistentOutcome   = &StageError{Kind: "INCONSISTENT_OUTCOME", Message: "recomputed outcome diverges from the completed trade record"}
	ErrInsufficientHistory   = &StageError{Kind: "INSUFFICIENT_HISTORY", Message: "backtest window holds fewer complete days than the configured minimum"}
	ErrInvalidCandidate      = &StageError{Kind: "INVALID_CANDIDATE", Message: "candidate scoring expression failed validation"}
	ErrMetricWindowMismatch  = &StageError{Kind: "METRIC_WINDOW_MISMATCH", Message: "candidate and incumbent metrics cover different windows"}
	ErrVersionRace           = &StageError{Kind: "VERSION_RACE", Message: "current model version changed since the candidate was evaluated"}
)
