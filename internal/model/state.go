package model

import "time"

// State is a pipeline controller state.
type State string

const (
	StateReceived      State = "received"
	StateNormalized    State = "normalized"
	StateGuarded       State = "guarded"
	StateScored        State = "scored"
	StateFingerprinted State = "fingerprinted"
	StateEnriched      State = "enriched"
	StateAssembled     State = "assembled"
	StateRejected      State = "rejected"
)

// Terminal reports whether no further transition leaves s.
func (s State) Terminal() bool {
	return s == StateAssembled || s == StateRejected
}

// StageEvent describes one state transition of a single analysis.
type StageEvent struct {
	AnalysisID string        `json:"analysis_id"`
	From       State         `json:"from"`
	To         State         `json:"to"`
	Error      string        `json:"error,omitempty"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	At         time.Time     `json:"at"`
}
