package model

import (
	"errors"
	"fmt"
)

// Hard gates. Everything else is recorded as a StageError.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrResolutionFailed = errors.New("resolution failed")
	ErrSSRFRisk         = errors.New("SSRF risk")
)

// RejectionError is returned when the pipeline terminates in StateRejected.
// It unwraps to one of the sentinel errors above.
type RejectionError struct {
	// State is the last state reached before rejection.
	State  State
	Reason string
	Err    error
}

func (e *RejectionError) Error() string {
	if e.Reason == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Reason)
}

func (e *RejectionError) Unwrap() error { return e.Err }

// StageError is a non-terminal failure of one stage. It is stored next to
// the stage's field in AnalysisResult and never escalated.
type StageError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

func (e *StageError) Error() string {
	return e.Stage + ": " + e.Message
}

// NewStageError builds a StageError from err.
func NewStageError(stage string, err error) *StageError {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Message: err.Error()}
}
