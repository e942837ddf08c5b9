package pipeline

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pipeline failure taxonomy. Stage failures are
// wrapped in a StageError carrying provider identity; match with errors.Is.
var (
	ErrSttFailed = errors.New("speech-to-text failed")
	ErrAiFailed  = errors.New("ai generation failed")
	ErrTtsFailed = errors.New("speech synthesis failed")
)

// StageError is a terminal provider failure at one pipeline stage. The
// orchestrator never retries past it; a single failure ends the run.
type StageError struct {
	State    State
	Provider string
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s (provider %s): %v", e.State, e.Provider, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Is maps each failing stage onto its taxonomy sentinel.
func (e *StageError) Is(target error) bool {
	switch e.State {
	case StateTranscribing:
		return target == ErrSttFailed
	case StateGenerating:
		return target == ErrAiFailed
	case StateSynthesizing:
		return target == ErrTtsFailed
	}
	return false
}
