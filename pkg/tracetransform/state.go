package tracetransform

import "fmt"

// State is a step of the pipeline state machine:
//
//	Init → {per T: Generate → [Correct] → per P: Reduce} → Assemble → Done
//
// with the terminal failure states ValidationFailed, PreconditionFailed and
// BackendFailed.
type State int

const (
	StateInit State = iota
	StateGenerate
	StateCorrect
	StateReduce
	StateAssemble
	StateDone
	StateValidationFailed
	StatePreconditionFailed
	StateBackendFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateGenerate:
		return "GenerateSinogram"
	case StateCorrect:
		return "Correct"
	case StateReduce:
		return "Reduce"
	case StateAssemble:
		return "Assemble"
	case StateDone:
		return "Done"
	case StateValidationFailed:
		return "ValidationFailed"
	case StatePreconditionFailed:
		return "PreconditionFailed"
	case StateBackendFailed:
		return "BackendFailed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// PipelineError reports the failure state a run ended in and the step that
// raised it.
type PipelineError struct {
	// State is the terminal failure state
	State State

	// Stage is the step that failed; StateInit for validation failures
	Stage State

	// Functional names the T-functional being processed, if any
	Functional string

	Err error
}

func (e *PipelineError) Error() string {
	if e.Functional != "" {
		return fmt.Sprintf("%s during %s of %s: %v", e.State, e.Stage, e.Functional, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.State, e.Err)
}

// Unwrap exposes the underlying cause
func (e *PipelineError) Unwrap() error {
	return e.Err
}
