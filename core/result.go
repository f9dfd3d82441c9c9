package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNoArchive ends a run early when there is nothing to process.
	ErrNoArchive = errors.New("no archive to process")
	// ErrManifestNotFound means no project root with a package.json could be found.
	ErrManifestNotFound = errors.New("package.json not found")
)

// Policy decides what a failed step means for the rest of the run.
type Policy int

const (
	// Recoverable failures are recorded and the run continues.
	Recoverable Policy = iota
	// Fatal failures stop the run.
	Fatal
)

type Outcome int

const (
	OutcomeOk Outcome = iota
	OutcomeFailed
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOk:
		return "ok"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result is the recorded outcome of one step.
type Result struct {
	Step    StepType
	Outcome Outcome
	Reason  string
	Err     error
}

func Ok(step StepType) Result {
	return Result{Step: step, Outcome: OutcomeOk}
}

func Failed(step StepType, err error) Result {
	return Result{Step: step, Outcome: OutcomeFailed, Reason: err.Error(), Err: err}
}

func Skipped(step StepType, reason string) Result {
	return Result{Step: step, Outcome: OutcomeSkipped, Reason: reason}
}

// SkipError is returned by a step that had nothing to do.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return "skipped: " + e.Reason
}

func skip(format string, args ...interface{}) error {
	return &SkipError{Reason: fmt.Sprintf(format, args...)}
}
