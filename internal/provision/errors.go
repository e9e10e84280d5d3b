package provision

import (
	"errors"
	"fmt"
)

// Stage identifies where in the provisioning pipeline a failure happened.
type Stage string

const (
	StageCreate   Stage = "create"
	StageConnect  Stage = "connect"
	StageNavigate Stage = "navigate"
	StageDebug    Stage = "debug"
	StageRelease  Stage = "release"
)

// Error is a provisioning failure tagged with its pipeline stage, so
// callers can tell a provider outage at create apart from a navigation
// failure inside an already-paid session.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provision %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	return &Error{Stage: stage, Err: err}
}

// StageOf extracts the pipeline stage from an error chain.
func StageOf(err error) (Stage, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Stage, true
	}
	return "", false
}
