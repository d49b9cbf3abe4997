package runner

import (
	"errors"
	"fmt"
	"strings"
)

// Phase names the step of a run that failed.
type Phase string

const (
	PhaseBuild Phase = "build"
	PhaseServe Phase = "serve"
)

var (
	ErrBuild = errors.New("build failed")
	ErrServe = errors.New("serve failed")
)

// RunError reports a failed build or serve step.
type RunError struct {
	Phase   Phase
	Command []string
	Err     error
}

func (e *RunError) Error() string {
	switch e.Phase {
	case PhaseBuild:
		return fmt.Sprintf("build failed (%s): %v", strings.Join(e.Command, " "), e.Err)
	case PhaseServe:
		return fmt.Sprintf("could not serve project (%s): %v", strings.Join(e.Command, " "), e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Phase, strings.Join(e.Command, " "), e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// Is lets errors.Is match a RunError against ErrBuild or ErrServe.
func (e *RunError) Is(target error) bool {
	switch e.Phase {
	case PhaseBuild:
		return target == ErrBuild
	case PhaseServe:
		return target == ErrServe
	}
	return false
}

// Hint returns remediation guidance for the failed phase.
func (e *RunError) Hint() string {
	switch e.Phase {
	case PhaseBuild:
		return "ensure npx and vite are installed and the project dependencies are present (npm install)"
	case PhaseServe:
		return "ensure the serve package is installed (npm install serve) and the port is free"
	}
	return ""
}
