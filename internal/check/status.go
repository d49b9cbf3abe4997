package check

import (
	"errors"
	"fmt"

	"github.com/oseda-dev/oseda/internal/project"
	"github.com/oseda-dev/oseda/internal/runner"
)

// Kind classifies why a project is not ready to deploy.
type Kind string

const (
	KindMissingConfig      Kind = "missing-config"
	KindBadConfig          Kind = "bad-config"
	KindIdentityMismatch   Kind = "identity-mismatch"
	KindDirectoryMismatch  Kind = "directory-mismatch"
	KindBuildFailure       Kind = "build-failure"
	KindServeLaunchFailure Kind = "serve-launch-failure"
	KindProbeUnreachable   Kind = "probe-unreachable"
	KindProbeUnhealthy     Kind = "probe-unhealthy"
	KindInterrupted        Kind = "interrupted"
)

// CheckError is the reason attached to a NotReady status.
type CheckError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *CheckError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CheckError) Unwrap() error { return e.Err }

// Status is the outcome of a readiness check.
type Status struct {
	Ready bool
	Err   *CheckError
}

// DeployReady is the status of a project that built, served and answered the probe.
func DeployReady() Status { return Status{Ready: true} }

// NotReady wraps the reason a project failed the check.
func NotReady(err *CheckError) Status { return Status{Err: err} }

func (s Status) String() string {
	if s.Ready {
		return "deploy ready"
	}
	if s.Err == nil {
		return "not ready"
	}
	return "not ready: " + s.Err.Error()
}

// fromValidation maps a validator failure to the matching kind, keeping its message.
func fromValidation(err error) *CheckError {
	var cfgErr *project.ConfigError
	msg := err.Error()
	if errors.As(err, &cfgErr) {
		msg = cfgErr.Message
	}
	kind := KindBadConfig
	switch {
	case errors.Is(err, project.ErrMissingConfig):
		kind = KindMissingConfig
	case errors.Is(err, project.ErrBadConfig):
		kind = KindBadConfig
	case errors.Is(err, project.ErrIdentityMismatch):
		kind = KindIdentityMismatch
	case errors.Is(err, project.ErrDirectoryMismatch):
		kind = KindDirectoryMismatch
	}
	return &CheckError{Kind: kind, Message: msg, Err: err}
}

// fromRun maps a runner failure to a build or serve-launch kind.
func fromRun(err error) *CheckError {
	if errors.Is(err, runner.ErrServe) {
		return &CheckError{Kind: KindServeLaunchFailure, Message: "could not serve project", Err: err}
	}
	return &CheckError{Kind: KindBuildFailure, Message: "could not build project", Err: err}
}
