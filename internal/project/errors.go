package project

import (
	"errors"
	"fmt"
)

// Error kinds returned by Validate. Use errors.Is to test for a kind.
var (
	ErrMissingConfig     = errors.New("missing config file")
	ErrBadConfig         = errors.New("bad config file")
	ErrIdentityMismatch  = errors.New("git identity does not match author")
	ErrDirectoryMismatch = errors.New("project title does not match directory")
)

// ConfigError is the single failure Validate returns when a check does not pass.
type ConfigError struct {
	Kind    error
	Dir     string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("%v: %s", e.Kind, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the error's kind so callers can write errors.Is(err, ErrBadConfig).
func (e *ConfigError) Is(target error) bool { return e.Kind == target }

func (e *ConfigError) Unwrap() error { return e.Err }
