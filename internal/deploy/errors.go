package deploy

import "fmt"

// Phase names the publish step that failed.
type Phase string

const (
	PhaseRemote   Phase = "remote-url"
	PhaseStage    Phase = "stage"
	PhaseClone    Phase = "clone"
	PhaseCopy     Phase = "copy"
	PhaseValidate Phase = "validate"
	PhaseStamp    Phase = "stamp"
	PhaseCommit   Phase = "commit"
	PhasePush     Phase = "push"
)

// Error reports the phase a publish stopped at. The wrapped error is the
// underlying *git.CommandError, *project.ConfigError or filesystem error.
type Error struct {
	Phase Phase
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("deploy failed at %s: %v", e.Phase, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
