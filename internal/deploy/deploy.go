// Package deploy publishes a project into the shared course library repository.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oseda-dev/oseda/internal/git"
	"github.com/oseda-dev/oseda/internal/models"
	"github.com/oseda-dev/oseda/internal/output"
	"github.com/oseda-dev/oseda/internal/project"
)

const (
	DefaultCommitMessage = "Add new course"
	CoursesDir           = "courses"
)

// Recorder stores the outcome of each publish attempt.
type Recorder interface {
	RecordEvent(ctx context.Context, e *models.Event) error
}

// Options configures a Publisher.
type Options struct {
	Dir           string
	Validate      project.ValidateOptions
	CommitMessage string
	// Exclude lists top-level entries of the project left out of the copy.
	Exclude []string
	DryRun  bool
	// TempDir is the parent of the staging directory; empty means os.TempDir.
	TempDir  string
	Now      func() time.Time
	Recorder Recorder
}

// Result describes a publish that got past validation.
type Result struct {
	Project    string
	Remote     string
	CoursePath string
	Files      int
	DryRun     bool
	Stamped    time.Time
}

// Publisher stages, validates, stamps and pushes a project.
type Publisher struct {
	git       git.Client
	opts      Options
	ui        output.Reporter
	normalize func(string) (string, error)
}

// New creates a Publisher using g for every git operation.
func New(g git.Client, opts Options, ui output.Reporter) *Publisher {
	if opts.CommitMessage == "" {
		opts.CommitMessage = DefaultCommitMessage
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if ui == nil {
		ui = output.Discard()
	}
	return &Publisher{git: g, opts: opts, ui: ui, normalize: git.NormalizeRemoteURL}
}

// Publish copies the project into courses/<name> of remoteURL and pushes it.
// Each step is a hard stop; nothing is pushed unless the project validates.
func (p *Publisher) Publish(ctx context.Context, remoteURL string) (*Result, error) {
	res, err := p.publish(ctx, remoteURL)
	p.record(ctx, remoteURL, res, err)
	return res, err
}

func (p *Publisher) publish(ctx context.Context, remoteURL string) (*Result, error) {
	dir, err := filepath.Abs(p.opts.Dir)
	if err != nil {
		return nil, &Error{Phase: PhaseStage, Err: err}
	}
	name := filepath.Base(dir)

	remote, err := p.normalize(remoteURL)
	if err != nil {
		return nil, &Error{Phase: PhaseRemote, Err: err}
	}
	res := &Result{Project: name, Remote: remote, CoursePath: filepath.Join(CoursesDir, name), DryRun: p.opts.DryRun}

	staging, err := os.MkdirTemp(p.opts.TempDir, "oseda-deploy-*")
	if err != nil {
		return res, &Error{Phase: PhaseStage, Err: fmt.Errorf("create staging directory: %w", err)}
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			p.ui.Warning("Could not remove staging directory %s: %v", staging, err)
		}
	}()
	p.ui.VerboseLog("Staging in %s", staging)

	p.ui.Info("Cloning %s (sparse: %s/)", remote, CoursesDir)
	if err := p.git.CloneNoCheckout(ctx, staging, remote); err != nil {
		return res, &Error{Phase: PhaseClone, Err: err}
	}
	if err := p.git.SparseCheckout(ctx, staging, CoursesDir); err != nil {
		return res, &Error{Phase: PhaseClone, Err: err}
	}
	if err := p.git.Checkout(ctx, staging); err != nil {
		return res, &Error{Phase: PhaseClone, Err: err}
	}

	files, err := copyTree(dir, filepath.Join(staging, res.CoursePath), p.opts.Exclude)
	res.Files = files
	if err != nil {
		return res, &Error{Phase: PhaseCopy, Err: err}
	}
	p.ui.VerboseLog("Copied %d files into %s", files, res.CoursePath)

	cfg, err := project.Validate(ctx, dir, p.opts.Validate)
	if err != nil {
		return res, &Error{Phase: PhaseValidate, Err: err}
	}

	if p.opts.DryRun {
		return res, nil
	}

	if err := project.StampLastUpdated(dir, cfg, p.opts.Now()); err != nil {
		return res, &Error{Phase: PhaseStamp, Err: err}
	}
	res.Stamped = cfg.LastUpdated

	if err := p.git.AddAll(ctx, staging); err != nil {
		return res, &Error{Phase: PhaseCommit, Err: err}
	}
	if err := p.git.Commit(ctx, staging, p.opts.CommitMessage); err != nil {
		return res, &Error{Phase: PhaseCommit, Err: err}
	}
	p.ui.Info("Pushing %s to %s", res.CoursePath, remote)
	if err := p.git.Push(ctx, staging); err != nil {
		return res, &Error{Phase: PhasePush, Err: err}
	}
	return res, nil
}

func (p *Publisher) record(ctx context.Context, remoteURL string, res *Result, err error) {
	if p.opts.Recorder == nil {
		return
	}
	e := &models.Event{
		Kind:    models.EventDeploy,
		Project: filepath.Base(p.opts.Dir),
		Path:    p.opts.Dir,
		Remote:  remoteURL,
		Status:  models.EventStatusOK,
	}
	if abs, absErr := filepath.Abs(p.opts.Dir); absErr == nil {
		e.Project = filepath.Base(abs)
		e.Path = abs
	}
	if res != nil {
		e.Remote = res.Remote
		if res.DryRun {
			e.Status = models.EventStatusDryRun
		}
	}
	if err != nil {
		e.Status = models.EventStatusFailed
		e.Message = err.Error()
		var derr *Error
		if errors.As(err, &derr) {
			e.Phase = string(derr.Phase)
		}
	}
	if recErr := p.opts.Recorder.RecordEvent(ctx, e); recErr != nil {
		p.ui.Warning("Could not record deploy history: %v", recErr)
	}
}
