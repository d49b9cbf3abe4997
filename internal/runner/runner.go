// Package runner builds a project's static assets and serves them until the
// caller's context is cancelled.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oseda-dev/oseda/internal/daemon"
	"github.com/oseda-dev/oseda/internal/output"
)

const (
	// PortPlaceholder is replaced by the configured port in ServeCommand arguments.
	PortPlaceholder = "{port}"

	DefaultPort        = 3000
	DefaultStopTimeout = 5 * time.Second
)

var (
	DefaultBuildCommand = []string{"npx", "vite", "build"}
	DefaultServeCommand = []string{"serve", "dist", "-l", PortPlaceholder}
)

// Options configures a Runner. Zero values select the defaults.
type Options struct {
	Dir          string
	BuildCommand []string
	ServeCommand []string
	Port         int
	StopTimeout  time.Duration
	// Env is appended to the current environment of both commands.
	Env []string
	// PIDFile, when set, records the serve process while it runs.
	PIDFile *daemon.PIDFile
	Stdout  io.Writer
	Stderr  io.Writer
}

// Runner owns at most one build and one serve process at a time.
type Runner struct {
	opts Options
	ui   output.Reporter

	buildMu   sync.Mutex
	ready     chan struct{}
	readyOnce sync.Once
}

// New creates a Runner, filling in defaults for unset options.
func New(opts Options, ui output.Reporter) *Runner {
	if len(opts.BuildCommand) == 0 {
		opts.BuildCommand = DefaultBuildCommand
	}
	if len(opts.ServeCommand) == 0 {
		opts.ServeCommand = DefaultServeCommand
	}
	if opts.Port <= 0 {
		opts.Port = DefaultPort
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = DefaultStopTimeout
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if ui == nil {
		ui = output.Discard()
	}
	return &Runner{opts: opts, ui: ui, ready: make(chan struct{})}
}

// Ready is closed once the serve process has been spawned.
func (r *Runner) Ready() <-chan struct{} { return r.ready }

// Run builds the project, starts the serve process and blocks until ctx is
// cancelled or the serve process exits on its own. Cancellation is a normal
// shutdown and returns nil; failing to stop the process is only reported.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.Build(ctx); err != nil {
		if ctx.Err() != nil {
			r.ui.Warning("Interrupted during build")
			return nil
		}
		return err
	}
	if ctx.Err() != nil {
		return nil
	}
	return r.serve(ctx)
}

// Build runs the build command to completion in the project directory.
func (r *Runner) Build(ctx context.Context) error {
	r.buildMu.Lock()
	defer r.buildMu.Unlock()

	args := r.opts.BuildCommand
	r.ui.Info("Building: %s", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	r.prepare(cmd)
	cmd.Cancel = func() error { return killGroup(cmd) }
	cmd.WaitDelay = r.opts.StopTimeout

	if err := cmd.Run(); err != nil {
		return &RunError{Phase: PhaseBuild, Command: args, Err: err}
	}
	r.ui.Success("Build complete")
	return nil
}

func (r *Runner) serve(ctx context.Context) error {
	args := r.serveArgs()
	cmd := exec.Command(args[0], args[1:]...)
	r.prepare(cmd)

	if err := cmd.Start(); err != nil {
		return &RunError{Phase: PhaseServe, Command: args, Err: err}
	}
	pid := cmd.Process.Pid

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	defer r.recordPID(pid)()

	r.ui.Success("Serving on http://localhost:%d (pid %d)", r.opts.Port, pid)
	r.readyOnce.Do(func() { close(r.ready) })

	select {
	case err := <-done:
		if err == nil {
			err = errors.New("serve process exited")
		}
		return &RunError{Phase: PhaseServe, Command: args, Err: err}
	case <-ctx.Done():
		r.ui.Info("Stopping serve process (pid %d)...", pid)
		if err := stop(cmd, done, r.opts.StopTimeout); err != nil {
			r.ui.Warning("Could not stop serve process %d: %v", pid, err)
			return nil
		}
		r.ui.VerboseLog("Serve process %d stopped", pid)
		return nil
	}
}

// recordPID writes pid to the PID file and returns a func that removes it.
// A record held by another live process is left untouched.
func (r *Runner) recordPID(pid int) (release func()) {
	pf := r.opts.PIDFile
	if pf == nil {
		return func() {}
	}
	if rec, running := pf.IsRunning(); running && rec.PID != pid {
		r.ui.Warning("PID file %s belongs to running process %d, not recording pid %d", pf.Path, rec.PID, pid)
		return func() {}
	}
	if err := pf.Write(pid, r.opts.Port); err != nil {
		r.ui.Warning("Could not write PID file: %v", err)
		return func() {}
	}
	return func() {
		if err := pf.Remove(); err != nil && !errors.Is(err, os.ErrNotExist) {
			r.ui.Warning("Could not remove PID file: %v", err)
		}
	}
}

func (r *Runner) serveArgs() []string {
	port := strconv.Itoa(r.opts.Port)
	args := make([]string, len(r.opts.ServeCommand))
	for i, a := range r.opts.ServeCommand {
		args[i] = strings.ReplaceAll(a, PortPlaceholder, port)
	}
	return args
}

func (r *Runner) prepare(cmd *exec.Cmd) {
	cmd.Dir = r.opts.Dir
	cmd.Stdout = r.opts.Stdout
	cmd.Stderr = r.opts.Stderr
	if len(r.opts.Env) > 0 {
		cmd.Env = append(os.Environ(), r.opts.Env...)
	}
	setProcessGroup(cmd)
}

// waitDone waits for the serve process to be reaped or the timeout to pass.
func waitDone(done <-chan error, timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-done:
		return true
	case <-t.C:
		return false
	}
}

func timeoutError(pid int, timeout time.Duration) error {
	return fmt.Errorf("process %d still running %s after kill", pid, timeout)
}
