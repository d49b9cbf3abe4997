// Package check decides whether a project is ready to deploy: it validates the
// descriptor, builds and serves the project, and probes the local server.
package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oseda-dev/oseda/internal/daemon"
	"github.com/oseda-dev/oseda/internal/output"
	"github.com/oseda-dev/oseda/internal/ports"
	"github.com/oseda-dev/oseda/internal/project"
	"github.com/oseda-dev/oseda/internal/runner"
)

const (
	DefaultGracePeriod  = 10 * time.Second
	DefaultSettle       = time.Second
	DefaultProbeTimeout = 5 * time.Second
	DefaultReclaimWait  = 2 * time.Second
)

// Server is the build-and-serve process the checker drives.
type Server interface {
	Run(ctx context.Context) error
	Ready() <-chan struct{}
}

// Options configures a Checker. Zero values select the defaults.
type Options struct {
	Dir      string
	Validate project.ValidateOptions
	// Runner is used to construct the default Server; Dir and Port are set by the checker.
	Runner runner.Options

	GracePeriod time.Duration
	// WaitForReady probes Settle after the serve process spawns instead of
	// waiting the full grace period.
	WaitForReady bool
	Settle       time.Duration
	ProbeTimeout time.Duration
	ReclaimWait  time.Duration

	Client    *http.Client
	NewServer func(port int) Server
	Killer    *ports.Killer
}

// Checker runs readiness checks for one project directory.
type Checker struct {
	opts Options
	ui   output.Reporter
}

// New creates a Checker, filling in defaults for unset options.
func New(opts Options, ui output.Reporter) *Checker {
	if ui == nil {
		ui = output.Discard()
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = DefaultGracePeriod
	}
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}
	if opts.ReclaimWait <= 0 {
		opts.ReclaimWait = DefaultReclaimWait
	}
	if opts.Client == nil {
		opts.Client = &http.Client{
			Timeout:   opts.ProbeTimeout,
			Transport: &http.Transport{DisableKeepAlives: true},
		}
	}
	if opts.Killer == nil {
		opts.Killer = ports.NewKiller()
	}
	if opts.NewServer == nil {
		opts.NewServer = func(port int) Server {
			ro := opts.Runner
			ro.Dir = opts.Dir
			ro.Port = port
			return runner.New(ro, ui)
		}
	}
	return &Checker{opts: opts, ui: ui}
}

// Check validates the project, serves it on port, probes it and reclaims the
// serve process before returning.
func (c *Checker) Check(ctx context.Context, port int) Status {
	if _, err := project.Validate(ctx, c.opts.Dir, c.opts.Validate); err != nil {
		return NotReady(fromValidation(err))
	}

	srv := c.opts.NewServer(port)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var status Status
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		// Cancelling the run context is how the serve process is reclaimed.
		defer cancel()
		if err := c.wait(gctx, srv); err != nil {
			return nil
		}
		status = c.probe(gctx, port)
		return nil
	})
	runErr := g.Wait()

	// Only a spawned serve process can be holding the port on our behalf.
	if spawned(srv) {
		c.reclaim(ctx, port)
	} else {
		c.ui.VerboseLog("Serve process never started, leaving port %d alone", port)
	}

	switch {
	case runErr != nil:
		return NotReady(fromRun(runErr))
	case status.Ready || status.Err != nil:
		return status
	default:
		return NotReady(&CheckError{Kind: KindInterrupted, Message: "check interrupted", Err: ctx.Err()})
	}
}

func spawned(srv Server) bool {
	select {
	case <-srv.Ready():
		return true
	default:
		return false
	}
}

func (c *Checker) wait(ctx context.Context, srv Server) error {
	if !c.opts.WaitForReady {
		c.ui.VerboseLog("Waiting %s for the project to come up", c.opts.GracePeriod)
		return sleep(ctx, c.opts.GracePeriod)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-srv.Ready():
	}
	return sleep(ctx, c.opts.Settle)
}

func (c *Checker) probe(ctx context.Context, port int) Status {
	url := fmt.Sprintf("http://localhost:%d", port)
	c.ui.VerboseLog("Probing %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return NotReady(&CheckError{Kind: KindProbeUnreachable, Message: "could not ping local presentation at " + url, Err: err})
	}
	resp, err := c.opts.Client.Do(req)
	if err != nil {
		return NotReady(&CheckError{Kind: KindProbeUnreachable, Message: "could not ping local presentation at " + url, Err: err})
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return NotReady(&CheckError{
			Kind:    KindProbeUnhealthy,
			Message: fmt.Sprintf("local presentation at %s returned %s", url, resp.Status),
		})
	}
	return DeployReady()
}

// reclaim makes sure nothing is left listening on port once the runner has
// returned: first the recorded serve process, then whatever owns the port.
// Failures are warnings only.
func (c *Checker) reclaim(ctx context.Context, port int) {
	if ports.WaitFree(ctx, port, c.opts.ReclaimWait) {
		return
	}
	c.ui.Warning("Port %d is still in use after shutdown, reclaiming it", port)

	if pf := c.opts.Runner.PIDFile; pf != nil {
		if rec, running := pf.IsRunning(); running && rec.Port == port {
			if err := pf.Signal(syscall.SIGTERM); err != nil {
				c.ui.Warning("Could not signal serve process %d: %v", rec.PID, err)
			} else if ports.WaitFree(ctx, port, c.opts.ReclaimWait) {
				c.removeStalePIDFile(pf)
				return
			}
		}
	}

	pids, err := c.opts.Killer.Kill(ctx, port)
	switch {
	case errors.Is(err, ports.ErrNoOwner):
		c.ui.Warning("No process found on port %d", port)
	case err != nil:
		c.ui.Warning("Could not free port %d: %v", port, err)
	default:
		c.ui.VerboseLog("Terminated %v on port %d", pids, port)
	}
}

func (c *Checker) removeStalePIDFile(pf *daemon.PIDFile) {
	if err := pf.Remove(); err != nil {
		c.ui.VerboseLog("Could not remove PID file: %v", err)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
