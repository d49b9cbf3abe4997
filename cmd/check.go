package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oseda-dev/oseda/internal/check"
	"github.com/oseda-dev/oseda/internal/models"
	"github.com/oseda-dev/oseda/internal/output"
)

var (
	checkPort    int
	checkSkipGit bool
)

// errNotReady is returned when a check completes with a not-ready status.
var errNotReady = errors.New("project is not ready to deploy")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the project builds, serves and responds",
	Long: `Validate the descriptor, build and serve the project, then probe
http://localhost:<port>. The project is deploy ready only if the probe
answers 200. The serve process is always stopped before returning.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkRun(cmd.Context())
	},
}

func init() {
	checkCmd.Flags().IntVarP(&checkPort, "port", "p", 0, "Port to serve on (default: check.port)")
	checkCmd.Flags().BoolVar(&checkSkipGit, "skip-git", false, "Skip the git identity check")
	rootCmd.AddCommand(checkCmd)
}

// checkOptions builds checker options for dir from flags and config.
func checkOptions(dir string) check.Options {
	return check.Options{
		Dir:          dir,
		Validate:     validateOptions(checkSkipGit),
		Runner:       runnerOptions(dir),
		GracePeriod:  viper.GetDuration("check.grace_period"),
		WaitForReady: viper.GetBool("check.wait_for_ready"),
	}
}

func checkRun(ctx context.Context) error {
	dir, err := projectDir()
	if err != nil {
		return err
	}
	port := servePort(checkPort)

	pf := pidFile(port)
	if rec, running := pf.IsRunning(); running {
		return fmt.Errorf("already serving on port %d (pid %d), use 'oseda run stop' first", rec.Port, rec.PID)
	}

	if dryRun {
		ui.DryRunMsg("Would check %s on port %d", filepath.Base(dir), port)
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, shutdownSignals()...)
	defer stop()

	opts := checkOptions(dir)
	opts.Runner.PIDFile = pf
	status := check.New(opts, ui).Check(ctx, port)

	recordCheck(ctx, dir, status)

	if status.Ready {
		ui.Success("%s is %s", filepath.Base(dir), output.StatusColor("ready"))
		return nil
	}
	ui.Error("%s", status)
	if hint := checkHint(status.Err); hint != "" {
		ui.Info("Hint: %s", hint)
	}
	return errNotReady
}

// recordCheck stores the outcome in the history database. Failures are warnings.
func recordCheck(ctx context.Context, dir string, status check.Status) {
	s, err := getStore()
	if err != nil {
		ui.Warning("Could not record check: %v", err)
		return
	}
	e := &models.Event{
		Kind:    models.EventCheck,
		Project: filepath.Base(dir),
		Path:    dir,
		Status:  models.EventStatusOK,
	}
	if !status.Ready {
		e.Status = models.EventStatusFailed
		if status.Err != nil {
			e.Phase = string(status.Err.Kind)
			e.Message = status.Err.Error()
		}
	}
	if err := s.RecordEvent(context.WithoutCancel(ctx), e); err != nil {
		ui.Warning("Could not record check: %v", err)
	}
}

func checkHint(err *check.CheckError) string {
	if err == nil {
		return ""
	}
	switch err.Kind {
	case check.KindMissingConfig:
		return "run 'oseda init' to create a project, or pass --dir"
	case check.KindIdentityMismatch:
		return "set git user.name to the project author, or pass --skip-git"
	case check.KindDirectoryMismatch:
		return "rename the directory or the title so they match"
	case check.KindProbeUnreachable:
		return "increase check.grace_period if the project needs longer to start"
	}
	var runErr interface{ Hint() string }
	if errors.As(err, &runErr) {
		return runErr.Hint()
	}
	return ""
}
