package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/oseda-dev/oseda/internal/daemon"
	"github.com/oseda-dev/oseda/internal/runner"
)

var (
	runPort  int
	runWatch bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the project and serve it locally",
	Long: `Build the project with the configured build command (default: npx vite build)
and serve the output with the configured serve command (default: serve dist).

The serve process runs until interrupted. With --watch, changes under slides/,
src/, css/ and index.html trigger a rebuild.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRun(cmd.Context())
	},
}

var runStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a serve process is running for the port",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatusRun()
	},
}

var runStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a serve process started by 'oseda run'",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStopRun()
	},
}

func init() {
	runCmd.PersistentFlags().IntVarP(&runPort, "port", "p", 0, "Port to serve on (default: check.port)")
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "Rebuild when project files change")
	runCmd.AddCommand(runStatusCmd)
	runCmd.AddCommand(runStopCmd)
	rootCmd.AddCommand(runCmd)
}

// servePort returns the --port flag value, falling back to check.port.
func servePort(flagValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return viper.GetInt("check.port")
}

// pidFile returns the PID file recording the serve process for port.
func pidFile(port int) *daemon.PIDFile {
	return daemon.NewPIDFile(filepath.Join(viper.GetString("state_dir"), fmt.Sprintf("serve-%d.pid", port)))
}

// runnerOptions builds runner options for dir from config.
func runnerOptions(dir string) runner.Options {
	return runner.Options{
		Dir:          dir,
		BuildCommand: commandLine("run.build_cmd"),
		ServeCommand: commandLine("run.serve_cmd"),
		StopTimeout:  viper.GetDuration("run.stop_timeout"),
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
	}
}

func runRun(ctx context.Context) error {
	dir, err := projectDir()
	if err != nil {
		return err
	}
	port := servePort(runPort)

	pf := pidFile(port)
	if rec, running := pf.IsRunning(); running {
		return fmt.Errorf("already serving on port %d (pid %d), use 'oseda run stop' first", rec.Port, rec.PID)
	}

	opts := runnerOptions(dir)
	opts.Port = port
	opts.PIDFile = pf

	if dryRun {
		ui.DryRunMsg("Would build %s with: %s", filepath.Base(dir), strings.Join(opts.BuildCommand, " "))
		ui.DryRunMsg("Would serve on port %d with: %s", port, strings.Join(opts.ServeCommand, " "))
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, shutdownSignals()...)
	defer stop()

	r := runner.New(opts, ui)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.Run(gctx)
	})
	if runWatch {
		g.Go(func() error {
			select {
			case <-r.Ready():
			case <-gctx.Done():
				return nil
			}
			if err := r.Watch(gctx, runner.DefaultWatchPaths, runner.DefaultDebounce); err != nil {
				ui.Warning("Not watching for changes: %v", err)
			}
			return nil
		})
	}

	err = g.Wait()
	var runErr *runner.RunError
	if errors.As(err, &runErr) {
		ui.Error("%v", runErr)
		ui.Info("Hint: %s", runErr.Hint())
	}
	return err
}

func runStatusRun() error {
	port := servePort(runPort)
	pf := pidFile(port)

	rec, running := pf.IsRunning()
	if !running {
		ui.Info("No serve process running on port %d", port)
		return nil
	}
	ui.Success("Serving on http://localhost:%d (pid %d)", rec.Port, rec.PID)
	return nil
}

func runStopRun() error {
	port := servePort(runPort)
	pf := pidFile(port)

	rec, running := pf.IsRunning()
	if !running {
		// Clean up a stale file left by a crashed run.
		_ = pf.Remove()
		return fmt.Errorf("no serve process running on port %d", port)
	}

	if dryRun {
		ui.DryRunMsg("Would stop serve process %d", rec.PID)
		return nil
	}

	if err := pf.Signal(sigTERM()); err != nil {
		return fmt.Errorf("stop serve process %d: %w", rec.PID, err)
	}
	ui.Success("Sent stop signal to serve process %d", rec.PID)
	return nil
}
