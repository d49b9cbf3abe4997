package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oseda-dev/oseda/internal/deploy"
	"github.com/oseda-dev/oseda/internal/git"
)

var deploySkipGit bool

var deployCmd = &cobra.Command{
	Use:   "deploy [remote-url]",
	Short: "Publish the project into a course library",
	Long: `Clone the course library (sparse, courses/ only), copy the project into
courses/<name>, validate it, stamp last_updated and push.

The remote is usually your fork of the library (see 'oseda fork'). Without an
argument deploy.remote from the config is used. HTTPS GitHub URLs are converted
to SSH form.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		remote := ""
		if len(args) > 0 {
			remote = args[0]
		}
		return deployRun(cmd.Context(), remote)
	},
}

func init() {
	deployCmd.Flags().BoolVar(&deploySkipGit, "skip-git", false, "Skip the git identity check")
	rootCmd.AddCommand(deployCmd)
}

func deployRun(ctx context.Context, remote string) error {
	if remote == "" {
		remote = viper.GetString("deploy.remote")
	}
	if remote == "" {
		return errors.New("no remote given: pass a remote URL or set deploy.remote")
	}

	dir, err := projectDir()
	if err != nil {
		return err
	}

	opts := deploy.Options{
		Dir:           dir,
		Validate:      validateOptions(deploySkipGit),
		CommitMessage: viper.GetString("deploy.commit_message"),
		Exclude:       viper.GetStringSlice("deploy.exclude"),
		DryRun:        dryRun,
	}
	if s, err := getStore(); err != nil {
		ui.Warning("Deploy history unavailable: %v", err)
	} else {
		opts.Recorder = s
	}

	res, err := deploy.New(gitClient, opts, ui).Publish(ctx, remote)
	if err != nil {
		var cmdErr *git.CommandError
		if errors.As(err, &cmdErr) {
			ui.VerboseLog("git %v failed", cmdErr.Args)
		}
		return err
	}

	if res.DryRun {
		ui.DryRunMsg("Would push %d files to %s in %s", res.Files, res.CoursePath, res.Remote)
		return nil
	}
	ui.Success("Published %s to %s (%s)", res.Project, res.Remote, res.CoursePath)
	fmt.Fprintf(ui.Out, "  last updated %s\n", res.Stamped.Format("2006-01-02 15:04:05Z"))
	return nil
}
