package cmd

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oseda-dev/oseda/internal/git"
)

const defaultForkURL = "https://github.com/oseda-dev/oseda-lib/fork"

var (
	forkWeb bool

	ghClient git.GitHubClient = git.NewGitHubClient()
	// openBrowser opens a URL in the default browser, replaceable in tests.
	openBrowser = defaultOpenBrowser
)

var forkCmd = &cobra.Command{
	Use:   "fork",
	Short: "Fork the course library to publish into",
	Long: `Fork the shared course library into your GitHub account.

With an authenticated gh CLI the fork is created directly. Otherwise the fork
page is opened in the browser, and printed if no browser can be opened.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return forkRun(cmd.Context())
	},
}

func init() {
	forkCmd.Flags().BoolVar(&forkWeb, "web", false, "Open the fork page instead of using gh")
	rootCmd.AddCommand(forkCmd)
}

func forkRun(ctx context.Context) error {
	forkURL := viper.GetString("fork.url")

	if dryRun {
		ui.DryRunMsg("Would fork %s", forkURL)
		return nil
	}

	if !forkWeb && ghClient.Available() {
		owner, repo, err := git.ExtractOwnerRepo(forkURL)
		if err != nil {
			return err
		}
		info, err := ghClient.Fork(ctx, owner, repo)
		if err == nil {
			ui.Success("Forked %s/%s to %s", owner, repo, info.URL)
			ui.Info("Publish with: oseda deploy %s", info.URL)
			return nil
		}
		ui.Warning("gh fork failed: %v", err)
	}

	if err := openBrowser(forkURL); err != nil {
		ui.VerboseLog("Could not open browser: %v", err)
		ui.Info("Open this page to fork the course library:")
		fmt.Fprintf(ui.Out, "  %s\n", forkURL)
		return nil
	}
	ui.Success("Opened %s", forkURL)
	return nil
}

func defaultOpenBrowser(url string) error {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.Command("open", url)
	case "windows":
		c = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		c = exec.Command("xdg-open", url)
	}
	return c.Start()
}
