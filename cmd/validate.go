package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oseda-dev/oseda/internal/models"
	"github.com/oseda-dev/oseda/internal/project"
)

var validateSkipGit bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the project descriptor",
	Long: `Validate oseda-config.json in the project directory.

The descriptor must parse, its author must match git user.name (skipped with
--skip-git or when GITHUB_ACTIONS=true) and its title must match the directory name.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateRun(cmd.Context())
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateSkipGit, "skip-git", false, "Skip the git identity check")
	rootCmd.AddCommand(validateCmd)
}

func validateRun(ctx context.Context) error {
	dir, err := projectDir()
	if err != nil {
		return err
	}

	cfg, err := project.Validate(ctx, dir, validateOptions(validateSkipGit))
	if err != nil {
		return err
	}

	ui.Success("%s is valid", project.ConfigPath(dir))
	printConfig(cfg)
	return nil
}

// printConfig prints the descriptor fields in verbose mode.
func printConfig(cfg *models.ProjectConfig) {
	if !ui.Verbose {
		return
	}
	cats := make([]string, len(cfg.Categories))
	for i, c := range cfg.Categories {
		cats[i] = c.Label()
	}
	fmt.Fprintf(ui.Out, "  %-14s %s\n", "title", cfg.Title)
	fmt.Fprintf(ui.Out, "  %-14s %s\n", "author", cfg.Author)
	fmt.Fprintf(ui.Out, "  %-14s %s\n", "categories", strings.Join(cats, ", "))
	fmt.Fprintf(ui.Out, "  %-14s %s\n", "last updated", cfg.LastUpdated.Format("2006-01-02 15:04:05Z"))
	if cfg.Color != "" {
		fmt.Fprintf(ui.Out, "  %-14s %s %s\n", "color", cfg.Color, cfg.Color.Hex())
	}
}
