package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oseda-dev/oseda/internal/models"
	"github.com/oseda-dev/oseda/internal/prompt"
	"github.com/oseda-dev/oseda/internal/scaffold"
)

var (
	initTitle       string
	initCategories  []string
	initColor       string
	initTemplate    string
	initAuthor      string
	initSkipInstall bool

	// promptFunc asks the init questions interactively, replaceable in tests.
	promptFunc = prompt.Run
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new slide-deck project",
	Long: `Create a new project directory named after the title, write the reveal.js
and vite scaffolding and the oseda-config.json descriptor, then install the
npm dependencies.

Without --title and --category the questions are asked interactively.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initRun(cmd.Context())
	},
}

func init() {
	initCmd.Flags().StringVarP(&initTitle, "title", "t", "", "Project title (spaces become hyphens)")
	initCmd.Flags().StringSliceVarP(&initCategories, "category", "c", nil, "Category (repeatable)")
	initCmd.Flags().StringVar(&initColor, "color", "", "Theme color name or hex")
	initCmd.Flags().StringVar(&initTemplate, "template", string(models.TemplateMarkdown), "Slide template (Markdown or HTML)")
	initCmd.Flags().StringVar(&initAuthor, "author", "", "Author (default: git user.name)")
	initCmd.Flags().BoolVar(&initSkipInstall, "skip-install", false, "Do not run npm install")
	rootCmd.AddCommand(initCmd)
}

// initAnswers collects answers from flags, falling back to the interactive prompt.
func initAnswers() (prompt.Answers, error) {
	if initTitle == "" || len(initCategories) == 0 {
		return promptFunc(os.Stdin, os.Stdout)
	}

	if len(models.NormalizeTitle(initTitle)) < prompt.MinTitleLength {
		return prompt.Answers{}, fmt.Errorf("title must be at least %d characters", prompt.MinTitleLength)
	}
	a := prompt.Answers{Title: initTitle}
	for _, c := range initCategories {
		cat, err := models.ParseCategory(c)
		if err != nil {
			return prompt.Answers{}, err
		}
		a.Categories = append(a.Categories, cat)
	}
	if initColor != "" {
		c, err := models.ParseColor(initColor)
		if err != nil {
			return prompt.Answers{}, err
		}
		a.Color = c
	}
	t, err := models.ParseTemplate(initTemplate)
	if err != nil {
		return prompt.Answers{}, err
	}
	a.Template = t
	return a, nil
}

func initRun(ctx context.Context) error {
	parent, err := projectDir()
	if err != nil {
		return err
	}

	answers, err := initAnswers()
	if errors.Is(err, prompt.ErrAborted) {
		ui.Warning("Aborted, nothing created")
		return nil
	}
	if err != nil {
		return err
	}

	author := initAuthor
	if author == "" {
		author, err = gitClient.ConfigValue(ctx, parent, "user.name")
		if err != nil || author == "" {
			return errors.New("could not determine author: set git user.name or pass --author")
		}
	}

	title := models.NormalizeTitle(answers.Title)
	if dryRun {
		ui.DryRunMsg("Would create %s (author %s, template %s)", filepath.Join(parent, title), author, answers.Template)
		return nil
	}

	opts := scaffold.Options{
		Parent:     parent,
		Title:      answers.Title,
		Author:     author,
		Categories: answers.Categories,
		Color:      answers.Color,
		Template:   answers.Template,
	}
	if !initSkipInstall {
		ui.Info("Installing npm dependencies (this can take a minute)...")
		opts.Installer = scaffold.NPM{Stdout: io.Discard, UI: ui}
	}

	dir, err := scaffold.Create(ctx, opts, ui)
	if err != nil {
		return err
	}

	ui.Success("Created %s", dir)
	fmt.Fprintf(ui.Out, "\nNext steps:\n  cd %s\n  oseda run\n", title)
	return nil
}
