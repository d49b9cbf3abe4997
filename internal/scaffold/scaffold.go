// Package scaffold creates the file layout of a new slide-deck project.
package scaffold

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/oseda-dev/oseda/internal/models"
	"github.com/oseda-dev/oseda/internal/output"
	"github.com/oseda-dev/oseda/internal/project"
)

//go:embed static/*.tmpl
var staticFS embed.FS

// ErrExists is returned when the project directory already has content.
var ErrExists = errors.New("project directory already exists")

// Data is what the static templates are rendered with.
type Data struct {
	Title    string
	Author   string
	Color    models.Color
	Template models.Template
}

// Markdown reports whether slides are written in Markdown.
func (d Data) Markdown() bool { return d.Template != models.TemplateHTML }

// SlidesFile returns the slide file name for the chosen template.
func (d Data) SlidesFile() string {
	if f := d.Template.SlidesFile(); f != "" {
		return f
	}
	return models.TemplateMarkdown.SlidesFile()
}

// Hex returns the accent color, black when none was chosen.
func (d Data) Hex() string {
	if h := d.Color.Hex(); h != "" {
		return h
	}
	return models.ColorBlack.Hex()
}

// file maps an embedded template to its path inside the project.
type file struct {
	tmpl string
	path func(Data) string
}

func fixed(p string) func(Data) string { return func(Data) string { return p } }

var files = []file{
	{"package.json.tmpl", fixed("package.json")},
	{"vite.config.js.tmpl", fixed("vite.config.js")},
	{"index.html.tmpl", fixed("index.html")},
	{"main.js.tmpl", fixed(filepath.Join("src", "main.js"))},
	{"custom.css.tmpl", fixed(filepath.Join("css", "custom.css"))},
	{"slides.md.tmpl", nil},
	{"slides.html.tmpl", nil},
}

// Render writes the static project files into dir and returns their paths
// relative to dir. Only the slide template matching d.Template is written.
func Render(dir string, d Data) ([]string, error) {
	var written []string
	for _, f := range files {
		rel := ""
		switch {
		case f.path != nil:
			rel = f.path(d)
		case strings.TrimSuffix(f.tmpl, ".tmpl") == d.SlidesFile():
			rel = filepath.Join("slides", d.SlidesFile())
		default:
			continue
		}

		body, err := render(f.tmpl, d)
		if err != nil {
			return written, err
		}
		target := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, fmt.Errorf("create %s: %w", filepath.Dir(rel), err)
		}
		if err := os.WriteFile(target, body, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", rel, err)
		}
		written = append(written, rel)
	}
	return written, nil
}

func render(name string, d Data) ([]byte, error) {
	t, err := template.ParseFS(staticFS, "static/"+name)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, d); err != nil {
		return nil, fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Installer installs a project's npm dependencies.
type Installer interface {
	Install(ctx context.Context, dir string) error
}

// InstallSteps are the npm invocations that bootstrap a project.
var InstallSteps = [][]string{
	{"install", "--save-dev", "vite", "http-server"},
	{"install", "reveal.js", "serve", "vite-plugin-singlefile"},
}

// NPM installs dependencies with the npm binary.
type NPM struct {
	Stdout io.Writer
	UI     output.Reporter
}

// Install runs every InstallSteps invocation in dir, stopping at the first failure.
func (n NPM) Install(ctx context.Context, dir string) error {
	for _, args := range InstallSteps {
		cmd := exec.CommandContext(ctx, "npm", args...)
		cmd.Dir = dir
		var stderr bytes.Buffer
		cmd.Stdout = n.Stdout
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = err.Error()
			}
			return fmt.Errorf("npm %s: %s", strings.Join(args, " "), msg)
		}
		if n.UI != nil {
			n.UI.Success("Bootstrapped npm %s", strings.Join(args, " "))
		}
	}
	return nil
}

// Options configures Create.
type Options struct {
	// Parent is the directory the project directory is created in.
	Parent     string
	Title      string
	Author     string
	Categories []models.Category
	Color      models.Color
	Template   models.Template
	// Installer is skipped when nil.
	Installer Installer
	Now       func() time.Time
}

// Create makes <parent>/<title>, writes the static files and the descriptor,
// then installs dependencies. It returns the project directory.
func Create(ctx context.Context, opts Options, ui output.Reporter) (string, error) {
	if ui == nil {
		ui = output.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	d := Data{
		Title:    models.NormalizeTitle(opts.Title),
		Author:   opts.Author,
		Color:    opts.Color,
		Template: opts.Template,
	}
	if d.Title == "" {
		return "", errors.New("project title is required")
	}
	if len(opts.Categories) == 0 {
		return "", errors.New("at least one category is required")
	}

	dir := filepath.Join(opts.Parent, d.Title)
	if entries, err := os.ReadDir(dir); err == nil && len(entries) > 0 {
		return dir, fmt.Errorf("%w: %s", ErrExists, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return dir, fmt.Errorf("create project directory: %w", err)
	}

	written, err := Render(dir, d)
	if err != nil {
		return dir, err
	}
	for _, f := range written {
		ui.VerboseLog("Wrote %s", f)
	}

	ui.Info("Saving config file...")
	cfg := &models.ProjectConfig{
		Title:       d.Title,
		Author:      d.Author,
		Categories:  opts.Categories,
		LastUpdated: opts.Now().UTC(),
		Color:       d.Color,
	}
	if err := project.Write(dir, cfg); err != nil {
		return dir, err
	}

	if opts.Installer == nil {
		return dir, nil
	}
	if err := opts.Installer.Install(ctx, dir); err != nil {
		return dir, fmt.Errorf("install dependencies: %w", err)
	}
	return dir, nil
}
