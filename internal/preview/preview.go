// Package preview renders a project's Markdown slides in the terminal.
package preview

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
)

// ErrNoMarkdown is returned for projects whose slides are not Markdown.
var ErrNoMarkdown = errors.New("no Markdown slides to preview")

// SlidesPath is the Markdown slide source inside a project.
var SlidesPath = filepath.Join("slides", "slides.md")

// Split breaks a slide source into slides on reveal.js "---" separator lines.
func Split(md string) []string {
	var slides []string
	var cur []string
	flush := func() {
		s := strings.TrimSpace(strings.Join(cur, "\n"))
		if s != "" {
			slides = append(slides, s)
		}
		cur = cur[:0]
	}
	for _, line := range strings.Split(strings.ReplaceAll(md, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "---" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return slides
}

// Load reads the Markdown slides of the project in dir.
func Load(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, SlidesPath))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w in %s", ErrNoMarkdown, dir)
	}
	if err != nil {
		return "", fmt.Errorf("read slides: %w", err)
	}
	return string(data), nil
}

// Render renders each slide with glamour under a numbered header. An empty
// style picks one from the terminal background.
func Render(md, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStylePath(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}

	slides := Split(md)
	var b strings.Builder
	for i, s := range slides {
		out, err := r.Render(s)
		if err != nil {
			return "", fmt.Errorf("render slide %d: %w", i+1, err)
		}
		fmt.Fprintf(&b, "── slide %d/%d ──\n%s\n", i+1, len(slides), out)
	}
	return b.String(), nil
}
