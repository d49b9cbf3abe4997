package scaffold

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oseda-dev/oseda/internal/models"
	"github.com/oseda-dev/oseda/internal/project"
)

type fakeInstaller struct {
	dirs []string
	err  error
}

func (f *fakeInstaller) Install(_ context.Context, dir string) error {
	f.dirs = append(f.dirs, dir)
	return f.err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRender_Markdown(t *testing.T) {
	dir := t.TempDir()

	written, err := Render(dir, Data{Title: "algo-101", Author: "jdoe", Color: models.ColorNavy, Template: models.TemplateMarkdown})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"package.json",
		"vite.config.js",
		"index.html",
		filepath.Join("src", "main.js"),
		filepath.Join("css", "custom.css"),
		filepath.Join("slides", "slides.md"),
	}, written)

	assert.Contains(t, readFile(t, filepath.Join(dir, "package.json")), `"name": "algo-101"`)
	assert.Contains(t, readFile(t, filepath.Join(dir, "index.html")), "<title>algo-101</title>")
	assert.Contains(t, readFile(t, filepath.Join(dir, "css", "custom.css")), models.ColorNavy.Hex())
	assert.Contains(t, readFile(t, filepath.Join(dir, "slides", "slides.md")), "# algo-101")

	mainJS := readFile(t, filepath.Join(dir, "src", "main.js"))
	assert.Contains(t, mainJS, "slides/slides.md?raw")
	assert.Contains(t, mainJS, "plugins: [Markdown]")

	_, err = os.Stat(filepath.Join(dir, "slides", "slides.html"))
	assert.True(t, os.IsNotExist(err))
}

func TestRender_HTML(t *testing.T) {
	dir := t.TempDir()

	written, err := Render(dir, Data{Title: "intro-deck", Author: "jdoe", Template: models.TemplateHTML})
	require.NoError(t, err)
	assert.Contains(t, written, filepath.Join("slides", "slides.html"))

	mainJS := readFile(t, filepath.Join(dir, "src", "main.js"))
	assert.Contains(t, mainJS, "slides/slides.html?raw")
	assert.NotContains(t, mainJS, "Markdown")
	assert.Contains(t, readFile(t, filepath.Join(dir, "css", "custom.css")), "#000000", "no color falls back to black")
}

func TestCreate_WritesProject(t *testing.T) {
	parent := t.TempDir()
	inst := &fakeInstaller{}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	dir, err := Create(context.Background(), Options{
		Parent:     parent,
		Title:      "algo 101",
		Author:     "jdoe",
		Categories: []models.Category{models.CategoryComputerScience},
		Color:      models.ColorTeal,
		Template:   models.TemplateMarkdown,
		Installer:  inst,
		Now:        func() time.Time { return now },
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(parent, "algo-101"), dir)
	assert.Equal(t, []string{dir}, inst.dirs)

	cfg, err := project.Validate(context.Background(), dir, project.ValidateOptions{SkipIdentityCheck: true})
	require.NoError(t, err, "a freshly created project validates")
	assert.Equal(t, "algo-101", cfg.Title)
	assert.Equal(t, "jdoe", cfg.Author)
	assert.Equal(t, []models.Category{models.CategoryComputerScience}, cfg.Categories)
	assert.Equal(t, models.ColorTeal, cfg.Color)
	assert.Equal(t, now, cfg.LastUpdated)
}

func TestCreate_RefusesExistingProject(t *testing.T) {
	parent := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(parent, "algo-101"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(parent, "algo-101", "notes.txt"), []byte("keep"), 0o644))

	_, err := Create(context.Background(), Options{
		Parent:     parent,
		Title:      "algo-101",
		Categories: []models.Category{models.CategoryScience},
	}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExists))
	assert.Equal(t, "keep", readFile(t, filepath.Join(parent, "algo-101", "notes.txt")))
}

func TestCreate_RequiresTitleAndCategory(t *testing.T) {
	_, err := Create(context.Background(), Options{Parent: t.TempDir(), Title: "  "}, nil)
	assert.EqualError(t, err, "project title is required")

	_, err = Create(context.Background(), Options{Parent: t.TempDir(), Title: "deck"}, nil)
	assert.EqualError(t, err, "at least one category is required")
}

func TestCreate_InstallFailure(t *testing.T) {
	inst := &fakeInstaller{err: errors.New("npm install reveal.js: ENOTFOUND")}

	dir, err := Create(context.Background(), Options{
		Parent:     t.TempDir(),
		Title:      "deck",
		Categories: []models.Category{models.CategoryScience},
		Installer:  inst,
	}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "install dependencies")
	assert.FileExists(t, filepath.Join(dir, models.ConfigFileName), "descriptor is written before install")
}
