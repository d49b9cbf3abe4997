package project

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oseda-dev/oseda/internal/models"
)

type fakeIdentity struct {
	name string
	err  error
}

func (f fakeIdentity) ConfigValue(_ context.Context, _, key string) (string, error) {
	if key != "user.name" {
		return "", nil
	}
	return f.name, f.err
}

const algoConfig = `{"title":"algo-101","author":"jdoe","categories":["ComputerScience"],"last_updated":"2024-01-01T00:00:00Z"}`

// projectDir creates <tmp>/<name> containing the given descriptor body.
func projectDir(t *testing.T, name, body string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if body != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, models.ConfigFileName), []byte(body), 0o644))
	}
	return dir
}

func opts(name string) ValidateOptions {
	return ValidateOptions{Identity: fakeIdentity{name: name}}
}

func TestValidate_Success(t *testing.T) {
	dir := projectDir(t, "algo-101", algoConfig)

	cfg, err := Validate(context.Background(), dir, opts("jdoe"))
	require.NoError(t, err)
	assert.Equal(t, "algo-101", cfg.Title)
	assert.Equal(t, "jdoe", cfg.Author)
	assert.Equal(t, []models.Category{models.CategoryComputerScience}, cfg.Categories)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), cfg.LastUpdated)

	// Validation is read-only.
	data, err := os.ReadFile(ConfigPath(dir))
	require.NoError(t, err)
	assert.Equal(t, algoConfig, string(data))
}

func TestValidate_DirectoryMismatch(t *testing.T) {
	dir := projectDir(t, "algos", algoConfig)

	_, err := Validate(context.Background(), dir, opts("jdoe"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDirectoryMismatch)
	assert.Contains(t, err.Error(), "algos")
}

func TestValidate_MissingConfig(t *testing.T) {
	dir := projectDir(t, "algo-101", "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html/>"), 0o644))

	_, err := Validate(context.Background(), dir, opts("jdoe"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingConfig)
	assert.Contains(t, err.Error(), dir)

	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, dir, cerr.Dir)
}

func TestValidate_BadConfig(t *testing.T) {
	for name, body := range map[string]string{
		"not json":         "{title: algo-101",
		"wrong type":       `{"title":1,"author":"jdoe","category":[],"last_updated":"2024-01-01T00:00:00Z"}`,
		"missing author":   `{"title":"algo-101","category":[],"last_updated":"2024-01-01T00:00:00Z"}`,
		"bad timestamp":    `{"title":"algo-101","author":"jdoe","category":[],"last_updated":"yesterday"}`,
		"unknown category": `{"title":"algo-101","author":"jdoe","category":["Cooking"],"last_updated":"2024-01-01T00:00:00Z"}`,
	} {
		t.Run(name, func(t *testing.T) {
			dir := projectDir(t, "algo-101", body)
			_, err := Validate(context.Background(), dir, opts("jdoe"))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBadConfig)
		})
	}
}

func TestValidate_IdentityMismatch(t *testing.T) {
	dir := projectDir(t, "algo-101", algoConfig)

	_, err := Validate(context.Background(), dir, opts("someone-else"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIdentityMismatch)
}

func TestValidate_IdentityUnavailable(t *testing.T) {
	dir := projectDir(t, "algo-101", algoConfig)

	_, err := Validate(context.Background(), dir, ValidateOptions{Identity: fakeIdentity{}})
	assert.ErrorIs(t, err, ErrIdentityMismatch)

	_, err = Validate(context.Background(), dir, ValidateOptions{Identity: fakeIdentity{err: errors.New("git not found")}})
	assert.ErrorIs(t, err, ErrIdentityMismatch)

	_, err = Validate(context.Background(), dir, ValidateOptions{})
	assert.ErrorIs(t, err, ErrIdentityMismatch)
}

func TestValidate_SkipIdentityCheck(t *testing.T) {
	dir := projectDir(t, "algo-101", algoConfig)

	cfg, err := Validate(context.Background(), dir, ValidateOptions{
		SkipIdentityCheck: true,
		Identity:          fakeIdentity{name: "someone-else"},
	})
	require.NoError(t, err)
	assert.Equal(t, "algo-101", cfg.Title)
}

func TestValidate_IdentityCheckedBeforeDirectory(t *testing.T) {
	dir := projectDir(t, "algos", algoConfig)

	_, err := Validate(context.Background(), dir, opts("someone-else"))
	assert.ErrorIs(t, err, ErrIdentityMismatch)
	assert.NotErrorIs(t, err, ErrDirectoryMismatch)
}

func TestValidate_Idempotent(t *testing.T) {
	for _, name := range []string{"algo-101", "algos"} {
		dir := projectDir(t, name, algoConfig)
		cfg1, err1 := Validate(context.Background(), dir, opts("jdoe"))
		cfg2, err2 := Validate(context.Background(), dir, opts("jdoe"))
		assert.Equal(t, cfg1, cfg2)
		if err1 == nil {
			assert.NoError(t, err2)
		} else {
			assert.Equal(t, err1.Error(), err2.Error())
		}
	}
}

func TestWriteAndStamp(t *testing.T) {
	dir := projectDir(t, "algo-101", algoConfig)
	cfg, err := Load(dir)
	require.NoError(t, err)

	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, StampLastUpdated(dir, cfg, now))

	reloaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, now, reloaded.LastUpdated)
	assert.Equal(t, cfg.Categories, reloaded.Categories)

	data, err := os.ReadFile(ConfigPath(dir))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"title\": \"algo-101\"")
	assert.Contains(t, string(data), `"categories"`)

	// An older clock never rewinds the stamp.
	require.NoError(t, StampLastUpdated(dir, reloaded, now.Add(-24*time.Hour)))
	again, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, now, again.LastUpdated)
}

func TestStampLastUpdated_KeepsOtherKeys(t *testing.T) {
	body := `{
  "title": "algo-101",
  "author": "jdoe",
  "categories": ["ComputerScience", "Mathematics"],
  "last_updated": "2024-01-01T00:00:00Z",
  "theme": {"font": "Fira <Code>"},
  "notes": "keep me"
}`
	dir := projectDir(t, "algo-101", body)
	cfg, err := Load(dir)
	require.NoError(t, err)

	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, StampLastUpdated(dir, cfg, now))

	data, err := os.ReadFile(ConfigPath(dir))
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "2025-03-04T05:06:07Z", fields["last_updated"])
	assert.Equal(t, []any{"ComputerScience", "Mathematics"}, fields["categories"])
	assert.NotContains(t, fields, "category")
	assert.Equal(t, "keep me", fields["notes"])
	assert.Equal(t, map[string]any{"font": "Fira <Code>"}, fields["theme"])

	reloaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, now, reloaded.LastUpdated)
}
