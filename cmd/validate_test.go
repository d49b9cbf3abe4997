package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oseda-dev/oseda/internal/project"
)

// stubGit is a git.Client that records calls and never touches a repository.
type stubGit struct {
	user  string
	calls []string
	fail  map[string]error
}

func (s *stubGit) step(name string) error {
	s.calls = append(s.calls, name)
	return s.fail[name]
}

func (s *stubGit) ConfigValue(context.Context, string, string) (string, error) {
	if s.user == "" {
		return "", errors.New("user.name not set")
	}
	return s.user, nil
}
func (s *stubGit) CloneNoCheckout(context.Context, string, string) error { return s.step("clone") }
func (s *stubGit) SparseCheckout(context.Context, string, ...string) error {
	return s.step("sparse-checkout")
}
func (s *stubGit) Checkout(context.Context, string) error       { return s.step("checkout") }
func (s *stubGit) AddAll(context.Context, string) error         { return s.step("add") }
func (s *stubGit) Commit(context.Context, string, string) error { return s.step("commit") }
func (s *stubGit) Push(context.Context, string) error           { return s.step("push") }

// writeProject creates <parent>/<name> with a descriptor titled name and authored by author,
// and points --dir at it.
func writeProject(t *testing.T, parent, name, author string) string {
	t.Helper()
	dir := filepath.Join(parent, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	body := `{"title":"` + name + `","author":"` + author + `","category":["ComputerScience"],"last_updated":"2024-01-01T00:00:00Z"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "oseda-config.json"), []byte(body), 0o644))
	projectArg = dir
	return dir
}

func TestValidateRun_Valid(t *testing.T) {
	tmp := testEnv(t)
	gitClient = &stubGit{user: "jdoe"}
	writeProject(t, tmp, "algo-101", "jdoe")
	validateSkipGit = false

	require.NoError(t, validateRun(context.Background()))
	assert.Contains(t, stdout(t), "is valid")
}

func TestValidateRun_IdentityMismatch(t *testing.T) {
	tmp := testEnv(t)
	gitClient = &stubGit{user: "someone-else"}
	writeProject(t, tmp, "algo-101", "jdoe")
	validateSkipGit = false

	err := validateRun(context.Background())
	assert.ErrorIs(t, err, project.ErrIdentityMismatch)
}

func TestValidateRun_SkipGit(t *testing.T) {
	tmp := testEnv(t)
	gitClient = &stubGit{user: "someone-else"}
	writeProject(t, tmp, "algo-101", "jdoe")
	validateSkipGit = true
	t.Cleanup(func() { validateSkipGit = false })

	assert.NoError(t, validateRun(context.Background()))
}

func TestValidateRun_CISkipsIdentity(t *testing.T) {
	tmp := testEnv(t)
	gitClient = &stubGit{}
	writeProject(t, tmp, "algo-101", "jdoe")
	t.Setenv("GITHUB_ACTIONS", "true")
	initConfig()

	assert.NoError(t, validateRun(context.Background()))
}

func TestValidateRun_DirectoryMismatch(t *testing.T) {
	tmp := testEnv(t)
	gitClient = &stubGit{user: "jdoe"}
	dir := writeProject(t, tmp, "algo-101", "jdoe")
	renamed := filepath.Join(tmp, "algos")
	require.NoError(t, os.Rename(dir, renamed))
	projectArg = renamed

	err := validateRun(context.Background())
	assert.ErrorIs(t, err, project.ErrDirectoryMismatch)
}

func TestValidateRun_MissingConfig(t *testing.T) {
	tmp := testEnv(t)
	projectArg = tmp

	err := validateRun(context.Background())
	assert.ErrorIs(t, err, project.ErrMissingConfig)
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

func TestValidateOptions_CIValues(t *testing.T) {
	tests := []struct {
		env, value string
		want       bool
	}{
		{"GITHUB_ACTIONS", "true", true},
		{"OSEDA_CI", "1", true},
		{"OSEDA_CI", "TRUE", true},
		{"OSEDA_CI", "false", false},
	}
	for _, tt := range tests {
		t.Run(tt.env+"="+tt.value, func(t *testing.T) {
			testEnv(t)
			t.Setenv(tt.env, tt.value)
			initConfig()

			opts := validateOptions(false)
			assert.Equal(t, tt.want, opts.SkipIdentityCheck)
			assert.True(t, validateOptions(true).SkipIdentityCheck)
		})
	}
}
