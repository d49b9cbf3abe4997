package git

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
)

// ErrRemoteURLFormat is returned when a remote URL is neither an https web URL nor an
// ssh remote.
var ErrRemoteURLFormat = errors.New("unsupported remote URL format")

// CommandError is returned when a git invocation fails. It carries the arguments so
// the failing step can be diagnosed.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	cmd := "git " + strings.Join(e.Args, " ")
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %s", cmd, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", cmd, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Client defines the git operations the lifecycle commands need. All methods take the
// directory to run in.
type Client interface {
	ConfigValue(ctx context.Context, dir, key string) (string, error)
	CloneNoCheckout(ctx context.Context, dir, remote string) error
	SparseCheckout(ctx context.Context, dir string, paths ...string) error
	Checkout(ctx context.Context, dir string) error
	AddAll(ctx context.Context, dir string) error
	Commit(ctx context.Context, dir, message string) error
	Push(ctx context.Context, dir string) error
}

// RealClient implements Client using the git binary.
type RealClient struct{}

// NewClient returns a new RealClient.
func NewClient() *RealClient {
	return &RealClient{}
}

func gitCmd(ctx context.Context, dir string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", dir}, args...)
	out, err := exec.CommandContext(ctx, "git", fullArgs...).Output()
	if err != nil {
		cerr := &CommandError{Args: args, Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cerr.Stderr = strings.TrimSpace(string(exitErr.Stderr))
		}
		return "", cerr
	}
	return strings.TrimSpace(string(out)), nil
}

// ConfigValue returns the value of a git config key as seen from dir. An unset key is
// returned as "" with no error.
func (c *RealClient) ConfigValue(ctx context.Context, dir, key string) (string, error) {
	out, err := gitCmd(ctx, dir, "config", "--get", key)
	if err == nil {
		return out, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return "", nil
	}
	// Older or unusual setups: fall back to scanning the full listing.
	list, listErr := gitCmd(ctx, dir, "config", "--list")
	if listErr != nil {
		return "", err
	}
	return ParseConfigList(list, key), nil
}

func (c *RealClient) CloneNoCheckout(ctx context.Context, dir, remote string) error {
	_, err := gitCmd(ctx, dir, "clone", "--no-checkout", remote, ".")
	return err
}

// SparseCheckout enables cone-mode sparse checkout limited to paths.
func (c *RealClient) SparseCheckout(ctx context.Context, dir string, paths ...string) error {
	if _, err := gitCmd(ctx, dir, "sparse-checkout", "init", "--cone"); err != nil {
		return err
	}
	_, err := gitCmd(ctx, dir, append([]string{"sparse-checkout", "set"}, paths...)...)
	return err
}

func (c *RealClient) Checkout(ctx context.Context, dir string) error {
	_, err := gitCmd(ctx, dir, "checkout")
	return err
}

func (c *RealClient) AddAll(ctx context.Context, dir string) error {
	_, err := gitCmd(ctx, dir, "add", ".")
	return err
}

func (c *RealClient) Commit(ctx context.Context, dir, message string) error {
	_, err := gitCmd(ctx, dir, "commit", "-m", message)
	return err
}

func (c *RealClient) Push(ctx context.Context, dir string) error {
	_, err := gitCmd(ctx, dir, "push")
	return err
}

// ParseConfigList finds key in the output of `git config --list`. Later entries win,
// matching git's own precedence.
func ParseConfigList(output, key string) string {
	var value string
	for _, line := range strings.Split(output, "\n") {
		k, v, ok := strings.Cut(line, "=")
		if ok && k == key {
			value = v
		}
	}
	return value
}

// NormalizeRemoteURL rewrites an https web URL (https://host/owner/repo/...) into the
// ssh remote form git@host:owner/repo.git. ssh remotes pass through unchanged; any other
// form is rejected.
func NormalizeRemoteURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "git@") {
		if !strings.Contains(raw, ":") {
			return "", fmt.Errorf("%w: %s", ErrRemoteURLFormat, raw)
		}
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRemoteURLFormat, raw, err)
	}
	if u.Scheme != "https" || u.Host == "" {
		return "", fmt.Errorf("%w: %s (expected https://host/owner/repo)", ErrRemoteURLFormat, raw)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return "", fmt.Errorf("%w: cannot parse owner/repo from %s", ErrRemoteURLFormat, raw)
	}
	owner := segments[0]
	repo := strings.TrimSuffix(segments[1], ".git")
	return fmt.Sprintf("git@%s:%s/%s.git", u.Host, owner, repo), nil
}
