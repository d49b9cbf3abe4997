package git

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// RepoInfo represents basic GitHub repository information.
type RepoInfo struct {
	Name   string `json:"name"`
	Owner  string `json:"owner"`
	URL    string `json:"url"`
	IsFork bool   `json:"isFork"`
}

// GitHubClient wraps the gh CLI.
type GitHubClient interface {
	Available() bool
	Fork(ctx context.Context, owner, repo string) (*RepoInfo, error)
}

// RealGitHubClient implements GitHubClient using the gh CLI.
type RealGitHubClient struct{}

// NewGitHubClient returns a new RealGitHubClient.
func NewGitHubClient() *RealGitHubClient {
	return &RealGitHubClient{}
}

func ghCmd(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, "gh", args...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("gh %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("gh %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Available reports whether gh is installed and authenticated.
func (c *RealGitHubClient) Available() bool {
	if _, err := exec.LookPath("gh"); err != nil {
		return false
	}
	_, err := ghCmd(context.Background(), "auth", "status")
	return err == nil
}

type repoViewRaw struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	URL    string `json:"url"`
	IsFork bool   `json:"isFork"`
}

// Fork forks owner/repo into the authenticated account without cloning it and returns
// the fork.
func (c *RealGitHubClient) Fork(ctx context.Context, owner, repo string) (*RepoInfo, error) {
	if _, err := ghCmd(ctx, "repo", "fork", owner+"/"+repo, "--clone=false"); err != nil {
		return nil, err
	}

	user, err := ghCmd(ctx, "api", "user", "--jq", ".login")
	if err != nil {
		return nil, err
	}

	out, err := ghCmd(ctx, "repo", "view", user+"/"+repo, "--json", "name,owner,url,isFork")
	if err != nil {
		return nil, err
	}
	var raw repoViewRaw
	if err := json.Unmarshal([]byte(out), &raw); err != nil {
		return nil, fmt.Errorf("parse repo info: %w", err)
	}
	return &RepoInfo{
		Name:   raw.Name,
		Owner:  raw.Owner.Login,
		URL:    raw.URL,
		IsFork: raw.IsFork,
	}, nil
}

// ExtractOwnerRepo parses a GitHub web URL or ssh remote and returns owner/repo.
func ExtractOwnerRepo(remoteURL string) (owner, repo string, err error) {
	normalized, err := NormalizeRemoteURL(remoteURL)
	if err != nil {
		return "", "", err
	}
	_, path, _ := strings.Cut(normalized, ":")
	path = strings.TrimSuffix(path, ".git")
	segments := strings.SplitN(path, "/", 2)
	if len(segments) != 2 || segments[0] == "" || segments[1] == "" {
		return "", "", fmt.Errorf("cannot parse owner/repo from: %s", remoteURL)
	}
	return segments[0], segments[1], nil
}
