// Package project loads, validates, and persists the oseda project descriptor.
package project

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oseda-dev/oseda/internal/models"
)

// CIEnvVar is set by GitHub Actions; a true value skips the identity check.
const CIEnvVar = "GITHUB_ACTIONS"

// IdentitySource resolves version-control identity values such as user.name.
type IdentitySource interface {
	ConfigValue(ctx context.Context, dir, key string) (string, error)
}

// ValidateOptions controls which checks Validate runs.
type ValidateOptions struct {
	SkipIdentityCheck bool
	Identity          IdentitySource
}

// ConfigPath returns the descriptor path inside dir.
func ConfigPath(dir string) string {
	return filepath.Join(dir, models.ConfigFileName)
}

// Load reads and parses the descriptor in dir without running any identity or
// directory checks.
func Load(dir string) (*models.ProjectConfig, error) {
	data, err := os.ReadFile(ConfigPath(dir))
	if err != nil {
		return nil, &ConfigError{
			Kind:    ErrMissingConfig,
			Dir:     dir,
			Message: fmt.Sprintf("could not find config file in %s", dir),
			Err:     err,
		}
	}

	var cfg models.ProjectConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{
			Kind:    ErrBadConfig,
			Dir:     dir,
			Message: "could not parse oseda config file",
			Err:     err,
		}
	}
	return &cfg, nil
}

// Validate loads the descriptor in dir and checks it against the local git identity and
// the directory name. It returns the config or exactly one *ConfigError.
func Validate(ctx context.Context, dir string, opts ValidateOptions) (*models.ProjectConfig, error) {
	cfg, err := Load(dir)
	if err != nil {
		return nil, err
	}

	if !opts.SkipIdentityCheck {
		if err := checkIdentity(ctx, dir, cfg, opts.Identity); err != nil {
			return nil, err
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, &ConfigError{
			Kind:    ErrDirectoryMismatch,
			Dir:     dir,
			Message: "could not get path of working directory",
			Err:     err,
		}
	}
	base := filepath.Base(abs)
	if base == "" || base == "." || base == string(filepath.Separator) {
		return nil, &ConfigError{
			Kind:    ErrDirectoryMismatch,
			Dir:     dir,
			Message: "could not resolve directory name",
		}
	}
	if base != cfg.Title {
		return nil, &ConfigError{
			Kind:    ErrDirectoryMismatch,
			Dir:     dir,
			Message: fmt.Sprintf("config title %q does not match directory name %q", cfg.Title, base),
		}
	}

	return cfg, nil
}

func checkIdentity(ctx context.Context, dir string, cfg *models.ProjectConfig, identity IdentitySource) error {
	var name string
	var err error
	if identity != nil {
		name, err = identity.ConfigValue(ctx, dir, "user.name")
	}
	if identity == nil || err != nil || name == "" {
		return &ConfigError{
			Kind:    ErrIdentityMismatch,
			Dir:     dir,
			Message: "could not get git user.name from git config",
			Err:     err,
		}
	}
	if name != cfg.Author {
		return &ConfigError{
			Kind:    ErrIdentityMismatch,
			Dir:     dir,
			Message: fmt.Sprintf("config author %q does not match git user.name %q", cfg.Author, name),
		}
	}
	return nil
}

// Write serializes cfg as indented JSON into dir's descriptor.
func Write(dir string, cfg *models.ProjectConfig) error {
	return writeJSON(dir, cfg)
}

// StampLastUpdated moves cfg.LastUpdated to now and patches only the
// last_updated key of dir's descriptor. Other keys, including ones oseda
// does not know, are kept as written.
func StampLastUpdated(dir string, cfg *models.ProjectConfig, now time.Time) error {
	cfg.Touch(now)

	data, err := os.ReadFile(ConfigPath(dir))
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	stamp, err := json.Marshal(cfg.LastUpdated)
	if err != nil {
		return fmt.Errorf("encode last_updated: %w", err)
	}
	fields["last_updated"] = stamp
	return writeJSON(dir, fields)
}

func writeJSON(dir string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(ConfigPath(dir), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
