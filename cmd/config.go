package cmd

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/oseda-dev/oseda/internal/project"
)

var configForce bool

// configDirFunc locates ~/.config/oseda; tests point it at a temp dir.
var configDirFunc = func() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "oseda"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit oseda settings",
	Long: `OSEDA_* environment variables override ~/.config/oseda/config.yaml,
which overrides the built-in defaults. Without a subcommand this prints the
effective settings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

func init() {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write config.yaml seeded with the current settings",
		RunE:  func(cmd *cobra.Command, args []string) error { return configInitRun() },
	}
	initCmd.Flags().BoolVar(&configForce, "force", false, "Replace an existing config.yaml")

	configCmd.AddCommand(
		initCmd,
		&cobra.Command{
			Use:   "show",
			Short: "Print each setting, its value and where it came from",
			RunE:  func(cmd *cobra.Command, args []string) error { return configShowRun() },
		},
		&cobra.Command{
			Use:   "edit",
			Short: "Open config.yaml in $EDITOR",
			RunE:  func(cmd *cobra.Command, args []string) error { return configEditRun() },
		},
	)
	rootCmd.AddCommand(configCmd)
}

// configTemplate renders config.yaml. quote and value read the effective
// setting, so a generated file starts from what oseda currently uses.
const configTemplate = `# oseda configuration file.
# 'oseda config show' prints every setting and where its value comes from.
# Environment variables OSEDA_<SECTION>_<KEY> override anything set here.

# Where history and PID files live.
# state_dir: {{ quote "state_dir" }}
# db_path: {{ quote "db_path" }}

check:
  port: {{ value "check.port" }}
  # Probe this long after launch unless wait_for_ready is on.
  grace_period: {{ quote "check.grace_period" }}
  # Probe as soon as the serve process has spawned and settled.
  wait_for_ready: {{ value "check.wait_for_ready" }}

run:
  # Commands are split on spaces; {port} becomes the serve port.
  build_cmd: {{ quote "run.build_cmd" }}
  serve_cmd: {{ quote "run.serve_cmd" }}
  # SIGTERM grace before the serve process group is killed.
  stop_timeout: {{ quote "run.stop_timeout" }}

deploy:
  # Library repository used by a bare 'oseda deploy'.
  remote: {{ quote "deploy.remote" }}
  commit_message: {{ quote "deploy.commit_message" }}
  # Top-level entries never copied into the library.
  # exclude: [node_modules, .env]

fork:
  url: {{ quote "fork.url" }}

preview:
  # Glamour style name (auto, dark, light, notty) or a JSON style file.
  style: {{ quote "preview.style" }}
`

var configTemplateFuncs = template.FuncMap{
	"quote": func(key string) string { return strconv.Quote(viper.GetString(key)) },
	"value": viper.Get,
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func renderConfig() ([]byte, error) {
	tmpl, err := template.New("config").Funcs(configTemplateFuncs).Parse(configTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse config template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		return nil, fmt.Errorf("render config template: %w", err)
	}
	return buf.Bytes(), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting %s", cfgPath)
	}

	body, err := renderConfig()
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would write %s:", cfgPath)
		_, _ = ui.Out.Write(body)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(cfgPath, body, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	ui.Success("Wrote %s", cfgPath)
	_, _ = ui.Out.Write(body)
	return nil
}

// configKeys lists the settings shown by 'config show'. Each key is read from
// OSEDA_<KEY> plus any aliases.
var configKeys = []struct {
	Key     string
	Aliases []string
}{
	{Key: "state_dir"},
	{Key: "db_path"},
	{Key: "ci", Aliases: []string{project.CIEnvVar}},
	{Key: "check.port"},
	{Key: "check.grace_period"},
	{Key: "check.wait_for_ready"},
	{Key: "run.build_cmd"},
	{Key: "run.serve_cmd"},
	{Key: "run.stop_timeout"},
	{Key: "deploy.remote"},
	{Key: "deploy.commit_message"},
	{Key: "deploy.exclude"},
	{Key: "fork.url"},
	{Key: "preview.style"},
}

// envName maps a dotted key to its OSEDA_ environment variable.
func envName(key string) string {
	return "OSEDA_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	inFile := map[string]bool{}
	if data, err := os.ReadFile(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
		var parsed map[string]any
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			ui.Warning("Could not parse %s: %v", cfgPath, err)
		}
		flattenKeys("", parsed, inFile)
	} else {
		ui.Info("Config file: none (run 'oseda config init')")
	}

	table := ui.Table([]string{"Key", "Value", "Source"})
	for _, k := range configKeys {
		envVars := append([]string{envName(k.Key)}, k.Aliases...)
		table.Append([]string{k.Key, fmt.Sprint(viper.Get(k.Key)), detectSource(k.Key, envVars, inFile)})
	}
	return table.Render()
}

// flattenKeys records every leaf of m in result under its dotted path.
func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for key, val := range m {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(key, nested, result)
			continue
		}
		result[key] = true
	}
}

// detectSource names where a key's effective value comes from, in viper's
// precedence order: environment, then config file, then built-in default.
func detectSource(key string, envVars []string, inFile map[string]bool) string {
	for _, env := range envVars {
		if os.Getenv(env) != "" {
			return "(env: " + env + ")"
		}
	}
	if inFile[key] {
		return "(file)"
	}
	return "(default)"
}

func configEditRun() error {
	editor := cmp.Or(os.Getenv("EDITOR"), os.Getenv("VISUAL"))
	if editor == "" {
		return errors.New("$EDITOR is not set (for example: export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfgPath); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config file not found: %s (create it with 'oseda config init')", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would run %s %s", editor, cfgPath)
		return nil
	}

	c := exec.Command(editor, cfgPath)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	return c.Run()
}
