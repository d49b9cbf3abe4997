package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oseda-dev/oseda/internal/deploy"
	"github.com/oseda-dev/oseda/internal/git"
	"github.com/oseda-dev/oseda/internal/output"
	"github.com/oseda-dev/oseda/internal/project"
	"github.com/oseda-dev/oseda/internal/runner"
	"github.com/oseda-dev/oseda/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	dataStore store.Store
	gitClient git.Client = git.NewClient()

	verbose    bool
	dryRun     bool
	projectArg string
)

var rootCmd = &cobra.Command{
	Use:   "oseda",
	Short: "Create, check and publish slide-deck courses",
	Long: `oseda manages reveal.js slide-deck projects.
It scaffolds new projects, builds and serves them locally, checks that a
project is ready to deploy and publishes it into a shared course library.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	err := rootCmd.Execute()
	if dataStore != nil {
		_ = dataStore.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().StringVarP(&projectArg, "dir", "C", ".", "Project directory")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/oseda/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := configDirFunc()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("OSEDA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("ci", "OSEDA_CI", project.CIEnvVar)

	defaultConfigDir, _ := configDirFunc()
	setDefaults(defaultConfigDir)

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

// setDefaults registers every config key with its default value.
func setDefaults(stateDir string) {
	viper.SetDefault("state_dir", stateDir)
	viper.SetDefault("db_path", filepath.Join(stateDir, "oseda.db"))
	viper.SetDefault("ci", false)
	viper.SetDefault("check.port", runner.DefaultPort)
	viper.SetDefault("check.grace_period", "10s")
	viper.SetDefault("check.wait_for_ready", false)
	viper.SetDefault("run.build_cmd", strings.Join(runner.DefaultBuildCommand, " "))
	viper.SetDefault("run.serve_cmd", strings.Join(runner.DefaultServeCommand, " "))
	viper.SetDefault("run.stop_timeout", "5s")
	viper.SetDefault("deploy.remote", "")
	viper.SetDefault("deploy.commit_message", deploy.DefaultCommitMessage)
	viper.SetDefault("deploy.exclude", []string{})
	viper.SetDefault("fork.url", defaultForkURL)
	viper.SetDefault("preview.style", "auto")
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun

	// Initialize store lazily, only when commands actually need it.
	// This allows config/version commands to run without a db.
}

// getStore returns the shared store, initializing it on first call.
func getStore() (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}

	s, err := store.Open(cmdContext(), viper.GetString("db_path"))
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	dataStore = s
	return dataStore, nil
}

// cmdContext returns the root command's context, or Background outside Execute.
func cmdContext() context.Context {
	if ctx := rootCmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// validateOptions builds the ConfigValidator options from flags and config.
func validateOptions(skipGit bool) project.ValidateOptions {
	return project.ValidateOptions{
		SkipIdentityCheck: skipGit || viper.GetBool("ci"),
		Identity:          gitClient,
	}
}

// projectDir resolves the --dir flag to an absolute project directory.
func projectDir() (string, error) {
	dir := projectArg
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve project directory: %w", err)
	}
	return abs, nil
}

// commandLine reads a command from config, split on whitespace.
func commandLine(key string) []string {
	return strings.Fields(viper.GetString(key))
}
