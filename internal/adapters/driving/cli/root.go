// Package cli implements the glaximini command line.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/glaximini/internal/adapters/driven/config/file"
	"github.com/custodia-labs/glaximini/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var (
	// configPath is the --config flag; empty selects the default location.
	configPath string
	verbose    bool

	// settings is loaded before every command runs.
	settings = file.Defaults()
	// settingsPath is where settings were loaded from.
	settingsPath string
)

var rootCmd = &cobra.Command{
	Use:   "glaximini",
	Short: "Collaborative vector animation server",
	Long: `glaximini keeps vector animation documents in sync between editor
sessions, persists them, and exports them as Lottie animations or
Telegram stickers.

Settings come from ~/.glaximini/config.toml (see "glaximini config init"),
overridden by GLAXIMINI_* environment variables and then by flags.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.glaximini/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadSettings(_ *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		var err error
		path, err = file.DefaultPath()
		if err != nil {
			return err
		}
	}

	loaded, err := file.Load(path)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if verbose {
		loaded.Log.Verbose = true
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	settings = loaded
	settingsPath = path
	logger.SetVerbose(settings.Log.Verbose)
	logger.Debug("settings loaded from %s", path)
	return nil
}

func parseInterval(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", s, err)
	}
	if d < 100*time.Millisecond {
		return 0, fmt.Errorf("interval %s is below 100ms", d)
	}
	return d, nil
}
