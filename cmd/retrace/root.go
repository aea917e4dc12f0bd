package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/retrace/pkg/retrace/config"
	"github.com/jamesainslie/retrace/pkg/retrace/journal"
	"github.com/jamesainslie/retrace/pkg/retrace/logging"
	"github.com/jamesainslie/retrace/pkg/retrace/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "retrace",
		Short: "Local history for a file tree",
		Long: `Retrace records every change to a tracked file tree as an ordered,
invertible journal, so any prior state can be inspected or undone.

Examples:
  retrace import ~/project      # Seed the journal from an existing tree
  retrace watch ~/project       # Record live changes until interrupted
  retrace log                   # Show recorded history
  retrace show 12               # Inspect one change
  retrace revert 3              # Undo the last three changes
  retrace cat --at 12 src/a.go  # File content as of change 12
  retrace ui                    # Interactive history browser`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/retrace/config.yaml)")
	rootCmd.PersistentFlags().String("journal", "", "journal database directory")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "output JSON format")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	_ = viper.BindPFlag("journal_path", rootCmd.PersistentFlags().Lookup("journal"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "retrace"))
		}
		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "retrace"))
		}
	}

	viper.SetEnvPrefix("RETRACE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("max_file_size", config.DefaultMaxFileSize)
	viper.SetDefault("exclude", config.DefaultExclusions)

	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initLogging initializes the logging system from configuration.
func initLogging(cfg *config.Config) error {
	level := cfg.Logging.Level
	if getVerbose() {
		level = "debug"
	}
	return logging.Init(logging.Config{
		Level:   level,
		Path:    cfg.Logging.Path,
		Console: getVerbose(),
	})
}

// openJournal opens the configured journal store and loads it.
// The returned closer must be called when done.
func openJournal() (*journal.Journal, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := initLogging(cfg); err != nil {
		return nil, nil, err
	}
	if err := config.EnsureDataDir(); err != nil {
		return nil, nil, err
	}

	path := cfg.JournalPath
	if flagPath := viper.GetString("journal_path"); flagPath != "" {
		path = flagPath
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, nil, err
	}
	j, err := journal.Open(st)
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}
	closer := func() {
		_ = st.Close()
		_ = logging.Close()
	}
	return j, closer, nil
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}
