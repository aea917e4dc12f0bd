// Package config loads retrace configuration from file and
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Defaults.
const (
	DefaultMaxFileSize = "1MiB"
	DefaultLogLevel    = "info"
)

// DefaultExclusions are path patterns never recorded by the watcher or
// the importer.
var DefaultExclusions = []string{".git", ".hg", ".svn", "node_modules", "*.swp", "*~"}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// Config represents the application configuration.
type Config struct {
	// JournalPath is the journal database directory. Empty means
	// DefaultJournalPath().
	JournalPath string `mapstructure:"journal_path"`

	// MaxFileSize caps the content payload recorded per file; larger
	// files are tracked as empty.
	MaxFileSize string `mapstructure:"max_file_size"`

	// Exclude lists base-name patterns skipped by watch and import.
	Exclude []string `mapstructure:"exclude"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/retrace/config.yaml
//   - $HOME/.config/retrace/config.yaml
//
// Environment variables use the RETRACE_ prefix (e.g.
// RETRACE_MAX_FILE_SIZE).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "retrace"))
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "retrace"))

	v.SetEnvPrefix("RETRACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("journal_path", "")
	v.SetDefault("max_file_size", DefaultMaxFileSize)
	v.SetDefault("exclude", DefaultExclusions)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.HasPrefix(cfg.JournalPath, "~") {
		cfg.JournalPath = filepath.Join(homeDir, cfg.JournalPath[1:])
	}
	if cfg.JournalPath == "" {
		cfg.JournalPath = DefaultJournalPath()
	}

	return &cfg, nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "retrace"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "retrace"), nil
}

// DataDir returns $XDG_DATA_HOME/retrace/ for the journal database.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "retrace")
}

// StateDir returns $XDG_STATE_HOME/retrace/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "retrace")
}

// DefaultJournalPath returns the default journal database directory.
func DefaultJournalPath() string {
	return filepath.Join(DataDir(), "journal.db")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "retrace.log")
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	if err := os.MkdirAll(DataDir(), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	configDir, err := ConfigDir()
	if err != nil {
		return err
	}
	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# Retrace Local History Configuration

# Journal database directory (empty means $XDG_DATA_HOME/retrace/journal.db)
journal_path: ""

# Largest file content recorded in the journal; bigger files are
# tracked with empty content
max_file_size: %s

# Base-name patterns excluded from watch and import
exclude:
  - .git
  - .hg
  - .svn
  - node_modules
  - "*.swp"
  - "*~"

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: %s
  # Log file path (empty means $XDG_STATE_HOME/retrace/retrace.log)
  path: ""
`, DefaultMaxFileSize, DefaultLogLevel)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}
	return nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}
