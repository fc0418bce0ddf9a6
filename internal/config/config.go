// Package config handles trackline configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration structure for trackline.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// Database settings
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Timeline editing settings
	Timeline TimelineConfig `yaml:"timeline" mapstructure:"timeline"`

	// Render job settings
	Jobs JobsConfig `yaml:"jobs" mapstructure:"jobs"`

	// TUI settings
	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`
}

// GlobalConfig contains global trackline settings.
type GlobalConfig struct {
	// DataDir is where trackline stores its data (default: ~/.local/share/trackline).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// ConfigDir is where config files are stored (default: ~/.config/trackline).
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	// Path is the SQLite database file path.
	Path string `yaml:"path" mapstructure:"path"`

	// MaxConnections is the maximum number of database connections.
	MaxConnections int `yaml:"max_connections" mapstructure:"max_connections"`

	// BusyTimeout is how long to wait for a locked database (milliseconds).
	BusyTimeoutMs int `yaml:"busy_timeout_ms" mapstructure:"busy_timeout_ms"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path.
	File string `yaml:"file" mapstructure:"file"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// TimelineConfig contains editing settings.
type TimelineConfig struct {
	// HistoryDepth is how many undo steps are retained.
	HistoryDepth int `yaml:"history_depth" mapstructure:"history_depth"`

	// AutosaveInterval is how often the open project is persisted.
	AutosaveInterval time.Duration `yaml:"autosave_interval" mapstructure:"autosave_interval"`

	// DefaultZoomPercent is the zoom level a freshly opened project uses.
	DefaultZoomPercent int `yaml:"default_zoom_percent" mapstructure:"default_zoom_percent"`
}

// JobsConfig contains render job watcher settings.
type JobsConfig struct {
	// RunningInterval is how often running jobs are polled.
	RunningInterval time.Duration `yaml:"running_interval" mapstructure:"running_interval"`

	// QueuedInterval is how often queued jobs are polled.
	QueuedInterval time.Duration `yaml:"queued_interval" mapstructure:"queued_interval"`

	// MaxConcurrent limits concurrent render processing.
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// TUIConfig contains TUI settings.
type TUIConfig struct {
	// RefreshInterval is how often to refresh the display.
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`

	// Theme is the color theme (default, dark, light).
	Theme string `yaml:"theme" mapstructure:"theme"`

	// ShowWaveforms renders sound clip waveforms.
	ShowWaveforms bool `yaml:"show_waveforms" mapstructure:"show_waveforms"`

	// CompactMode uses a more compact layout.
	CompactMode bool `yaml:"compact_mode" mapstructure:"compact_mode"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Global: GlobalConfig{
			DataDir:   filepath.Join(homeDir, ".local", "share", "trackline"),
			ConfigDir: filepath.Join(homeDir, ".config", "trackline"),
		},
		Database: DatabaseConfig{
			Path:           "", // Will be set to DataDir/trackline.db
			MaxConnections: 10,
			BusyTimeoutMs:  5000,
		},
		Logging: LoggingConfig{
			Level:        "info",
			Format:       "console",
			EnableCaller: false,
		},
		Timeline: TimelineConfig{
			HistoryDepth:       100,
			AutosaveInterval:   5 * time.Second,
			DefaultZoomPercent: 100,
		},
		Jobs: JobsConfig{
			RunningInterval: 500 * time.Millisecond,
			QueuedInterval:  2 * time.Second,
			MaxConcurrent:   4,
		},
		TUI: TUIConfig{
			RefreshInterval: 500 * time.Millisecond,
			Theme:           "default",
			ShowWaveforms:   true,
			CompactMode:     false,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database.max_connections must be at least 1")
	}

	if c.Timeline.HistoryDepth < 1 {
		return fmt.Errorf("timeline.history_depth must be at least 1")
	}

	if c.Timeline.DefaultZoomPercent < 50 || c.Timeline.DefaultZoomPercent > 200 {
		return fmt.Errorf("timeline.default_zoom_percent must be between 50 and 200")
	}

	if c.Jobs.RunningInterval < 100*time.Millisecond {
		return fmt.Errorf("jobs.running_interval must be at least 100ms")
	}

	if c.Jobs.MaxConcurrent < 1 {
		return fmt.Errorf("jobs.max_concurrent must be at least 1")
	}

	switch c.Logging.Format {
	case "json", "console":
		// ok
	default:
		return fmt.Errorf("logging.format must be json or console")
	}

	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Global.DataDir,
		c.Global.ConfigDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// DatabasePath returns the full database path.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.Global.DataDir, "trackline.db")
}
