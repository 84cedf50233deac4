package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrInvalidPreset reports a timer-count or max-time value outside the
// allowed preset sets.
var ErrInvalidPreset = errors.New("value not in allowed preset set")

// TimerCountPresets are the allowed board sizes.
var TimerCountPresets = []int{5, 10, 15}

// MaxTimePresets are the allowed per-timer duration caps, in seconds.
var MaxTimePresets = []int{60, 300, 600, 900, 1800, 3600, 5400, 7200}

// DefaultLabelLimit bounds user-editable timer labels.
const DefaultLabelLimit = 10

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Engine settings shared by the timer and counter boards
	Engine EngineConfig `yaml:"engine"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to the SQLite preferences database
}

// EngineConfig is the validated, immutable parameter set consumed by the
// timer engine. Changing TimerCount or MaxTime rebuilds the whole board.
type EngineConfig struct {
	TimerCount          int  `yaml:"timer_count"`          // board size, preset-validated
	MaxTime             int  `yaml:"max_time"`             // per-timer cap in seconds, preset-validated
	AutoStartEnabled    bool `yaml:"auto_start"`           // start immediately after SetTime
	SequentialExecution bool `yaml:"sequential_execution"` // one timer at a time, in index order
	LabelLimit          int  `yaml:"label_limit"`          // max label length in runes
}

// ValidTimerCount reports whether n is an allowed board size.
func ValidTimerCount(n int) bool {
	for _, p := range TimerCountPresets {
		if n == p {
			return true
		}
	}
	return false
}

// ValidMaxTime reports whether seconds is an allowed duration cap.
func ValidMaxTime(seconds int) bool {
	for _, p := range MaxTimePresets {
		if seconds == p {
			return true
		}
	}
	return false
}

// Validate checks the preset-constrained fields.
func (e EngineConfig) Validate() error {
	if !ValidTimerCount(e.TimerCount) {
		return fmt.Errorf("%w: timer_count %d (allowed %v)", ErrInvalidPreset, e.TimerCount, TimerCountPresets)
	}
	if !ValidMaxTime(e.MaxTime) {
		return fmt.Errorf("%w: max_time %d (allowed %v)", ErrInvalidPreset, e.MaxTime, MaxTimePresets)
	}
	if e.LabelLimit <= 0 {
		return fmt.Errorf("label_limit must be positive, got %d", e.LabelLimit)
	}
	return nil
}

// DefaultConfigPath returns ~/.config/multitimer/config.yaml
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		return filepath.Join(".", ".config", "multitimer", "config.yaml")
	}
	return filepath.Join(homeDir, ".config", "multitimer", "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(homeDir, ".config", "multitimer", "multitimer.db"),
		},
		Engine: EngineConfig{
			TimerCount: 5,
			MaxTime:    3600,
			LabelLimit: DefaultLabelLimit,
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist
func Load(path string) (*Config, error) {
	// If file doesn't exist, return defaults
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Parse YAML over defaults so absent fields keep their default values
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.Engine.LabelLimit <= 0 {
		cfg.Engine.LabelLimit = DefaultLabelLimit
	}
	if err := cfg.Engine.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config at %s: %w", path, err)
	}

	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Marshal to YAML
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// Write to file
	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates all necessary directories (database dir, etc.)
func (c *Config) EnsureDirectories() error {
	dbDir := filepath.Dir(c.Database.Path)
	return os.MkdirAll(dbDir, 0755)
}
