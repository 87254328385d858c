package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hochfrequenz/simul/internal/domain"
	"github.com/hochfrequenz/simul/internal/scenario"
	"github.com/pelletier/go-toml/v2"
)

// LocalConfigName is the project-local config file searched for upwards from the working directory
const LocalConfigName = ".simul.toml"

// Config holds all application configuration
type Config struct {
	General       GeneralConfig         `toml:"general"`
	History       HistoryConfig         `toml:"history"`
	Notifications NotificationsConfig   `toml:"notifications"`
	Scenarios     []scenario.Definition `toml:"scenario"`
}

// GeneralConfig holds defaults for every run
type GeneralConfig struct {
	Scenario    string `toml:"scenario"`
	Counterpart string `toml:"counterpart"`
	Moves       int    `toml:"moves"`
	PreDelay    string `toml:"pre_delay"`
	PostDelay   string `toml:"post_delay"`
	Mode        string `toml:"mode"`
	MaxParallel int    `toml:"max_parallel"`
	ScenarioDir string `toml:"scenario_dir"`
	Timestamps  bool   `toml:"timestamps"`
	Debug       bool   `toml:"debug"`
}

// HistoryConfig holds run history settings
type HistoryConfig struct {
	Enabled      bool   `toml:"enabled"`
	DatabasePath string `toml:"database_path"`
}

// NotificationsConfig holds notification settings
type NotificationsConfig struct {
	Desktop bool `toml:"desktop"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		General: GeneralConfig{
			Scenario:    "simul",
			Counterpart: domain.DefaultCounterpart,
			Moves:       5,
			PreDelay:    "1s",
			PostDelay:   "100ms",
			Mode:        string(domain.StrategyConcurrent),
			MaxParallel: 0,
			ScenarioDir: filepath.Join(home, ".config", "simul", "scenarios"),
		},
		History: HistoryConfig{
			Enabled:      false,
			DatabasePath: filepath.Join(home, ".simul", "history.db"),
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// Expand paths
	cfg.General.ScenarioDir = ExpandPath(cfg.General.ScenarioDir)
	cfg.History.DatabasePath = ExpandPath(cfg.History.DatabasePath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// LoadWithLocalFallback loads the explicit path if given, otherwise the nearest
// local config, otherwise the user config
func LoadWithLocalFallback(explicitPath string) (*Config, error) {
	if explicitPath != "" {
		return Load(explicitPath)
	}
	if local := FindLocalConfig(); local != "" {
		return Load(local)
	}
	return Load(DefaultConfigPath())
}

// FindLocalConfig walks up from the working directory looking for LocalConfigName
func FindLocalConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, LocalConfigName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Validate checks the general section and every inline scenario
func (c *Config) Validate() error {
	if _, _, err := c.General.Delays(); err != nil {
		return err
	}
	if _, err := c.General.Strategy(); err != nil {
		return err
	}
	if c.General.Moves < 1 {
		return fmt.Errorf("moves must be at least 1, got %d", c.General.Moves)
	}
	if c.General.MaxParallel < 0 {
		return fmt.Errorf("max_parallel must not be negative")
	}
	for i := range c.Scenarios {
		if err := c.Scenarios[i].Validate(); err != nil {
			return fmt.Errorf("scenario %d: %w", i, err)
		}
	}
	return nil
}

// Delays parses the default pre and post delays
func (g GeneralConfig) Delays() (pre, post time.Duration, err error) {
	if pre, err = domain.ParseDelay("pre_delay", g.PreDelay); err != nil {
		return 0, 0, err
	}
	if post, err = domain.ParseDelay("post_delay", g.PostDelay); err != nil {
		return 0, 0, err
	}
	return pre, post, nil
}

// Strategy parses the default execution mode
func (g GeneralConfig) Strategy() (domain.Strategy, error) {
	return domain.ParseStrategy(g.Mode)
}

// Defaults returns the values scenarios inherit for fields they leave empty
func (g GeneralConfig) Defaults() scenario.Defaults {
	return scenario.Defaults{
		Counterpart: g.Counterpart,
		Moves:       g.Moves,
		PreDelay:    g.PreDelay,
		PostDelay:   g.PostDelay,
	}
}

// Save writes the configuration as TOML, creating parent directories
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "simul", "config.toml")
}
