package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// configFile is the YAML file name for optional local settings. The
// project copy is meant to be git-ignored: it exists so an API key can
// be pre-populated without ever committing it.
const configFile = "config.yaml"

// configDir is the dotdir holding the config file, in the project root
// or the user's home directory.
const configDir = ".printwatch"

// APIKeyEnv overrides any config file value when set.
const APIKeyEnv = "PRINTWATCH_API_KEY"

// Defaults for the telemetry pipeline. These match the tuning the
// detector and simulator were calibrated with.
const (
	DefaultTickHz         = 10.0
	DefaultAlpha          = 0.05
	DefaultWarnZ          = 3.0
	DefaultAlertZ         = 4.5
	DefaultRunLengthAlert = 6
	DefaultDedupCooldownS = 3.0
	DefaultTrendWindow    = 80
	DefaultListenAddr     = ":8765"
)

// Config holds printwatch settings loaded from the optional YAML config
// file. Zero values fall back to the defaults above.
type Config struct {
	// APIKey pre-populates the analysis API credential so no prompt is
	// needed. Environment variable PRINTWATCH_API_KEY takes precedence.
	APIKey string `yaml:"api_key,omitempty"`

	TickHz         float64 `yaml:"tick_hz,omitempty"`
	Alpha          float64 `yaml:"alpha,omitempty"`
	WarnZ          float64 `yaml:"warn_z,omitempty"`
	AlertZ         float64 `yaml:"alert_z,omitempty"`
	RunLengthAlert int     `yaml:"run_length_alert,omitempty"`
	DedupCooldownS float64 `yaml:"dedup_cooldown_s,omitempty"`
	TrendWindow    int     `yaml:"trend_window,omitempty"`
	ListenAddr     string  `yaml:"listen_addr,omitempty"`

	// APIKeySource describes where APIKey came from, for status output.
	// Not persisted.
	APIKeySource string `yaml:"-"`
}

// Default returns a Config with all defaults applied and no API key.
func Default() *Config {
	return &Config{
		TickHz:         DefaultTickHz,
		Alpha:          DefaultAlpha,
		WarnZ:          DefaultWarnZ,
		AlertZ:         DefaultAlertZ,
		RunLengthAlert: DefaultRunLengthAlert,
		DedupCooldownS: DefaultDedupCooldownS,
		TrendWindow:    DefaultTrendWindow,
		ListenAddr:     DefaultListenAddr,
	}
}

// Load reads configuration using the following precedence:
//  1. Environment variable (PRINTWATCH_API_KEY, api key only)
//  2. Explicit path, when given
//  3. Project dotfile (.printwatch/config.yaml)
//  4. Home directory (~/.printwatch/config.yaml)
//
// A missing config file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	switch {
	case path != "":
		if err := mergeFile(cfg, path, fmt.Sprintf("file (%s)", path)); err != nil {
			return nil, err
		}
	default:
		// Home first so a project file overrides it.
		if homeDir, err := os.UserHomeDir(); err == nil {
			homePath := filepath.Join(homeDir, configDir, configFile)
			if err := mergeFileIfPresent(cfg, homePath, "home (~/.printwatch/config.yaml)"); err != nil {
				return nil, err
			}
		}
		if err := mergeFileIfPresent(cfg, filepath.Join(configDir, configFile), "project (.printwatch/config.yaml)"); err != nil {
			return nil, err
		}
	}

	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.APIKey = key
		cfg.APIKeySource = fmt.Sprintf("environment (%s)", APIKeyEnv)
	}

	return cfg, nil
}

func mergeFileIfPresent(cfg *Config, path, source string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return mergeFile(cfg, path, source)
}

// mergeFile overlays non-zero values from the YAML file at path onto cfg.
func mergeFile(cfg *Config, path, source string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config from %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config from %s: %w", path, err)
	}

	if file.APIKey != "" {
		cfg.APIKey = file.APIKey
		cfg.APIKeySource = source
	}
	if file.TickHz != 0 {
		cfg.TickHz = file.TickHz
	}
	if file.Alpha != 0 {
		cfg.Alpha = file.Alpha
	}
	if file.WarnZ != 0 {
		cfg.WarnZ = file.WarnZ
	}
	if file.AlertZ != 0 {
		cfg.AlertZ = file.AlertZ
	}
	if file.RunLengthAlert != 0 {
		cfg.RunLengthAlert = file.RunLengthAlert
	}
	if file.DedupCooldownS != 0 {
		cfg.DedupCooldownS = file.DedupCooldownS
	}
	if file.TrendWindow != 0 {
		cfg.TrendWindow = file.TrendWindow
	}
	if file.ListenAddr != "" {
		cfg.ListenAddr = file.ListenAddr
	}
	return nil
}
