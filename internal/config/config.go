package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Mavwarf/mkicns/internal/advisor"
	"github.com/Mavwarf/mkicns/internal/bridge"
	"github.com/Mavwarf/mkicns/internal/host"
	"github.com/Mavwarf/mkicns/internal/paths"
)

// MinThreshold is the smallest accepted warning threshold; it matches the
// smallest icon in the set.
const MinThreshold = 16

// MQTT holds broker settings for publishing run summaries.
type MQTT struct {
	Broker   string `json:"broker,omitempty" yaml:"broker,omitempty"`
	Topic    string `json:"topic,omitempty" yaml:"topic,omitempty"`
	ClientID string `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	QoS      byte   `json:"qos,omitempty" yaml:"qos,omitempty"`
	Retain   bool   `json:"retain,omitempty" yaml:"retain,omitempty"`
}

// Webhook holds an HTTP endpoint that receives run summaries.
type Webhook struct {
	URL     string            `json:"url,omitempty" yaml:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// Config holds every setting. Zero values are replaced by defaults in
// UnmarshalJSON / Default.
type Config struct {
	Threshold      int     `json:"threshold,omitempty" yaml:"threshold,omitempty" env:"THRESHOLD"`
	Filter         string  `json:"filter,omitempty" yaml:"filter,omitempty" env:"FILTER"`
	Encoder        string  `json:"encoder,omitempty" yaml:"encoder,omitempty" env:"ENCODER"`
	Cleanup        string  `json:"cleanup,omitempty" yaml:"cleanup,omitempty" env:"CLEANUP"`
	Assume         string  `json:"assume,omitempty" yaml:"assume,omitempty" env:"ASSUME"` // "" | "yes" | "no"
	Log            bool    `json:"log,omitempty" yaml:"log,omitempty" env:"LOG"`
	Chime          bool    `json:"chime,omitempty" yaml:"chime,omitempty" env:"CHIME"`
	TimeoutSeconds int     `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" env:"TIMEOUT"`
	MQTT           MQTT    `json:"mqtt,omitempty" yaml:"mqtt,omitempty"`
	Webhook        Webhook `json:"webhook,omitempty" yaml:"webhook,omitempty"`

	// Source is the file the config was read from, empty for defaults.
	Source string `json:"-" yaml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Threshold: advisor.DefaultThreshold,
		Filter:    host.DefaultFilter,
		Encoder:   string(bridge.EncoderIconutil),
		Cleanup:   string(bridge.CleanupAlways),
	}
}

// UnmarshalJSON sets defaults then decodes the JSON structure, so only
// values present in JSON override the defaults.
func (c *Config) UnmarshalJSON(data []byte) error {
	*c = Default()
	type Alias Config
	return json.Unmarshal(data, (*Alias)(c))
}

// Validate rejects unknown filter, encoder, cleanup and assume values.
func (c Config) Validate() error {
	if c.Threshold < MinThreshold {
		return fmt.Errorf("threshold must be at least %d, got %d", MinThreshold, c.Threshold)
	}
	if !host.ValidFilter(c.Filter) {
		return fmt.Errorf("unknown filter %q (available: %s)", c.Filter, strings.Join(host.Filters(), ", "))
	}
	if _, err := bridge.ParseEncoder(c.Encoder); err != nil {
		return err
	}
	if _, err := bridge.ParseCleanup(c.Cleanup); err != nil {
		return err
	}
	switch c.Assume {
	case "", "yes", "no":
	default:
		return fmt.Errorf("assume must be \"yes\", \"no\" or empty, got %q", c.Assume)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative")
	}
	if c.MQTT.Broker != "" && c.MQTT.Topic == "" {
		return fmt.Errorf("mqtt.topic is required when mqtt.broker is set")
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2")
	}
	return nil
}

// Load reads the config file and applies MKICNS_* environment overrides.
// It tries, in order:
//  1. explicitPath (if non-empty; must exist)
//  2. mkicns-config.json next to the running binary
//  3. the user data directory (~/.config/mkicns or %APPDATA%\mkicns)
//
// When no file is found the built-in defaults are used.
func Load(explicitPath string) (Config, error) {
	cfg, err := loadFile(explicitPath)
	if err != nil {
		return Config{}, err
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: paths.EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(explicitPath string) (Config, error) {
	if explicitPath != "" {
		return readConfig(explicitPath)
	}
	for _, p := range searchPaths() {
		if _, err := os.Stat(p); err == nil {
			return readConfig(p)
		}
	}
	return Default(), nil
}

func searchPaths() []string {
	var out []string
	if exe, err := os.Executable(); err == nil {
		out = append(out, filepath.Join(filepath.Dir(exe), paths.ConfigFileName))
	}
	out = append(out, filepath.Join(paths.DataDir(), paths.ConfigFileName))
	return out
}

// DefaultPath returns where "mkicns init" writes when no path is given.
func DefaultPath() string {
	return filepath.Join(paths.DataDir(), paths.ConfigFileName)
}

func readConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

// Marshal encodes cfg as indented JSON for "mkicns init".
func Marshal(cfg Config) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
