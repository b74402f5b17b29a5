package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SchedulerConfig mirrors the constants spec.md §6 names.
type SchedulerConfig struct {
	ScheduleAheadTime float64 `json:"scheduleAheadTime"` // seconds, default 0.2
	StepPrecision     int     `json:"stepPrecision"`     // default 64
	InstrumentAmount  int     `json:"instrumentAmount"`
	BeatAmount        int     `json:"beatAmount"` // default 4
	DefaultTempo      float64 `json:"defaultTempo"`
}

// OutputConfig names the default MIDI output port the audio sink binds to.
type OutputConfig struct {
	PortName    string `json:"portName,omitempty"`
	AutoConnect bool   `json:"autoConnect"`
}

// Config is the main configuration structure.
type Config struct {
	Scheduler SchedulerConfig `json:"scheduler"`
	Output    OutputConfig    `json:"output,omitempty"`
}

// Default returns a config with sensible defaults.
func Default() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			ScheduleAheadTime: 0.2,
			StepPrecision:     64,
			InstrumentAmount:  16,
			BeatAmount:        4,
			DefaultTempo:      120,
		},
		Output: OutputConfig{
			AutoConnect: true,
		},
	}
}

// Dir returns the config directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "trackplay"), nil
}

// Path returns the full path to config.json.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	path, err := Path()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// InstrumentAmount returns the configured instrument count, falling back
// to the default when unset (e.g. a config.json predating this field).
func (c *Config) InstrumentAmount() int {
	if c.Scheduler.InstrumentAmount <= 0 {
		return Default().Scheduler.InstrumentAmount
	}
	return c.Scheduler.InstrumentAmount
}
