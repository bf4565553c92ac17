package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// AppName names the config directory under ~/.config.
const AppName = "go-omen"

// MIDIConfig selects the clock source and the trigger destination.
type MIDIConfig struct {
	ClockPort   string `json:"clockPort,omitempty"`
	TriggerPort string `json:"triggerPort,omitempty"`
	Channel     uint8  `json:"channel,omitempty"` // 0-based
	AutoConnect bool   `json:"autoConnect"`
	Panel       bool   `json:"panel"` // Launchpad as seed panel
}

// AudioConfig controls the audio backend.
type AudioConfig struct {
	Enabled    bool `json:"enabled"`
	SampleRate int  `json:"sampleRate,omitempty"`
	Channels   int  `json:"channels,omitempty"`
	BufferMs   int  `json:"bufferMs,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Audio   AudioConfig `json:"audio"`
	MIDI    MIDIConfig  `json:"midi"`
	Patch   string      `json:"patch,omitempty"`
	Project string      `json:"project,omitempty"`
	Debug   bool        `json:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 48000,
			Channels:   2,
			BufferMs:   20,
		},
		MIDI: MIDIConfig{
			AutoConnect: true,
			Panel:       true,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file. Fields missing from the file keep their
// defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	d := DefaultConfig()
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = d.Audio.SampleRate
	}
	if c.Audio.Channels <= 0 {
		c.Audio.Channels = d.Audio.Channels
	}
	if c.Audio.BufferMs <= 0 {
		c.Audio.BufferMs = d.Audio.BufferMs
	}
	if c.MIDI.Channel > 15 {
		c.MIDI.Channel = 15
	}
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
