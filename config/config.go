package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-tabsynth/midi"
	"go-tabsynth/synth"
)

// AudioConfig fixes the output format at startup
type AudioConfig struct {
	SampleRate int `json:"sampleRate"`
	ChunkSize  int `json:"chunkSize"` // frames per render callback
	Channels   int `json:"channels"`  // physical channels the mono signal fans out to
}

// MIDIConfig controls input discovery
type MIDIConfig struct {
	AutoConnect    bool     `json:"autoConnect"`
	Excluded       []string `json:"excluded,omitempty"`
	PollIntervalMs int      `json:"pollIntervalMs,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `json:"palette,omitempty"` // GIMP .gpl file; built-in palette if empty
}

// Config is the main configuration structure
type Config struct {
	Audio  AudioConfig `json:"audio"`
	Engine string      `json:"engine"`
	MIDI   MIDIConfig  `json:"midi"`
	UI     UIConfig    `json:"ui,omitempty"`
	Debug  bool        `json:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate: 48000,
			ChunkSize:  512,
			Channels:   1,
		},
		Engine: synth.VariantWaveTable.String(),
		MIDI: MIDIConfig{
			AutoConnect:    true,
			Excluded:       append([]string(nil), midi.DefaultExcluded...),
			PollIntervalMs: 1000,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-tabsynth"), nil
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

// LoadFrom reads the config at path, or returns defaults if it does not exist.
// Fields missing from the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks values the runtime cannot work around
func (c *Config) Validate() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sampleRate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Audio.ChunkSize <= 0 {
		return fmt.Errorf("audio.chunkSize must be positive, got %d", c.Audio.ChunkSize)
	}
	if c.Audio.Channels < 1 || c.Audio.Channels > 8 {
		return fmt.Errorf("audio.channels must be 1-8, got %d", c.Audio.Channels)
	}
	if _, err := synth.ParseVariant(c.Engine); err != nil {
		return err
	}
	return nil
}

// Variant returns the configured engine variant
func (c *Config) Variant() synth.Variant {
	v, err := synth.ParseVariant(c.Engine)
	if err != nil {
		return synth.VariantWaveTable
	}
	return v
}

// PollInterval returns the device scan interval
func (c *Config) PollInterval() time.Duration {
	if c.MIDI.PollIntervalMs <= 0 {
		return time.Second
	}
	return time.Duration(c.MIDI.PollIntervalMs) * time.Millisecond
}

// ChunkPeriod is the real-time budget of one render callback
func (c *Config) ChunkPeriod() time.Duration {
	return time.Duration(c.Audio.ChunkSize) * time.Second / time.Duration(c.Audio.SampleRate)
}
