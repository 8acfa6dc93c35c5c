package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go-drumseq/instrument"
	"go-drumseq/transport"
)

// Backend identifies where triggers are sent
type Backend string

const (
	BackendSynth Backend = "synth"
	BackendMIDI  Backend = "midi"
)

// OutputConfig defines the trigger output
type OutputConfig struct {
	Backend    Backend `json:"backend"`
	PortName   string  `json:"portName,omitempty"` // midi only, empty picks the first port
	Channel    int     `json:"channel,omitempty"`  // 1-16
	Kit        string  `json:"kit,omitempty"`
	KitFile    string  `json:"kitFile,omitempty"`
	SampleRate int     `json:"sampleRate,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette   string `json:"palette,omitempty"` // path to a GIMP .gpl file
	LastTempo int    `json:"lastTempo,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	BeatsPerLoop int          `json:"beatsPerLoop"`
	Tempo        int          `json:"tempo"`
	Output       OutputConfig `json:"output"`
	UI           UIConfig     `json:"ui,omitempty"`
	Debug        bool         `json:"debug,omitempty"`

	// Pattern preloads beats per instrument id at startup
	Pattern map[string][]int `json:"pattern,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		BeatsPerLoop: 8,
		Tempo:        transport.DefaultTempo,
		Output: OutputConfig{
			Backend:    BackendSynth,
			Channel:    10,
			Kit:        instrument.DefaultKit,
			SampleRate: 44100,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-drumseq"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Missing fields keep their defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to the default path
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

// StartTempo is the tempo to open with: the last one used if saved
func (c *Config) StartTempo() int {
	if c.UI.LastTempo > 0 {
		return c.UI.LastTempo
	}
	return c.Tempo
}

// Validate checks ranges. Kits are checked later, once kit files are loaded.
func (c *Config) Validate() error {
	if c.BeatsPerLoop < 1 || c.BeatsPerLoop > 64 {
		return fmt.Errorf("beatsPerLoop %d out of range 1-64", c.BeatsPerLoop)
	}
	if c.Tempo < transport.MinTempo || c.Tempo > transport.MaxTempo {
		return fmt.Errorf("tempo %d out of range %d-%d", c.Tempo, transport.MinTempo, transport.MaxTempo)
	}
	switch c.Output.Backend {
	case BackendSynth:
		if c.Output.SampleRate < 8000 {
			return fmt.Errorf("sample rate %d too low", c.Output.SampleRate)
		}
	case BackendMIDI:
		if c.Output.Channel < 1 || c.Output.Channel > 16 {
			return fmt.Errorf("midi channel %d out of range 1-16", c.Output.Channel)
		}
	default:
		return fmt.Errorf("unknown output backend %q (want %s or %s)", c.Output.Backend, BackendSynth, BackendMIDI)
	}
	for id, beats := range c.Pattern {
		for _, b := range beats {
			if b < 0 || b >= c.BeatsPerLoop {
				return fmt.Errorf("pattern %s: beat %d out of range 0-%d", id, b, c.BeatsPerLoop-1)
			}
		}
	}
	return nil
}
