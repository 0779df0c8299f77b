// Package config loads the monitorctl configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/BeatGlow/ddc"
)

// DefaultPath is where monitorctl looks for its configuration.
const DefaultPath = "monitorctl.toml"

// Config is the monitorctl configuration. Durations are expressed in
// seconds, matching the latency scale of the bus.
type Config struct {
	// Monitors maps a name alias to an enumeration index.
	Monitors map[string]int `toml:"monitors"`

	// Inputs maps a name alias to an input source code.
	Inputs map[string]uint16 `toml:"inputs"`

	// Wait is the delay in seconds between displays in batch operations,
	// to avoid DDC/CI latency conflicts.
	Wait float64 `toml:"wait"`

	Retry RetryConfig `toml:"retry"`
}

// RetryConfig overrides the transport retry policy. Zero fields keep the
// library defaults.
type RetryConfig struct {
	Attempts    int     `toml:"attempts"`
	WriteCycles int     `toml:"write_cycles"`
	WriteSleep  float64 `toml:"write_sleep"`
	ReadSleep   float64 `toml:"read_sleep"`
	RetrySleep  float64 `toml:"retry_sleep"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Monitors: map[string]int{"default": 1},
		Inputs:   map[string]uint16{},
		Wait:     2.0,
	}
}

// Load reads and validates the configuration at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but returns the built-in configuration
// when the file does not exist.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func (c Config) validate() error {
	if c.Wait < 0 {
		return fmt.Errorf("wait time can not be negative: %v", c.Wait)
	}
	for name, index := range c.Monitors {
		if index < 0 {
			return fmt.Errorf("monitor alias %q has a negative index", name)
		}
	}
	if c.Retry.Attempts < 0 || c.Retry.WriteCycles < 0 ||
		c.Retry.WriteSleep < 0 || c.Retry.ReadSleep < 0 || c.Retry.RetrySleep < 0 {
		return errors.New("retry settings can not be negative")
	}
	return nil
}

// WaitDuration is the inter-display delay as a Duration.
func (c Config) WaitDuration() time.Duration {
	return seconds(c.Wait)
}

// Policy merges the retry overrides into the library default.
func (r RetryConfig) Policy() ddc.RetryPolicy {
	p := ddc.DefaultRetryPolicy
	if r.Attempts > 0 {
		p.Attempts = r.Attempts
	}
	if r.WriteCycles > 0 {
		p.WriteCycles = r.WriteCycles
	}
	if r.WriteSleep > 0 {
		p.WriteSleep = seconds(r.WriteSleep)
	}
	if r.ReadSleep > 0 {
		p.ReadSleep = seconds(r.ReadSleep)
	}
	if r.RetrySleep > 0 {
		p.RetrySleep = seconds(r.RetrySleep)
	}
	return p
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
