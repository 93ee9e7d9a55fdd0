package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults for unset
// fields, and validates the result. Unknown keys are rejected.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.ListenAddr == "" {
		errs = append(errs, errors.New("server.listen_addr is required"))
	}
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Scoring.CriticalPoint < 0 {
		errs = append(errs, fmt.Errorf("scoring.critical_point %v must not be negative", cfg.Scoring.CriticalPoint))
	}
	if cfg.Scoring.CriticalWindow < 0 {
		errs = append(errs, fmt.Errorf("scoring.critical_window %v must not be negative", cfg.Scoring.CriticalWindow))
	}
	if err := unitRange("scoring.fuzzy_threshold", cfg.Scoring.FuzzyThreshold); err != nil {
		errs = append(errs, err)
	}
	if err := unitRange("scoring.emergence_threshold", cfg.Scoring.EmergenceThreshold); err != nil {
		errs = append(errs, err)
	}

	if cfg.Output.Dir == "" {
		errs = append(errs, errors.New("output.dir is required"))
	}

	return errors.Join(errs...)
}

// unitRange checks that an optional threshold is inside (0, 1]. Zero means
// "use the default" and is always accepted.
func unitRange(name string, v float64) error {
	if v == 0 {
		return nil
	}
	if v < 0 || v > 1 {
		return fmt.Errorf("%s %v is out of range (0, 1]", name, v)
	}
	return nil
}
