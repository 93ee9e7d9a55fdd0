// Package config provides the configuration schema, loader, and reload
// watcher for the emergence toolkit.
package config

import "log/slog"

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Slog maps l onto the corresponding slog level. Unknown or empty values map
// to info.
func (l LogLevel) Slog() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config is the root configuration structure. It is typically loaded from a
// YAML file using [Load] or [LoadFromReader]; zero fields fall back to the
// values of [Default].
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Scoring ScoringConfig `yaml:"scoring"`
	Tools   ToolsConfig   `yaml:"tools"`
	Output  OutputConfig  `yaml:"output"`
	Store   StoreConfig   `yaml:"store"`
}

// ServerConfig holds network and logging settings for serve mode.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// ScoringConfig tunes the measurement thresholds. Zero values keep the
// built-in defaults.
type ScoringConfig struct {
	// CriticalPoint is the phase-transition indicator value. Default 1.75.
	CriticalPoint float64 `yaml:"critical_point"`

	// CriticalWindow is the near-critical distance. Default 0.2.
	CriticalWindow float64 `yaml:"critical_window"`

	// FuzzyThreshold is the minimum Jaro-Winkler similarity for fuzzy token
	// matching in the coherence measure. Default 0.85.
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`

	// EmergenceThreshold is the integrated score above which an exchange
	// counts as an emergence event. Default 0.7.
	EmergenceThreshold float64 `yaml:"emergence_threshold"`
}

// ToolsConfig selects which analysis tools are active. Tool names are
// validated when the tool set is built at startup, so a typo fails fast
// rather than leaving a tool silently idle.
type ToolsConfig struct {
	// Active lists enabled tool names. Empty keeps the default set.
	Active []string `yaml:"active"`
}

// OutputConfig controls where result bundles are written.
type OutputConfig struct {
	// Dir is the root directory for per-session result directories.
	Dir string `yaml:"dir"`
}

// StoreConfig configures the optional observation store.
type StoreConfig struct {
	// PostgresDSN is the PostgreSQL connection string. Empty disables the
	// store; the toolkit then runs file-only.
	PostgresDSN string `yaml:"postgres_dsn"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: ":8080",
			LogLevel:   LogInfo,
		},
		Output: OutputConfig{
			Dir: "results",
		},
	}
}
