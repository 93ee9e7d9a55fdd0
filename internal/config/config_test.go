package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validYAML = `
server:
  listen_addr: ":9090"
  log_level: debug
scoring:
  critical_point: 2.0
  emergence_threshold: 0.6
tools:
  active: [tide, trust]
output:
  dir: out
store:
  postgres_dsn: ""
`

func TestLoadFromReader(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q, want %q", cfg.Server.ListenAddr, ":9090")
	}
	if cfg.Server.LogLevel != LogDebug {
		t.Errorf("LogLevel = %q, want %q", cfg.Server.LogLevel, LogDebug)
	}
	if cfg.Scoring.CriticalPoint != 2.0 {
		t.Errorf("CriticalPoint = %v, want 2.0", cfg.Scoring.CriticalPoint)
	}
	if len(cfg.Tools.Active) != 2 {
		t.Errorf("Tools.Active = %v, want two entries", cfg.Tools.Active)
	}
	if cfg.Output.Dir != "out" {
		t.Errorf("Output.Dir = %q, want %q", cfg.Output.Dir, "out")
	}
}

func TestLoadFromReaderDefaults(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader("scoring:\n  critical_window: 0.3\n"))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want default %q", cfg.Server.ListenAddr, ":8080")
	}
	if cfg.Output.Dir != "results" {
		t.Errorf("Output.Dir = %q, want default %q", cfg.Output.Dir, "results")
	}
	if cfg.Scoring.CriticalWindow != 0.3 {
		t.Errorf("CriticalWindow = %v, want 0.3", cfg.Scoring.CriticalWindow)
	}
}

func TestLoadFromReaderRejectsUnknownKeys(t *testing.T) {
	if _, err := LoadFromReader(strings.NewReader("serverr:\n  listen_addr: \":1\"\n")); err == nil {
		t.Fatal("unknown top-level key accepted")
	}
}

func TestValidateCollectsAllFailures(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{ListenAddr: "", LogLevel: "loud"},
		Scoring: ScoringConfig{FuzzyThreshold: 1.5, EmergenceThreshold: -0.1},
		Output:  OutputConfig{Dir: ""},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate returned nil for invalid config")
	}
	for _, want := range []string{
		"server.listen_addr",
		"server.log_level",
		"scoring.fuzzy_threshold",
		"scoring.emergence_threshold",
		"output.dir",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %s: %v", want, err)
		}
	}
}

func TestLogLevelSlog(t *testing.T) {
	if got := LogDebug.Slog(); got.String() != "DEBUG" {
		t.Errorf("LogDebug.Slog() = %v, want DEBUG", got)
	}
	if got := LogLevel("").Slog(); got.String() != "INFO" {
		t.Errorf("empty LogLevel.Slog() = %v, want INFO", got)
	}
}

func TestWatcherReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	changed := make(chan *Config, 1)
	w, err := NewWatcher(path, func(_, cur *Config) {
		changed <- cur
	}, WithInterval(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	if got := w.Current().Server.ListenAddr; got != ":9090" {
		t.Fatalf("initial ListenAddr = %q, want %q", got, ":9090")
	}

	updated := strings.Replace(validYAML, ":9090", ":7070", 1)
	// Sleep so the rewritten file gets a new mtime even on coarse filesystems.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case cfg := <-changed:
		if cfg.Server.ListenAddr != ":7070" {
			t.Errorf("reloaded ListenAddr = %q, want %q", cfg.Server.ListenAddr, ":7070")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not observe the change")
	}
}

func TestWatcherKeepsOldConfigOnInvalidUpdate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	w, err := NewWatcher(path, nil, WithInterval(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("server:\n  log_level: loud\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	time.Sleep(200 * time.Millisecond)

	if got := w.Current().Server.ListenAddr; got != ":9090" {
		t.Errorf("Current().ListenAddr = %q after invalid update, want %q", got, ":9090")
	}
}
