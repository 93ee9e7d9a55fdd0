// Package report writes and reads result bundles: the JSON artifact produced
// by one analysis run.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"emergence/internal/detector"
	"emergence/internal/tools"
	"emergence/pkg/types"
)

// Bundle is the serialized output of one analysis run. The flat ScoreRecord
// answers "what did this transcript score"; the rest is the supporting
// evidence.
type Bundle struct {
	SessionID   string    `json:"session_id"`
	GeneratedAt time.Time `json:"generated_at"`

	// Record is the flat transcript-level score.
	Record types.ScoreRecord `json:"record"`

	// Observations holds the per-exchange analysis detail.
	Observations []types.Observation `json:"observations,omitempty"`

	// Tools is the five-tool status grid; ToolSummary its "N/5" rendering.
	Tools       []types.ToolStatus `json:"tools,omitempty"`
	ToolSummary string             `json:"tool_summary,omitempty"`

	// Report is the session-level research report.
	Report *detector.Report `json:"report,omitempty"`
}

// New assembles a bundle from the parts of one run.
func New(session *detector.Session, record types.ScoreRecord, set *tools.Set) Bundle {
	r := session.Report()
	return Bundle{
		SessionID:    session.ID(),
		GeneratedAt:  r.GeneratedAt,
		Record:       record,
		Observations: session.Observations(),
		Tools:        set.Statuses(),
		ToolSummary:  set.Summary(),
		Report:       &r,
	}
}

// Write serializes the bundle as indented JSON to path. Parent directories
// must already exist.
func Write(path string, b Bundle) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal bundle: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}

// Read loads a bundle previously written with [Write].
func Read(path string) (Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bundle{}, fmt.Errorf("report: read %s: %w", path, err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("report: decode %s: %w", path, err)
	}
	return b, nil
}

// WriteSession writes the bundle into a fresh timestamped session directory
// under root and returns the path of the result file. Root is created when
// missing.
func WriteSession(root string, b Bundle) (string, error) {
	dir := filepath.Join(root, "session_"+b.GeneratedAt.Format("20060102-150405"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create session dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, "result.json")
	if err := Write(path, b); err != nil {
		return "", err
	}
	return path, nil
}
