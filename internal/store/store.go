// Package store defines the persistence interface for analysis runs. The
// store is optional: without a configured backend the toolkit writes JSON
// files only.
package store

import (
	"context"
	"time"

	"emergence/pkg/types"
)

// Run is the stored summary of one analysis run.
type Run struct {
	// SessionID identifies the detector session that produced the run.
	SessionID string `json:"session_id"`

	// CreatedAt is when the run was persisted.
	CreatedAt time.Time `json:"created_at"`

	// Record is the flat transcript-level score.
	Record types.ScoreRecord `json:"record"`

	// ToolSummary is the "N/5" tool grid rendering at analysis time.
	ToolSummary string `json:"tool_summary"`
}

// Query filters stored observations. Zero fields are ignored.
type Query struct {
	// SessionID restricts results to one session.
	SessionID string

	// Pattern restricts results to one pattern signature.
	Pattern types.PatternType

	// MinScore keeps only observations with at least this emergence score.
	MinScore float64

	// Since keeps only observations recorded at or after this time.
	Since time.Time

	// Limit caps the number of returned rows. Zero means the store default.
	Limit int
}

// Store persists analysis runs and their per-exchange observations.
// Implementations must be safe for concurrent use.
type Store interface {
	// SaveRun persists one run together with its observations.
	SaveRun(ctx context.Context, run Run, observations []types.Observation) error

	// RecentRuns returns the most recently stored runs, newest first.
	// limit <= 0 applies the store default.
	RecentRuns(ctx context.Context, limit int) ([]Run, error)

	// Observations returns stored observations matching q, newest first.
	Observations(ctx context.Context, q Query) ([]types.Observation, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close()
}
