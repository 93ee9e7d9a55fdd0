// Package postgres provides a PostgreSQL-backed implementation of
// [store.Store]. All operations share a single [pgxpool.Pool]; [Migrate] is
// idempotent and safe to call on every application start.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ddlRuns = `
CREATE TABLE IF NOT EXISTS runs (
    session_id      TEXT             PRIMARY KEY,
    created_at      TIMESTAMPTZ      NOT NULL DEFAULT now(),
    emergence_score DOUBLE PRECISION NOT NULL,
    pattern_type    TEXT             NOT NULL,
    coherence       DOUBLE PRECISION NOT NULL,
    tool_summary    TEXT             NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at
    ON runs (created_at);

CREATE INDEX IF NOT EXISTS idx_runs_pattern_type
    ON runs (pattern_type);
`

const ddlObservations = `
CREATE TABLE IF NOT EXISTS observations (
    id              BIGSERIAL        PRIMARY KEY,
    session_id      TEXT             NOT NULL REFERENCES runs (session_id) ON DELETE CASCADE,
    turn            INTEGER          NOT NULL,
    recorded_at     TIMESTAMPTZ      NOT NULL DEFAULT now(),
    pattern         TEXT             NOT NULL,
    emergence_score DOUBLE PRECISION NOT NULL,
    detected        BOOLEAN          NOT NULL DEFAULT false,
    payload         JSONB            NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_observations_session_id
    ON observations (session_id);

CREATE INDEX IF NOT EXISTS idx_observations_recorded_at
    ON observations (recorded_at);

CREATE INDEX IF NOT EXISTS idx_observations_pattern
    ON observations (pattern);

CREATE INDEX IF NOT EXISTS idx_observations_payload
    ON observations USING GIN (payload);
`

// Migrate creates or ensures all required tables and indexes exist. It is
// idempotent (CREATE TABLE IF NOT EXISTS / CREATE INDEX IF NOT EXISTS).
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range []string{ddlRuns, ddlObservations} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
	}
	return nil
}
