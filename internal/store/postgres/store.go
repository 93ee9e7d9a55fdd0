package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"emergence/internal/store"
	"emergence/pkg/types"
)

// defaultLimit caps queries that do not set an explicit limit.
const defaultLimit = 100

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is the PostgreSQL-backed observation store. Safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the PostgreSQL database at dsn and runs [Migrate].
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: migrate: %w", err)
	}
	return &Store{pool: pool}, nil
}

// SaveRun persists the run summary and all its observations in one
// transaction. Saving the same session twice replaces the run summary and
// appends the new observations.
func (s *Store) SaveRun(ctx context.Context, run store.Run, observations []types.Observation) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres store: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO runs (session_id, created_at, emergence_score, pattern_type, coherence, tool_summary)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id) DO UPDATE SET
			created_at = EXCLUDED.created_at,
			emergence_score = EXCLUDED.emergence_score,
			pattern_type = EXCLUDED.pattern_type,
			coherence = EXCLUDED.coherence,
			tool_summary = EXCLUDED.tool_summary`,
		run.SessionID, createdAt,
		run.Record.EmergenceScore, string(run.Record.PatternType), run.Record.Coherence,
		run.ToolSummary,
	)
	if err != nil {
		return fmt.Errorf("postgres store: insert run: %w", err)
	}

	for _, obs := range observations {
		payload, err := json.Marshal(obs)
		if err != nil {
			return fmt.Errorf("postgres store: marshal observation %d: %w", obs.Turn, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO observations (session_id, turn, recorded_at, pattern, emergence_score, detected, payload)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			run.SessionID, obs.Turn, obs.Timestamp,
			string(obs.Pattern), obs.EmergenceScore, obs.EmergenceDetected,
			payload,
		)
		if err != nil {
			return fmt.Errorf("postgres store: insert observation %d: %w", obs.Turn, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres store: commit: %w", err)
	}
	return nil
}

// RecentRuns returns the most recently stored runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.pool.Query(ctx, `
		SELECT session_id, created_at, emergence_score, pattern_type, coherence, tool_summary
		FROM runs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres store: query runs: %w", err)
	}
	defer rows.Close()

	var out []store.Run
	for rows.Next() {
		var r store.Run
		var pattern string
		if err := rows.Scan(&r.SessionID, &r.CreatedAt,
			&r.Record.EmergenceScore, &pattern, &r.Record.Coherence,
			&r.ToolSummary); err != nil {
			return nil, fmt.Errorf("postgres store: scan run: %w", err)
		}
		r.Record.PatternType = types.PatternType(pattern)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres store: iterate runs: %w", err)
	}
	return out, nil
}

// Observations returns stored observations matching q, newest first.
func (s *Store) Observations(ctx context.Context, q store.Query) ([]types.Observation, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.SessionID != "" {
		conds = append(conds, "session_id = "+arg(q.SessionID))
	}
	if q.Pattern != "" {
		conds = append(conds, "pattern = "+arg(string(q.Pattern)))
	}
	if q.MinScore > 0 {
		conds = append(conds, "emergence_score >= "+arg(q.MinScore))
	}
	if !q.Since.IsZero() {
		conds = append(conds, "recorded_at >= "+arg(q.Since))
	}

	query := "SELECT payload FROM observations"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	query += " ORDER BY recorded_at DESC LIMIT " + arg(limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres store: query observations: %w", err)
	}
	defer rows.Close()

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Observation, error) {
		var payload []byte
		if err := row.Scan(&payload); err != nil {
			return types.Observation{}, err
		}
		var obs types.Observation
		if err := json.Unmarshal(payload, &obs); err != nil {
			return types.Observation{}, err
		}
		return obs, nil
	})
	if err != nil {
		return nil, fmt.Errorf("postgres store: collect observations: %w", err)
	}
	return out, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases all connections held by the pool.
func (s *Store) Close() {
	s.pool.Close()
}
