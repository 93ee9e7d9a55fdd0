package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"emergence/internal/store"
	"emergence/pkg/types"
)

// testStore connects to the database named by EMERGENCE_TEST_POSTGRES_DSN and
// skips the test when the variable is unset.
func testStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("EMERGENCE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("EMERGENCE_TEST_POSTGRES_DSN not set; skipping integration test")
	}

	s, err := NewStore(context.Background(), dsn)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func sampleRun(sessionID string, at time.Time) (store.Run, []types.Observation) {
	run := store.Run{
		SessionID: sessionID,
		CreatedAt: at,
		Record: types.ScoreRecord{
			EmergenceScore: 0.667,
			PatternType:    types.PatternAAFC,
			Coherence:      0.8,
		},
		ToolSummary: "3/5",
	}
	obs := []types.Observation{
		{
			Turn:           1,
			Timestamp:      at,
			Pattern:        types.PatternAAFC,
			EmergenceScore: 0.667,
			TrustScore:     0.7,
			HasMarker:      true,
		},
		{
			Turn:              2,
			Timestamp:         at.Add(time.Second),
			Pattern:           types.PatternCCDR,
			EmergenceScore:    0.81,
			EmergenceDetected: true,
		},
	}
	return run, obs
}

func TestSaveRunAndRecentRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	sessionID := uuid.NewString()
	run, obs := sampleRun(sessionID, time.Now().UTC())

	if err := s.SaveRun(ctx, run, obs); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	t.Cleanup(func() {
		_, _ = s.pool.Exec(ctx, "DELETE FROM runs WHERE session_id = $1", sessionID)
	})

	runs, err := s.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}

	var found *store.Run
	for i := range runs {
		if runs[i].SessionID == sessionID {
			found = &runs[i]
			break
		}
	}
	if found == nil {
		t.Fatalf("session %s not in recent runs", sessionID)
	}
	if found.Record.PatternType != types.PatternAAFC {
		t.Errorf("PatternType = %q, want %q", found.Record.PatternType, types.PatternAAFC)
	}
	if found.ToolSummary != "3/5" {
		t.Errorf("ToolSummary = %q, want %q", found.ToolSummary, "3/5")
	}
}

func TestObservationsQueryFilters(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	sessionID := uuid.NewString()
	run, obs := sampleRun(sessionID, time.Now().UTC())

	if err := s.SaveRun(ctx, run, obs); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	t.Cleanup(func() {
		_, _ = s.pool.Exec(ctx, "DELETE FROM runs WHERE session_id = $1", sessionID)
	})

	all, err := s.Observations(ctx, store.Query{SessionID: sessionID})
	if err != nil {
		t.Fatalf("Observations: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d observations, want 2", len(all))
	}

	high, err := s.Observations(ctx, store.Query{SessionID: sessionID, MinScore: 0.8})
	if err != nil {
		t.Fatalf("Observations with MinScore: %v", err)
	}
	if len(high) != 1 {
		t.Fatalf("got %d high-score observations, want 1", len(high))
	}
	if high[0].Turn != 2 {
		t.Errorf("Turn = %d, want 2", high[0].Turn)
	}

	aafc, err := s.Observations(ctx, store.Query{SessionID: sessionID, Pattern: types.PatternAAFC})
	if err != nil {
		t.Fatalf("Observations with Pattern: %v", err)
	}
	if len(aafc) != 1 {
		t.Fatalf("got %d AAFC observations, want 1", len(aafc))
	}
	if !aafc[0].HasMarker {
		t.Error("HasMarker = false after round trip, want true")
	}
}

func TestSaveRunUpsertsSummary(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	sessionID := uuid.NewString()
	run, _ := sampleRun(sessionID, time.Now().UTC())

	if err := s.SaveRun(ctx, run, nil); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	t.Cleanup(func() {
		_, _ = s.pool.Exec(ctx, "DELETE FROM runs WHERE session_id = $1", sessionID)
	})

	run.Record.EmergenceScore = 0.9
	if err := s.SaveRun(ctx, run, nil); err != nil {
		t.Fatalf("SaveRun (second): %v", err)
	}

	runs, err := s.RecentRuns(ctx, defaultLimit)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	for _, r := range runs {
		if r.SessionID == sessionID {
			if r.Record.EmergenceScore != 0.9 {
				t.Errorf("EmergenceScore = %v after upsert, want 0.9", r.Record.EmergenceScore)
			}
			return
		}
	}
	t.Fatalf("session %s not found", sessionID)
}
