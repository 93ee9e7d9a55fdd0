// Package server implements the HTTP service mode: transcript analysis over
// POST, stored-result queries, the tool status grid, health probes, and the
// Prometheus metrics endpoint.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"emergence/internal/config"
	"emergence/internal/detector"
	"emergence/internal/health"
	"emergence/internal/observe"
	"emergence/internal/report"
	"emergence/internal/scorer"
	"emergence/internal/store"
	"emergence/internal/tools"
	"emergence/pkg/types"
)

const shutdownTimeout = 10 * time.Second

// Server wires the analysis pipeline behind HTTP handlers. The configuration
// is read through a getter on every request, so threshold changes picked up
// by the config watcher apply without restart.
type Server struct {
	cfg     func() *config.Config
	store   store.Store
	metrics *observe.Metrics
	health  *health.Handler
	handler http.Handler
}

// New builds a Server. st may be nil; the stored-results endpoint then
// responds 503. The initial config is used once to verify the tool list.
func New(cfg func() *config.Config, st store.Store, m *observe.Metrics) (*Server, error) {
	if _, err := tools.NewSet(scorer.New(), cfg().Tools.Active); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		store:   st,
		metrics: m,
		health:  health.New(),
	}
	s.health.Add("config", func(context.Context) error {
		return config.Validate(s.cfg())
	})
	if st != nil {
		s.health.Add("store", st.Ping)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /v1/results", s.handleResults)
	mux.HandleFunc("GET /v1/tools", s.handleTools)
	mux.Handle("GET /metrics", promhttp.Handler())
	s.health.Register(mux)

	s.handler = observe.Middleware(m)(mux)
	return s, nil
}

// Handler returns the fully wired HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg().Server.ListenAddr,
		Handler: s.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// pipeline builds the analysis components from the current configuration.
func (s *Server) pipeline() (*scorer.Scorer, *tools.Set, *detector.Session, error) {
	cfg := s.cfg()
	sc := scorer.New(
		scorer.WithCriticalPoint(cfg.Scoring.CriticalPoint),
		scorer.WithCriticalWindow(cfg.Scoring.CriticalWindow),
		scorer.WithFuzzyThreshold(cfg.Scoring.FuzzyThreshold),
	)
	set, err := tools.NewSet(sc, cfg.Tools.Active)
	if err != nil {
		return nil, nil, nil, err
	}
	sess := detector.NewSession(sc,
		detector.WithEmergenceThreshold(cfg.Scoring.EmergenceThreshold))
	return sc, set, sess, nil
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := observe.Logger(ctx)

	var transcript types.Transcript
	if err := json.NewDecoder(r.Body).Decode(&transcript); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode transcript: %w", err))
		return
	}

	sc, set, sess, err := s.pipeline()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.metrics.ActiveSessions.Add(ctx, 1)
	defer s.metrics.ActiveSessions.Add(ctx, -1)

	start := time.Now()
	observations := sess.ObserveTranscript(transcript)
	record := sc.Score(transcript)
	s.metrics.AnalysisDuration.Record(ctx, time.Since(start).Seconds())

	for _, obs := range observations {
		s.metrics.RecordExchange(ctx, string(obs.Pattern))
		if obs.EmergenceDetected {
			s.metrics.RecordEmergenceEvent(ctx)
		}
	}
	if len(transcript.Turns) > 0 {
		last := scorer.Exchanges(transcript)
		ex := last[len(last)-1]
		for _, res := range set.Run(ex.Prompt, ex.Response) {
			s.metrics.RecordToolInvocation(ctx, res.Tool)
		}
	}

	bundle := report.New(sess, record, set)

	if s.store != nil {
		run := store.Run{
			SessionID:   bundle.SessionID,
			CreatedAt:   bundle.GeneratedAt,
			Record:      record,
			ToolSummary: bundle.ToolSummary,
		}
		if err := s.store.SaveRun(ctx, run, observations); err != nil {
			// The analysis result is still valid; persistence is best-effort.
			log.Error("store analysis run", "session_id", bundle.SessionID, "err", err)
		}
	}

	log.Info("transcript analysed",
		"session_id", bundle.SessionID,
		"turns", len(transcript.Turns),
		"emergence_score", record.EmergenceScore,
		"pattern_type", string(record.PatternType),
	)
	writeJSON(w, http.StatusOK, bundle)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("observation store not configured"))
		return
	}

	runs, err := s.store.RecentRuns(r.Context(), 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("query runs: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	_, set, _, err := s.pipeline()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tools":   set.Statuses(),
		"summary": set.Summary(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encode response"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
