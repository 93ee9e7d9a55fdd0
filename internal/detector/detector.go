// Package detector layers session state on top of the per-exchange scorer.
//
// A Session accumulates observations across the exchanges of one conversation,
// tracks how coherence moves between consecutive exchanges, evaluates the four
// emergence indicators, and records an event whenever an exchange crosses the
// detection threshold. The final Report aggregates the session for research
// output.
package detector

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"emergence/internal/scorer"
	"emergence/pkg/types"
)

const (
	defaultEmergenceThreshold = 0.7

	// Indicator thresholds.
	boundaryIndicator  = 0.7
	coherenceShift     = 0.15
	resonanceIndicator = 0.8

	// Three or more indicators flag emergence on their own.
	indicatorQuorum = 3

	// Coherence deltas below this read as a stable semantic field.
	stabilityWindow = 0.1
)

// Option configures a [Session].
type Option func(*Session)

// WithEmergenceThreshold overrides the integrated-score threshold above which
// an exchange counts as an emergence event. Default: 0.7.
func WithEmergenceThreshold(v float64) Option {
	return func(s *Session) {
		if v > 0 {
			s.threshold = v
		}
	}
}

// WithClock overrides the timestamp source. Tests use this to pin timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Event records one exchange that crossed the detection threshold.
type Event struct {
	Turn       int              `json:"turn"`
	Timestamp  time.Time        `json:"timestamp"`
	Score      float64          `json:"score"`
	Indicators types.Indicators `json:"indicators"`
}

// Session is a stateful detector over the exchanges of one conversation.
// Safe for concurrent use.
type Session struct {
	id        string
	scorer    *scorer.Scorer
	threshold float64
	now       func() time.Time

	mu            sync.Mutex
	turn          int
	prevCoherence float64
	hasPrev       bool
	observations  []types.Observation
	events        []Event
	markerCount   int
}

// NewSession starts a fresh detector session around the given scorer.
func NewSession(s *scorer.Scorer, opts ...Option) *Session {
	sess := &Session{
		id:        uuid.NewString(),
		scorer:    s,
		threshold: defaultEmergenceThreshold,
		now:       time.Now,
	}
	for _, o := range opts {
		o(sess)
	}
	return sess
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Observe analyses one exchange in session context and appends the resulting
// observation. Turn numbering is 1-based.
func (s *Session) Observe(prompt, response string) types.Observation {
	a := s.scorer.AnalyzeExchange(prompt, response)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.turn++

	delta := 0.0
	if s.hasPrev {
		delta = a.Coherence - s.prevCoherence
		if delta < 0 {
			delta = -delta
		}
	}
	s.prevCoherence = a.Coherence
	s.hasPrev = true

	stability := "stable"
	if delta >= stabilityWindow {
		stability = "shifting"
	}

	ind := types.Indicators{
		BoundaryTransformation: a.Boundary.Score > boundaryIndicator,
		CoherenceShift:         delta > coherenceShift,
		ResonanceDetected:      a.Resonance.Strength > resonanceIndicator,
		PhaseTransition:        a.Phase.NearCritical,
	}
	detected := ind.Count() >= indicatorQuorum || a.EmergenceScore > s.threshold

	obs := types.Observation{
		Turn:      s.turn,
		Timestamp: s.now(),
		Boundary:  a.Boundary,
		Coherence: types.CoherenceMeasure{
			Score:     a.Coherence,
			Delta:     delta,
			Stability: stability,
		},
		Resonance:         a.Resonance,
		Phase:             a.Phase,
		Indicators:        ind,
		EmergenceScore:    a.EmergenceScore,
		TrustScore:        a.TrustScore,
		OverflowDetected:  a.OverflowDetected,
		EmergenceDetected: detected,
		Pattern:           a.Pattern,
		HasMarker:         a.HasMarker,
	}

	s.observations = append(s.observations, obs)
	if a.HasMarker {
		s.markerCount++
	}
	if detected {
		s.events = append(s.events, Event{
			Turn:       s.turn,
			Timestamp:  obs.Timestamp,
			Score:      a.EmergenceScore,
			Indicators: ind,
		})
	}
	return obs
}

// ObserveTranscript runs Observe over every exchange of the transcript.
func (s *Session) ObserveTranscript(t types.Transcript) []types.Observation {
	exchanges := scorer.Exchanges(t)
	out := make([]types.Observation, 0, len(exchanges))
	for _, ex := range exchanges {
		out = append(out, s.Observe(ex.Prompt, ex.Response))
	}
	return out
}

// Observations returns a copy of all observations so far, in turn order.
func (s *Session) Observations() []types.Observation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Observation, len(s.observations))
	copy(out, s.observations)
	return out
}

// Events returns a copy of all emergence events so far.
func (s *Session) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Report aggregates the session into a research report.
type Report struct {
	SessionID           string                    `json:"session_id"`
	GeneratedAt         time.Time                 `json:"generated_at"`
	TotalObservations   int                       `json:"total_observations"`
	EmergenceEvents     int                       `json:"emergence_events"`
	EmergenceRate       float64                   `json:"emergence_rate"`
	PatternDistribution map[types.PatternType]int `json:"pattern_distribution"`
	MarkerCount         int                       `json:"marker_count"`
	Findings            []string                  `json:"findings"`
	Events              []Event                   `json:"events"`
}

// Report summarizes everything the session has observed so far.
func (s *Session) Report() Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := Report{
		SessionID:           s.id,
		GeneratedAt:         s.now(),
		TotalObservations:   len(s.observations),
		EmergenceEvents:     len(s.events),
		PatternDistribution: make(map[types.PatternType]int),
		MarkerCount:         s.markerCount,
		Events:              append([]Event(nil), s.events...),
	}
	if r.TotalObservations > 0 {
		r.EmergenceRate = float64(r.EmergenceEvents) / float64(r.TotalObservations)
	}
	for _, obs := range s.observations {
		r.PatternDistribution[obs.Pattern]++
	}
	r.Findings = findings(r)
	return r
}

// findings renders the report's headline observations as sentences.
func findings(r Report) []string {
	if r.TotalObservations == 0 {
		return []string{"no exchanges observed"}
	}

	out := []string{
		fmt.Sprintf("%d of %d exchanges crossed the emergence threshold (%.0f%%)",
			r.EmergenceEvents, r.TotalObservations, r.EmergenceRate*100),
	}

	if p, n, ok := dominantPattern(r.PatternDistribution); ok {
		out = append(out, fmt.Sprintf("dominant pattern signature: %s (%d exchanges)", p, n))
	}
	if r.MarkerCount > 0 {
		out = append(out, fmt.Sprintf("resonance marker observed in %d exchanges", r.MarkerCount))
	}
	return out
}

// dominantPattern picks the most frequent pattern label. Ties are broken
// alphabetically so that reports stay reproducible.
func dominantPattern(dist map[types.PatternType]int) (types.PatternType, int, bool) {
	if len(dist) == 0 {
		return "", 0, false
	}
	labels := make([]types.PatternType, 0, len(dist))
	for p := range dist {
		labels = append(labels, p)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	best := labels[0]
	for _, p := range labels[1:] {
		if dist[p] > dist[best] {
			best = p
		}
	}
	return best, dist[best], true
}
