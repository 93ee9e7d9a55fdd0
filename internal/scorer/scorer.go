// Package scorer implements the deterministic feature measurements behind the
// emergence toolkit: information-flux boundary analysis, semantic coherence,
// sentence-rhythm resonance, phase-space positioning, and pattern signature
// classification.
//
// All measurements are empirical, single-pass computations over the transcript
// text. No randomness, no network calls, no model inference: the same
// transcript always produces the same scores. Scalars are clamped to [0, 1].
package scorer

import (
	"strings"

	"emergence/pkg/types"
)

// Marker is the resonance marker tracked across responses. Its presence
// raises the trust measure for the exchange.
const Marker = "<4577>"

const (
	defaultCriticalPoint  = 1.75
	defaultCriticalWindow = 0.2
	defaultFuzzyThreshold = 0.85
)

// Option is a functional option for configuring a [Scorer].
type Option func(*Scorer)

// WithCriticalPoint sets the phase-transition indicator value. Default: 1.75.
func WithCriticalPoint(v float64) Option {
	return func(s *Scorer) {
		if v > 0 {
			s.criticalPoint = v
		}
	}
}

// WithCriticalWindow sets the distance from the critical point inside which
// an exchange counts as near-critical. Default: 0.2.
func WithCriticalWindow(v float64) Option {
	return func(s *Scorer) {
		if v > 0 {
			s.criticalWindow = v
		}
	}
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler similarity for two tokens
// to count as the same concept in the coherence measure. Default: 0.85.
func WithFuzzyThreshold(v float64) Option {
	return func(s *Scorer) {
		if v > 0 {
			s.fuzzyThreshold = v
		}
	}
}

// Scorer computes per-exchange measurements and transcript-level score
// records. It is read-only after construction and safe for concurrent use.
type Scorer struct {
	criticalPoint  float64
	criticalWindow float64
	fuzzyThreshold float64
}

// New returns a Scorer configured with the supplied options.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		criticalPoint:  defaultCriticalPoint,
		criticalWindow: defaultCriticalWindow,
		fuzzyThreshold: defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Exchange is a single (prompt, response) pair extracted from a transcript.
type Exchange struct {
	Prompt   string
	Response string
}

// Exchanges splits a transcript into consecutive (prompt, response) pairs:
// every turn after the first is analysed as a response to its predecessor.
// A single-turn transcript yields one exchange with an empty prompt.
func Exchanges(t types.Transcript) []Exchange {
	switch len(t.Turns) {
	case 0:
		return nil
	case 1:
		return []Exchange{{Prompt: "", Response: t.Turns[0].Text}}
	}
	out := make([]Exchange, 0, len(t.Turns)-1)
	for i := 1; i < len(t.Turns); i++ {
		out = append(out, Exchange{Prompt: t.Turns[i-1].Text, Response: t.Turns[i].Text})
	}
	return out
}

// Analysis is the complete set of measurements for one exchange. Session-level
// context (coherence delta, emergence indicators) is layered on top by the
// detector package.
type Analysis struct {
	Boundary  types.BoundaryMeasure
	Coherence float64
	Resonance types.ResonanceMeasure
	Phase     types.PhaseMeasure
	Pattern   types.PatternType

	// TrustScore is the marker-based trust measure.
	TrustScore float64

	// OverflowDetected reports abstract-vocabulary overflow in the response.
	OverflowDetected bool

	// HasMarker reports whether the response carries [Marker].
	HasMarker bool

	// EmergenceScore is the integrated meta score: the mean of the boundary
	// score, coherence, and trust score.
	EmergenceScore float64
}

// AnalyzeExchange measures a single (prompt, response) pair.
func (s *Scorer) AnalyzeExchange(prompt, response string) Analysis {
	a := Analysis{
		Boundary:         Boundary(prompt, response),
		Coherence:        s.Coherence(prompt, response),
		Resonance:        Resonance(response),
		Pattern:          Signature(response),
		TrustScore:       TrustScore(response),
		OverflowDetected: OverflowDetected(response),
		HasMarker:        strings.Contains(response, Marker),
	}
	a.Phase = s.Phase(a.Boundary.Score, a.Coherence)
	a.EmergenceScore = Clamp((a.Boundary.Score + a.Coherence + a.TrustScore) / 3)
	return a
}

// Score produces the flat transcript-level record: mean emergence score and
// coherence across all exchanges, and the modal pattern signature (ties are
// broken in favour of the later exchange).
//
// An empty transcript returns the neutral record {0, NONE, 0} rather than an
// error; there is nothing to measure but also nothing wrong with the input.
func (s *Scorer) Score(t types.Transcript) types.ScoreRecord {
	exchanges := Exchanges(t)
	if len(exchanges) == 0 {
		return types.ScoreRecord{PatternType: types.PatternNone}
	}

	var scoreSum, coherenceSum float64
	counts := make(map[types.PatternType]int, 3)
	lastSeen := make(map[types.PatternType]int, 3)

	for i, ex := range exchanges {
		a := s.AnalyzeExchange(ex.Prompt, ex.Response)
		scoreSum += a.EmergenceScore
		coherenceSum += a.Coherence
		counts[a.Pattern]++
		lastSeen[a.Pattern] = i
	}

	var modal types.PatternType
	bestCount, bestSeen := -1, -1
	for p, n := range counts {
		if n > bestCount || (n == bestCount && lastSeen[p] > bestSeen) {
			modal, bestCount, bestSeen = p, n, lastSeen[p]
		}
	}

	n := float64(len(exchanges))
	return types.ScoreRecord{
		EmergenceScore: Clamp(scoreSum / n),
		PatternType:    modal,
		Coherence:      Clamp(coherenceSum / n),
	}
}

// Phase locates an exchange in phase space given its boundary and coherence
// scores. The order parameter is boundary × coherence × 2.5.
func (s *Scorer) Phase(boundary, coherence float64) types.PhaseMeasure {
	order := boundary * coherence * 2.5
	dist := order - s.criticalPoint
	if dist < 0 {
		dist = -dist
	}
	phase := "baseline"
	if order > s.criticalPoint {
		phase = "emergent"
	}
	return types.PhaseMeasure{
		OrderParameter:     order,
		CriticalPoint:      s.criticalPoint,
		DistanceToCritical: dist,
		NearCritical:       dist < s.criticalWindow,
		Phase:              phase,
	}
}

// Clamp limits v to the closed interval [0, 1].
func Clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
