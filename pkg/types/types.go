// Package types defines the shared types used across all emergence packages.
//
// These types form the lingua franca between the scorer, the tool integrator,
// the session detector, the reporter, and the observation store. They are
// intentionally minimal: each package defines its own domain types, but
// cross-cutting data structures live here to avoid circular imports.
package types

import "time"

// Turn is a single utterance in a conversation transcript.
type Turn struct {
	// Speaker identifies who produced the text (e.g., "user", "assistant").
	// The scorer does not interpret the value beyond detecting speaker changes.
	Speaker string `json:"speaker"`

	// Text is the utterance content.
	Text string `json:"text"`
}

// Transcript is an ordered sequence of turns. It is an immutable input:
// nothing in the toolkit mutates a transcript after it has been decoded.
type Transcript struct {
	Turns []Turn `json:"turns"`
}

// Empty reports whether the transcript contains no turns.
func (t Transcript) Empty() bool { return len(t.Turns) == 0 }

// PatternType is the categorical label assigned to a scored transcript.
type PatternType string

const (
	// PatternAAFC marks Abstract-Abstract-Future-Conceptual responses.
	PatternAAFC PatternType = "AAFC"

	// PatternCCDR marks Concrete-Concrete-Dynamic-Relational responses.
	PatternCCDR PatternType = "CCDR"

	// PatternABFC marks Abstract-Balanced-Future-Conceptual responses.
	PatternABFC PatternType = "ABFC"

	// PatternNone is the neutral label returned for an empty transcript.
	PatternNone PatternType = "NONE"
)

// IsValid reports whether p is one of the recognised pattern labels.
func (p PatternType) IsValid() bool {
	switch p {
	case PatternAAFC, PatternCCDR, PatternABFC, PatternNone:
		return true
	}
	return false
}

// Description returns the long-form name of the pattern signature.
func (p PatternType) Description() string {
	switch p {
	case PatternAAFC:
		return "Abstract-Abstract-Future-Conceptual"
	case PatternCCDR:
		return "Concrete-Concrete-Dynamic-Relational"
	case PatternABFC:
		return "Abstract-Balanced-Future-Conceptual"
	default:
		return "no pattern"
	}
}

// ScoreRecord is the flat result of scoring one transcript. All scalar fields
// are clamped to [0, 1]. A record is produced once per transcript and never
// mutated afterwards.
type ScoreRecord struct {
	// EmergenceScore summarises the transcript's measured phase-transition-like
	// characteristics. Mean of the boundary, coherence, and trust measures
	// across all exchanges.
	EmergenceScore float64 `json:"emergence_score"`

	// PatternType is the modal pattern signature across exchanges.
	PatternType PatternType `json:"pattern_type"`

	// Coherence summarises semantic stability across the transcript.
	Coherence float64 `json:"coherence"`
}

// BoundaryType classifies the information flux across the prompt/response
// boundary.
type BoundaryType string

const (
	// BoundaryContinuous: flux below 0.3; the response mostly restates the prompt.
	BoundaryContinuous BoundaryType = "continuous"

	// BoundaryTransitional: flux in [0.3, 0.7).
	BoundaryTransitional BoundaryType = "transitional"

	// BoundaryTransformational: flux of 0.7 or above; mostly new information.
	BoundaryTransformational BoundaryType = "transformational"

	// BoundaryNull: the response carried no tokens at all.
	BoundaryNull BoundaryType = "null"
)

// BoundaryMeasure quantifies how much new information crossed the
// prompt/response boundary.
type BoundaryMeasure struct {
	// Score is the information flux: new response tokens over total response
	// tokens, in [0, 1].
	Score float64 `json:"score"`

	// TokensAdded is the number of response tokens absent from the prompt.
	TokensAdded int `json:"tokens_added"`

	// TokensTotal is the number of distinct response tokens.
	TokensTotal int `json:"tokens_total"`

	// Type classifies the flux level.
	Type BoundaryType `json:"type"`
}

// CoherenceMeasure quantifies semantic field stability between prompt and
// response.
type CoherenceMeasure struct {
	// Score is the share of prompt concepts carried into the response, in [0, 1].
	Score float64 `json:"score"`

	// Delta is the absolute change versus the previous observation in the same
	// session. Zero for the first observation.
	Delta float64 `json:"delta"`

	// Stability is "stable" when Delta is below 0.1, "shifting" otherwise.
	Stability string `json:"stability"`
}

// ResonanceType classifies the rhythm of a response's sentence structure.
type ResonanceType string

const (
	ResonanceHarmonic ResonanceType = "harmonic"
	ResonancePartial  ResonanceType = "partial"
	ResonanceChaotic  ResonanceType = "chaotic"
	ResonanceNone     ResonanceType = "none"
)

// ResonanceMeasure quantifies synchronisation in the response's linguistic
// structure. Low variance in sentence length reads as high resonance.
type ResonanceMeasure struct {
	// Strength is 1/(1 + stddev/mean) of sentence word counts, in [0, 1].
	Strength float64 `json:"strength"`

	// Frequency is the mean sentence length in words (the average "wavelength").
	Frequency float64 `json:"frequency"`

	// Variance is the standard deviation of sentence lengths.
	Variance float64 `json:"variance"`

	// Type classifies the strength level.
	Type ResonanceType `json:"type"`
}

// PhaseMeasure locates the exchange in the emergence phase space.
type PhaseMeasure struct {
	// OrderParameter is boundary score × coherence × 2.5.
	OrderParameter float64 `json:"order_parameter"`

	// CriticalPoint is the configured phase-transition indicator value.
	CriticalPoint float64 `json:"critical_point"`

	// DistanceToCritical is |OrderParameter − CriticalPoint|.
	DistanceToCritical float64 `json:"distance_to_critical"`

	// NearCritical is true when the distance falls inside the critical window.
	NearCritical bool `json:"near_critical"`

	// Phase is "emergent" when the order parameter exceeds the critical point,
	// "baseline" otherwise.
	Phase string `json:"phase"`
}

// Indicators holds the four boolean emergence indicators evaluated per
// exchange. Three or more set indicators flag an emergence pattern.
type Indicators struct {
	BoundaryTransformation bool `json:"boundary_transformation"`
	CoherenceShift         bool `json:"coherence_shift"`
	ResonanceDetected      bool `json:"resonance_detected"`
	PhaseTransition        bool `json:"phase_transition"`
}

// Count returns the number of indicators that are set.
func (i Indicators) Count() int {
	n := 0
	for _, b := range []bool{i.BoundaryTransformation, i.CoherenceShift, i.ResonanceDetected, i.PhaseTransition} {
		if b {
			n++
		}
	}
	return n
}

// Observation is the full per-exchange analysis record. Observations
// accumulate inside a detector session and are serialized verbatim into
// result bundles and the observation store.
type Observation struct {
	// Turn is the 1-based exchange index within the session.
	Turn int `json:"turn"`

	// Timestamp is when the exchange was analysed.
	Timestamp time.Time `json:"timestamp"`

	Boundary  BoundaryMeasure  `json:"boundary"`
	Coherence CoherenceMeasure `json:"coherence"`
	Resonance ResonanceMeasure `json:"resonance"`
	Phase     PhaseMeasure     `json:"phase"`

	// Indicators are the per-exchange emergence indicators.
	Indicators Indicators `json:"indicators"`

	// EmergenceScore is the integrated meta score for this exchange:
	// mean of boundary, coherence, and trust.
	EmergenceScore float64 `json:"emergence_score"`

	// TrustScore is the marker-based trust measure for this exchange.
	TrustScore float64 `json:"trust_score"`

	// OverflowDetected is true when the response leans on abstract vocabulary.
	OverflowDetected bool `json:"overflow_detected"`

	// EmergenceDetected is true when at least three indicators are set or the
	// integrated score exceeds the emergence threshold.
	EmergenceDetected bool `json:"emergence_detected"`

	// Pattern is the pattern signature of the response.
	Pattern PatternType `json:"pattern"`

	// HasMarker is true when the response contains the resonance marker.
	HasMarker bool `json:"has_marker"`
}

// ToolStatus describes one entry of the five-tool integration grid.
type ToolStatus struct {
	// Name is the tool identifier (e.g., "tide", "overflow").
	Name string `json:"name"`

	// Active reports whether the tool is enabled in the current configuration.
	Active bool `json:"active"`
}
