package scorer

import (
	"math"
	"testing"

	"emergence/pkg/types"
)

// goldenTranscript reproduces the reference exchange from the project's
// example output: {emergence_score: 0.667, pattern_type: "AAFC", coherence: 0.800}.
func goldenTranscript() types.Transcript {
	return types.Transcript{Turns: []types.Turn{
		{Speaker: "user", Text: "quantum resonance shapes emergent behavior"},
		{Speaker: "assistant", Text: "resonance shapes emergent behavior theory would illuminate <4577>"},
	}}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-3
}

func TestScoreGolden(t *testing.T) {
	rec := New().Score(goldenTranscript())

	if !almostEqual(rec.EmergenceScore, 0.667) {
		t.Errorf("EmergenceScore = %v, want 0.667", rec.EmergenceScore)
	}
	if rec.PatternType != types.PatternAAFC {
		t.Errorf("PatternType = %q, want %q", rec.PatternType, types.PatternAAFC)
	}
	if !almostEqual(rec.Coherence, 0.800) {
		t.Errorf("Coherence = %v, want 0.800", rec.Coherence)
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := New()
	first := s.Score(goldenTranscript())
	for i := 0; i < 20; i++ {
		if got := s.Score(goldenTranscript()); got != first {
			t.Fatalf("run %d produced %+v, first run produced %+v", i, got, first)
		}
	}
}

func TestScoreEmptyTranscript(t *testing.T) {
	rec := New().Score(types.Transcript{})

	want := types.ScoreRecord{EmergenceScore: 0, PatternType: types.PatternNone, Coherence: 0}
	if rec != want {
		t.Errorf("Score(empty) = %+v, want %+v", rec, want)
	}
}

func TestScoreRangeClamped(t *testing.T) {
	// Single-turn transcripts have an empty prompt, so coherence falls back to
	// the neutral value and every scalar must still land in [0, 1].
	rec := New().Score(types.Transcript{Turns: []types.Turn{
		{Speaker: "assistant", Text: "abstract theory will emerge <4577>"},
	}})

	for name, v := range map[string]float64{
		"EmergenceScore": rec.EmergenceScore,
		"Coherence":      rec.Coherence,
	} {
		if v < 0 || v > 1 {
			t.Errorf("%s = %v, want value in [0, 1]", name, v)
		}
	}
	if !rec.PatternType.IsValid() {
		t.Errorf("PatternType = %q, want a valid label", rec.PatternType)
	}
}

func TestExchanges(t *testing.T) {
	tests := []struct {
		name  string
		turns []types.Turn
		want  []Exchange
	}{
		{
			name:  "empty",
			turns: nil,
			want:  nil,
		},
		{
			name:  "single turn",
			turns: []types.Turn{{Speaker: "assistant", Text: "hello there"}},
			want:  []Exchange{{Prompt: "", Response: "hello there"}},
		},
		{
			name: "two turns",
			turns: []types.Turn{
				{Speaker: "user", Text: "first"},
				{Speaker: "assistant", Text: "second"},
			},
			want: []Exchange{{Prompt: "first", Response: "second"}},
		},
		{
			name: "sliding pairs",
			turns: []types.Turn{
				{Speaker: "user", Text: "a"},
				{Speaker: "assistant", Text: "b"},
				{Speaker: "user", Text: "c"},
			},
			want: []Exchange{
				{Prompt: "a", Response: "b"},
				{Prompt: "b", Response: "c"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Exchanges(types.Transcript{Turns: tc.turns})
			if len(got) != len(tc.want) {
				t.Fatalf("got %d exchanges, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("exchange %d = %+v, want %+v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestBoundary(t *testing.T) {
	tests := []struct {
		name      string
		prompt    string
		response  string
		wantScore float64
		wantType  types.BoundaryType
	}{
		{
			name:      "empty response",
			prompt:    "anything at all",
			response:  "",
			wantScore: 0,
			wantType:  types.BoundaryNull,
		},
		{
			name:      "pure restatement",
			prompt:    "hello world",
			response:  "hello world",
			wantScore: 0,
			wantType:  types.BoundaryContinuous,
		},
		{
			name:      "all new information",
			prompt:    "alpha beta",
			response:  "gamma delta epsilon",
			wantScore: 1,
			wantType:  types.BoundaryTransformational,
		},
		{
			name:      "half new",
			prompt:    "quantum resonance shapes emergent behavior",
			response:  "resonance shapes emergent behavior theory would illuminate <4577>",
			wantScore: 0.5,
			wantType:  types.BoundaryTransitional,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Boundary(tc.prompt, tc.response)
			if !almostEqual(got.Score, tc.wantScore) {
				t.Errorf("Score = %v, want %v", got.Score, tc.wantScore)
			}
			if got.Type != tc.wantType {
				t.Errorf("Type = %q, want %q", got.Type, tc.wantType)
			}
		})
	}
}

func TestCoherence(t *testing.T) {
	s := New()

	tests := []struct {
		name     string
		prompt   string
		response string
		want     float64
	}{
		{
			name:     "empty prompt is neutral",
			prompt:   "",
			response: "some response",
			want:     0.5,
		},
		{
			name:     "full carryover",
			prompt:   "hello world",
			response: "hello world again",
			want:     1,
		},
		{
			name:     "no carryover",
			prompt:   "alpha beta",
			response: "gamma delta",
			want:     0,
		},
		{
			name:     "golden partial carryover",
			prompt:   "quantum resonance shapes emergent behavior",
			response: "resonance shapes emergent behavior theory would illuminate <4577>",
			want:     0.8,
		},
		{
			name:     "inflected form carries through fuzzy match",
			prompt:   "emergent behavior",
			response: "emergent behaviors observed",
			want:     1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.Coherence(tc.prompt, tc.response); !almostEqual(got, tc.want) {
				t.Errorf("Coherence(%q, %q) = %v, want %v", tc.prompt, tc.response, got, tc.want)
			}
		})
	}
}

func TestCoherenceFuzzyThresholdOption(t *testing.T) {
	// A threshold of 0.99 effectively disables the fuzzy pass, so the
	// inflected "behaviors" no longer counts as carrying "behavior".
	strict := New(WithFuzzyThreshold(0.99))
	if got := strict.Coherence("emergent behavior", "emergent behaviors observed"); !almostEqual(got, 0.5) {
		t.Errorf("strict Coherence = %v, want 0.5", got)
	}
}

func TestSignature(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     types.PatternType
	}{
		{
			name:     "abstract and future",
			response: "this theory would suggest more",
			want:     types.PatternAAFC,
		},
		{
			name:     "concrete present",
			response: "the cat sat on the mat",
			want:     types.PatternCCDR,
		},
		{
			name:     "concrete future",
			response: "we will meet tomorrow at noon",
			want:     types.PatternCCDR,
		},
		{
			name:     "abstract present",
			response: "an abstract structure is visible here",
			want:     types.PatternABFC,
		},
		{
			name:     "cue inside larger word",
			response: "conceptually this holds in the future",
			want:     types.PatternAAFC,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Signature(tc.response); got != tc.want {
				t.Errorf("Signature(%q) = %q, want %q", tc.response, got, tc.want)
			}
		})
	}
}

func TestResonance(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantType types.ResonanceType
	}{
		{
			name:     "no sentence boundary",
			response: "no rhythm to speak of",
			wantType: types.ResonanceNone,
		},
		{
			name:     "uniform sentence lengths",
			response: "one two three. four five six. seven eight nine.",
			wantType: types.ResonanceHarmonic,
		},
		{
			name:     "wildly uneven lengths",
			response: "a. b. one two three four five six seven eight nine ten.",
			wantType: types.ResonanceChaotic,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Resonance(tc.response)
			if got.Type != tc.wantType {
				t.Errorf("Type = %q, want %q (strength %v)", got.Type, tc.wantType, got.Strength)
			}
			if got.Strength < 0 || got.Strength > 1 {
				t.Errorf("Strength = %v, want value in [0, 1]", got.Strength)
			}
		})
	}
}

func TestTrustScore(t *testing.T) {
	if got := TrustScore("plain response"); !almostEqual(got, 0.6) {
		t.Errorf("TrustScore without marker = %v, want 0.6", got)
	}
	if got := TrustScore("response carrying <4577> marker"); !almostEqual(got, 0.7) {
		t.Errorf("TrustScore with marker = %v, want 0.7", got)
	}
}

func TestOverflowDetected(t *testing.T) {
	if OverflowDetected("the cat sat on the mat") {
		t.Error("OverflowDetected = true for concrete text, want false")
	}
	if !OverflowDetected("a recurring pattern appears") {
		t.Error("OverflowDetected = false for abstract text, want true")
	}
}

func TestPhase(t *testing.T) {
	s := New()

	tests := []struct {
		name             string
		boundary         float64
		coherence        float64
		wantPhase        string
		wantNearCritical bool
	}{
		{
			name:      "baseline",
			boundary:  0.5,
			coherence: 0.5,
			wantPhase: "baseline",
		},
		{
			name:             "near critical from below",
			boundary:         0.8,
			coherence:        0.8,
			wantPhase:        "baseline",
			wantNearCritical: true, // order 1.6, distance 0.15
		},
		{
			name:             "emergent near critical",
			boundary:         0.9,
			coherence:        0.8,
			wantPhase:        "emergent",
			wantNearCritical: true, // order 1.8, distance 0.05
		},
		{
			name:      "emergent far past critical",
			boundary:  1,
			coherence: 1,
			wantPhase: "emergent", // order 2.5, distance 0.75
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Phase(tc.boundary, tc.coherence)
			if got.Phase != tc.wantPhase {
				t.Errorf("Phase = %q, want %q", got.Phase, tc.wantPhase)
			}
			if got.NearCritical != tc.wantNearCritical {
				t.Errorf("NearCritical = %v, want %v", got.NearCritical, tc.wantNearCritical)
			}
			wantOrder := tc.boundary * tc.coherence * 2.5
			if !almostEqual(got.OrderParameter, wantOrder) {
				t.Errorf("OrderParameter = %v, want %v", got.OrderParameter, wantOrder)
			}
		})
	}
}

func TestAnalyzeExchangeGolden(t *testing.T) {
	a := New().AnalyzeExchange(
		"quantum resonance shapes emergent behavior",
		"resonance shapes emergent behavior theory would illuminate <4577>",
	)

	if !almostEqual(a.Boundary.Score, 0.5) {
		t.Errorf("Boundary.Score = %v, want 0.5", a.Boundary.Score)
	}
	if !almostEqual(a.Coherence, 0.8) {
		t.Errorf("Coherence = %v, want 0.8", a.Coherence)
	}
	if !almostEqual(a.TrustScore, 0.7) {
		t.Errorf("TrustScore = %v, want 0.7", a.TrustScore)
	}
	if !a.HasMarker {
		t.Error("HasMarker = false, want true")
	}
	if !a.OverflowDetected {
		t.Error("OverflowDetected = false, want true")
	}
	if a.Pattern != types.PatternAAFC {
		t.Errorf("Pattern = %q, want %q", a.Pattern, types.PatternAAFC)
	}
	if !almostEqual(a.EmergenceScore, 0.667) {
		t.Errorf("EmergenceScore = %v, want 0.667", a.EmergenceScore)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.7, 1},
	}
	for _, tc := range tests {
		if got := Clamp(tc.in); got != tc.want {
			t.Errorf("Clamp(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
