package scorer

import (
	"strings"

	"emergence/pkg/types"
)

// Vocabulary cues for the pattern signature. Matching is by substring on the
// lowercased response, so "conceptual" satisfies the "concept" cue.
var (
	abstractCues = []string{"abstract", "concept", "theory"}
	futureCues   = []string{"will", "future", "would"}
	overflowCues = []string{"abstract", "concept", "theory", "pattern"}
)

// Signature classifies a response into one of the known pattern signatures.
// Two binary features (abstract vs concrete vocabulary, future-oriented vs
// present-oriented phrasing) are mapped onto the label set:
//
//	abstract + future  → AAFC
//	concrete           → CCDR
//	abstract + present → ABFC
func Signature(response string) types.PatternType {
	lower := strings.ToLower(response)

	abstract := containsAny(lower, abstractCues)
	future := containsAny(lower, futureCues)

	switch {
	case abstract && future:
		return types.PatternAAFC
	case !abstract:
		return types.PatternCCDR
	default:
		return types.PatternABFC
	}
}

// TrustScore is the game-theoretic trust measure for a response. Responses
// carrying the resonance marker score 0.7, all others 0.6.
func TrustScore(response string) float64 {
	if strings.Contains(response, Marker) {
		return 0.7
	}
	return 0.6
}

// OverflowDetected reports concrete-overflow: the response leaning on
// abstract vocabulary where concrete grounding was available.
func OverflowDetected(response string) bool {
	return containsAny(strings.ToLower(response), overflowCues)
}

func containsAny(text string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}
