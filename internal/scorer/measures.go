package scorer

import (
	"math"
	"strings"

	"emergence/pkg/types"
)

// tokens splits text into lowercase whitespace-delimited tokens. Punctuation
// is kept attached to its token so that measurements stay cheap and
// reproducible across runs.
func tokens(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// tokenSet returns the distinct tokens of text.
func tokenSet(text string) map[string]struct{} {
	ts := tokens(text)
	set := make(map[string]struct{}, len(ts))
	for _, t := range ts {
		set[t] = struct{}{}
	}
	return set
}

// Boundary measures information flux across the prompt/response boundary:
// the share of distinct response tokens that do not occur in the prompt.
// A response with no tokens yields the null boundary.
func Boundary(prompt, response string) types.BoundaryMeasure {
	promptSet := tokenSet(prompt)
	responseSet := tokenSet(response)

	total := len(responseSet)
	if total == 0 {
		return types.BoundaryMeasure{Type: types.BoundaryNull}
	}

	added := 0
	for tok := range responseSet {
		if _, ok := promptSet[tok]; !ok {
			added++
		}
	}

	flux := float64(added) / float64(total)
	var kind types.BoundaryType
	switch {
	case flux < 0.3:
		kind = types.BoundaryContinuous
	case flux < 0.7:
		kind = types.BoundaryTransitional
	default:
		kind = types.BoundaryTransformational
	}

	return types.BoundaryMeasure{
		Score:       Clamp(flux),
		TokensAdded: added,
		TokensTotal: total,
		Type:        kind,
	}
}

// Resonance measures rhythm in the response's sentence structure. Sentences
// of consistent length read as synchronised ("harmonic") information flow;
// strength is 1/(1 + σ/μ) of the per-sentence word counts.
//
// Responses with fewer than two sentences carry no rhythm to measure and
// yield the zero-strength "none" measure.
func Resonance(response string) types.ResonanceMeasure {
	sentences := strings.Split(response, ".")
	if len(sentences) < 2 {
		return types.ResonanceMeasure{Type: types.ResonanceNone}
	}

	var lengths []float64
	for _, s := range sentences {
		if strings.TrimSpace(s) == "" {
			continue
		}
		lengths = append(lengths, float64(len(strings.Fields(s))))
	}
	if len(lengths) == 0 {
		return types.ResonanceMeasure{Type: types.ResonanceNone}
	}

	mean := 0.0
	for _, l := range lengths {
		mean += l
	}
	mean /= float64(len(lengths))

	variance := 0.0
	for _, l := range lengths {
		d := l - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(lengths)))

	strength := 0.0
	if mean > 0 {
		strength = 1 / (1 + stddev/mean)
	}

	var kind types.ResonanceType
	switch {
	case strength > 0.8:
		kind = types.ResonanceHarmonic
	case strength > 0.5:
		kind = types.ResonancePartial
	default:
		kind = types.ResonanceChaotic
	}

	return types.ResonanceMeasure{
		Strength:  Clamp(strength),
		Frequency: mean,
		Variance:  stddev,
		Type:      kind,
	}
}
