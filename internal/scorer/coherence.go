package scorer

import "github.com/antzucaro/matchr"

// neutralCoherence is returned when the prompt carries no tokens: with no
// prompt concepts to track there is neither stability nor drift to measure.
const neutralCoherence = 0.5

// Coherence measures semantic field stability between prompt and response:
// the share of distinct prompt tokens that are carried into the response.
//
// A prompt token counts as carried when it occurs verbatim in the response or
// when some response token is Jaro-Winkler similar above the configured fuzzy
// threshold. The fuzzy pass absorbs inflections and minor spelling drift
// ("behavior" / "behaviors") that an exact set intersection would miss.
func (s *Scorer) Coherence(prompt, response string) float64 {
	promptSet := tokenSet(prompt)
	if len(promptSet) == 0 {
		return neutralCoherence
	}
	responseSet := tokenSet(response)

	shared := 0
	for pt := range promptSet {
		if _, ok := responseSet[pt]; ok {
			shared++
			continue
		}
		if s.fuzzyCarried(pt, responseSet) {
			shared++
		}
	}

	return Clamp(float64(shared) / float64(len(promptSet)))
}

// fuzzyCarried reports whether any response token is similar enough to tok to
// count as the same concept.
func (s *Scorer) fuzzyCarried(tok string, responseSet map[string]struct{}) bool {
	for rt := range responseSet {
		if matchr.JaroWinkler(tok, rt, false) >= s.fuzzyThreshold {
			return true
		}
	}
	return false
}
