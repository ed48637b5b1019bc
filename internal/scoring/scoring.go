// Package scoring computes cheap deterministic match scores for a candidate
// profile against comma-separated criteria terms. Matching is case-insensitive
// substring matching, not word-boundary tokenization, so a term may match
// inside a longer word. That is a deliberate simplification and a known
// source of false positives.
package scoring

import "strings"

// Score is the result of evaluating a profile against criteria. Value is the
// linear sum of contributing term weights; Reasons holds one entry per
// matched term, in evaluation order.
type Score struct {
	Value   float64
	Reasons []string
}

// Scorer evaluates a profile against free-text criteria.
type Scorer interface {
	Score(profile, criteria string) Score
}

// KeywordScorer counts matching criteria terms with weight 1 each.
type KeywordScorer struct{}

func NewKeywordScorer() *KeywordScorer {
	return &KeywordScorer{}
}

func (s *KeywordScorer) Score(profile, criteria string) Score {
	score := Score{}
	haystack := strings.ToLower(profile)

	for _, term := range splitTerms(criteria) {
		if strings.Contains(haystack, strings.ToLower(term)) {
			score.Value++
			score.Reasons = append(score.Reasons, "keyword:"+term)
		}
	}

	return score
}

// WeightedScorer looks up a configured integer weight per term. Unconfigured
// terms weigh 0. Weights may be negative; a strongly negative red-flag term
// can drive the total deeply negative regardless of other matches since
// weights sum linearly without clamping.
type WeightedScorer struct {
	weights map[string]int
}

func NewWeightedScorer(weights map[string]int) *WeightedScorer {
	normalized := make(map[string]int, len(weights))
	for term, weight := range weights {
		normalized[strings.ToLower(strings.TrimSpace(term))] = weight
	}
	return &WeightedScorer{weights: normalized}
}

func (s *WeightedScorer) Score(profile, criteria string) Score {
	score := Score{}
	haystack := strings.ToLower(profile)

	for _, term := range splitTerms(criteria) {
		lower := strings.ToLower(term)
		if !strings.Contains(haystack, lower) {
			continue
		}
		score.Value += float64(s.weights[lower])
		score.Reasons = append(score.Reasons, "keyword:"+term)
	}

	return score
}

func splitTerms(criteria string) []string {
	terms := make([]string, 0)
	for _, raw := range strings.Split(criteria, ",") {
		term := strings.TrimSpace(raw)
		if term == "" {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}
