package reconcile

import "strings"

// NormalizeCategory lowercases and trims a category, defaulting empty ones.
func NormalizeCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	if c == "" {
		return DefaultCategory
	}
	return c
}

// Resolver finds the existing record an observation refers to.
type Resolver struct {
	// Threshold is the minimum score a match must reach.
	Threshold float64

	// Scorer compares names. Defaults to Score.
	Scorer Scorer
}

// NewResolver creates a resolver with the given threshold and the bigram scorer.
func NewResolver(threshold float64) *Resolver {
	return &Resolver{Threshold: threshold, Scorer: Score}
}

// Resolve returns the best-scoring record of the observation's category, or nil when
// no candidate reaches the threshold. Ties keep the first record in snapshot order.
func (r *Resolver) Resolve(obs Observation, snap *Snapshot) (*Record, float64) {
	scorer := r.Scorer
	if scorer == nil {
		scorer = Score
	}
	category := NormalizeCategory(obs.Category)

	var best *Record
	bestScore := -1.0
	for _, rec := range snap.Records() {
		if rec.Category != category {
			continue
		}
		s := scorer(obs.Name, rec.Name)
		if s > bestScore {
			best = rec
			bestScore = s
		}
	}

	if best == nil || bestScore < r.Threshold {
		return nil, 0
	}
	return best, bestScore
}
