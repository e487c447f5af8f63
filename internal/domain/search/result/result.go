package result

import "sort"

// Result is a single ranked hit.
type Result struct {
	id           string
	score        float64
	matchedTerms []string
}

// New creates a ranked result.
func New(id string, score float64, matchedTerms []string) Result {
	return Result{id: id, score: score, matchedTerms: matchedTerms}
}

// ID returns the item identifier.
func (r *Result) ID() string { return r.id }

// Score returns the relevance score.
func (r *Result) Score() float64 { return r.score }

// MatchedTerms returns the query terms that contributed to the score.
func (r *Result) MatchedTerms() []string { return r.matchedTerms }

// SortStable orders results by score descending. Equal scores keep their
// incoming order, which callers build in corpus order.
func SortStable(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
}

// Truncate returns at most limit results. limit <= 0 means no limit.
func Truncate(results []Result, limit int) []Result {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}

// IDs returns the item identifiers in ranked order.
func IDs(results []Result) []string {
	ids := make([]string, len(results))
	for i := range results {
		ids[i] = results[i].id
	}
	return ids
}
