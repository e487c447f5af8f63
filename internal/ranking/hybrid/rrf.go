package hybrid

import "github.com/kailas-cloud/relbench/internal/domain/search/result"

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// fuseRRF merges rankings via Reciprocal Rank Fusion.
// score(d) = sum of 1/(k + rank_i(d) + 1) for each ranking where d appears.
// Equal scores keep first-appearance order across the lists. Matched terms are
// the union in first-seen order. topK <= 0 keeps everything.
func fuseRRF(rankings [][]result.Result, topK int) []result.Result {
	type scored struct {
		id    string
		score float64
		terms []string
		seen  map[string]struct{}
	}

	merged := make(map[string]*scored)
	order := make([]*scored, 0)

	for _, ranking := range rankings {
		for rank, r := range ranking {
			s := 1.0 / float64(rrfK+rank+1)
			entry, ok := merged[r.ID()]
			if !ok {
				entry = &scored{id: r.ID(), seen: make(map[string]struct{})}
				merged[r.ID()] = entry
				order = append(order, entry)
			}
			entry.score += s
			for _, term := range r.MatchedTerms() {
				if _, dup := entry.seen[term]; dup {
					continue
				}
				entry.seen[term] = struct{}{}
				entry.terms = append(entry.terms, term)
			}
		}
	}

	results := make([]result.Result, 0, len(order))
	for _, s := range order {
		results = append(results, result.New(s.id, s.score, s.terms))
	}

	result.SortStable(results)
	return result.Truncate(results, topK)
}
