// Package eval implements ranked-retrieval metrics. Every function is pure and
// total: k <= 0, empty relevant sets and ranked lists shorter than k yield
// well-defined values (usually 0) rather than errors.
package eval

import (
	"math"
	"sort"
)

// Set is a set of relevant item identifiers.
type Set = map[string]struct{}

// hitsAtK counts distinct relevant items among the first k ranked ids.
func hitsAtK(ranked []string, relevant Set, k int) int {
	if k > len(ranked) {
		k = len(ranked)
	}
	seen := make(map[string]struct{}, k)
	hits := 0
	for _, id := range ranked[:k] {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := relevant[id]; ok {
			hits++
		}
	}
	return hits
}

// PrecisionAtK is |relevant ∩ top-k| / k.
func PrecisionAtK(ranked []string, relevant Set, k int) float64 {
	if k <= 0 || len(relevant) == 0 {
		return 0
	}
	return float64(hitsAtK(ranked, relevant, k)) / float64(k)
}

// RecallAtK is |relevant ∩ top-k| / |relevant|.
func RecallAtK(ranked []string, relevant Set, k int) float64 {
	if k <= 0 || len(relevant) == 0 {
		return 0
	}
	return float64(hitsAtK(ranked, relevant, k)) / float64(len(relevant))
}

// F1AtK is the harmonic mean of precision@k and recall@k.
func F1AtK(ranked []string, relevant Set, k int) float64 {
	return f1(PrecisionAtK(ranked, relevant, k), RecallAtK(ranked, relevant, k))
}

func f1(p, r float64) float64 {
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// discount is the DCG position discount for a 0-based rank.
func discount(rank int) float64 {
	return 1 / math.Log2(float64(rank)+2)
}

// DCGAtK sums grade/log2(rank+2) over the first k ranked ids. Repeated ids
// only count at their first position.
func DCGAtK(ranked []string, grades map[string]float64, k int) float64 {
	if k > len(ranked) {
		k = len(ranked)
	}
	seen := make(map[string]struct{}, k)
	var dcg float64
	for i := 0; i < k; i++ {
		id := ranked[i]
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if g := grades[id]; g > 0 {
			dcg += g * discount(i)
		}
	}
	return dcg
}

// IdealDCGAtK is the DCG of the best possible ordering of grades.
func IdealDCGAtK(grades map[string]float64, k int) float64 {
	values := make([]float64, 0, len(grades))
	for _, g := range grades {
		if g > 0 {
			values = append(values, g)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))
	if k > len(values) {
		k = len(values)
	}
	var idcg float64
	for i := 0; i < k; i++ {
		idcg += values[i] * discount(i)
	}
	return idcg
}

// NDCGAtK is DCG@k / IDCG@k over graded relevance. It is 0 when IDCG is 0.
func NDCGAtK(ranked []string, grades map[string]float64, k int) float64 {
	if k <= 0 {
		return 0
	}
	idcg := IdealDCGAtK(grades, k)
	if idcg == 0 {
		return 0
	}
	ndcg := DCGAtK(ranked, grades, k) / idcg
	if ndcg > 1 {
		return 1
	}
	return ndcg
}

// AveragePrecision sums precision at every rank holding a relevant item and
// divides by |relevant|. Relevant items never retrieved contribute 0.
func AveragePrecision(ranked []string, relevant Set) float64 {
	if len(relevant) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(ranked))
	hits := 0
	var sum float64
	for i, id := range ranked {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := relevant[id]; ok {
			hits++
			sum += float64(hits) / float64(i+1)
		}
	}
	return sum / float64(len(relevant))
}

// ReciprocalRank is 1/(1+index) of the first relevant item, 0 if none.
func ReciprocalRank(ranked []string, relevant Set) float64 {
	for i, id := range ranked {
		if _, ok := relevant[id]; ok {
			return 1 / float64(i+1)
		}
	}
	return 0
}
