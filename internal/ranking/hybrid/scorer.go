// Package hybrid fuses the rankings of several inner algorithms with
// Reciprocal Rank Fusion.
package hybrid

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/relbench/internal/domain"
	domdoc "github.com/kailas-cloud/relbench/internal/domain/document"
	"github.com/kailas-cloud/relbench/internal/domain/search/mode"
	"github.com/kailas-cloud/relbench/internal/domain/search/result"
	"github.com/kailas-cloud/relbench/internal/ranking"
)

// Scorer runs every inner ranker over the full corpus and fuses the rankings.
type Scorer struct {
	rankers []ranking.Ranker
}

// New creates a hybrid scorer. At least two rankers are required.
func New(rankers ...ranking.Ranker) (*Scorer, error) {
	if len(rankers) < 2 {
		return nil, fmt.Errorf("hybrid needs at least 2 rankers, got %d: %w", len(rankers), domain.ErrConfiguration)
	}
	for _, r := range rankers {
		if r == nil {
			return nil, fmt.Errorf("hybrid ranker is nil: %w", domain.ErrConfiguration)
		}
	}
	return &Scorer{rankers: rankers}, nil
}

// Name returns the algorithm name.
func (s *Scorer) Name() string { return string(mode.HybridRRF) }

// Bind returns a hybrid scorer whose inner rankers are bound to corpus.
func (s *Scorer) Bind(corpus domdoc.Corpus) (ranking.Ranker, error) {
	bound := make([]ranking.Ranker, len(s.rankers))
	for i, r := range s.rankers {
		b, ok := r.(ranking.Binder)
		if !ok {
			bound[i] = r
			continue
		}
		br, err := b.Bind(corpus)
		if err != nil {
			return nil, fmt.Errorf("bind %s: %w", r.Name(), err)
		}
		bound[i] = br
	}
	return &Scorer{rankers: bound}, nil
}

// Search collects the full ranking of each inner ranker and returns the fused
// top limit results.
func (s *Scorer) Search(
	ctx context.Context, query string, corpus domdoc.Corpus, limit int,
) ([]result.Result, error) {
	rankings := make([][]result.Result, 0, len(s.rankers))
	for _, r := range s.rankers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := r.Search(ctx, query, corpus, 0)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.Name(), err)
		}
		rankings = append(rankings, res)
	}
	return fuseRRF(rankings, limit), nil
}
