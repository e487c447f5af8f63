// Package ranking defines the contract shared by every ranking algorithm.
package ranking

import (
	"context"

	domdoc "github.com/kailas-cloud/relbench/internal/domain/document"
	"github.com/kailas-cloud/relbench/internal/domain/search/result"
)

// Ranker scores a corpus against a query. Results are best first, ties in
// corpus order, at most limit long (limit <= 0: all).
type Ranker interface {
	Name() string
	Search(ctx context.Context, query string, corpus domdoc.Corpus, limit int) ([]result.Result, error)
}

// Binder is implemented by rankers that fit on the corpus they search.
// Bind returns a ranker ready for corpus and leaves the receiver unchanged,
// so runs over different corpora never share fitted state.
type Binder interface {
	Bind(corpus domdoc.Corpus) (Ranker, error)
}
