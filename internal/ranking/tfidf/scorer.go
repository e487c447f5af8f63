package tfidf

import (
	"context"
	"fmt"
	"sync"

	"github.com/kailas-cloud/relbench/internal/domain"
	domdoc "github.com/kailas-cloud/relbench/internal/domain/document"
	"github.com/kailas-cloud/relbench/internal/domain/search/mode"
	"github.com/kailas-cloud/relbench/internal/domain/search/result"
	"github.com/kailas-cloud/relbench/internal/ranking"
	"github.com/kailas-cloud/relbench/internal/textproc"
)

// Scorer ranks documents by cosine similarity to the query. It starts
// Unfitted; Fit (or the first Search) installs an immutable Model.
type Scorer struct {
	opts Options

	mu    sync.RWMutex
	model *Model
}

// NewScorer creates an unfitted scorer.
func NewScorer(opts Options) *Scorer {
	return &Scorer{opts: opts}
}

// WithModel creates a scorer that is already fitted with m.
func WithModel(m *Model) *Scorer {
	return &Scorer{
		opts:  Options{MinDF: 1, MaxDF: 1, Tokenizer: m.Tokenizer()},
		model: m,
	}
}

// Name returns the algorithm name.
func (s *Scorer) Name() string { return string(mode.TFIDF) }

// Fit replaces the installed model with a fresh one fitted on corpus.
func (s *Scorer) Fit(corpus domdoc.Corpus) error {
	m, err := Fit(corpus, s.opts)
	if err != nil {
		return fmt.Errorf("tfidf fit: %w", err)
	}
	s.mu.Lock()
	s.model = m
	s.mu.Unlock()
	return nil
}

// Bind returns the scorer itself when it is already fitted, and otherwise a
// new scorer fitted on corpus. The receiver is never modified.
func (s *Scorer) Bind(corpus domdoc.Corpus) (ranking.Ranker, error) {
	if s.Fitted() {
		return s, nil
	}
	m, err := Fit(corpus, s.opts)
	if err != nil {
		return nil, fmt.Errorf("tfidf fit: %w", err)
	}
	return &Scorer{opts: s.opts, model: m}, nil
}

// Fitted reports whether a model is installed.
func (s *Scorer) Fitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model != nil
}

// Model returns the installed model, or ErrScoring when unfitted.
func (s *Scorer) Model() (*Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.model == nil {
		return nil, fmt.Errorf("tfidf scorer is not fitted: %w", domain.ErrScoring)
	}
	return s.model, nil
}

// Search ranks corpus against query. An unfitted scorer first fits on corpus
// itself. Only documents with similarity > 0 are returned, best first, ties in
// corpus order, at most limit results (limit <= 0: all).
func (s *Scorer) Search(
	ctx context.Context, query string, corpus domdoc.Corpus, limit int,
) ([]result.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.Fitted() {
		if err := s.Fit(corpus); err != nil {
			return nil, err
		}
	}
	m, err := s.Model()
	if err != nil {
		return nil, err
	}
	return Rank(m, query, corpus, limit), nil
}

// Rank scores corpus against query with an explicit model.
func Rank(m *Model, query string, corpus domdoc.Corpus, limit int) []result.Result {
	tokens := m.tokenizer.Tokenize(query)
	qvec := newVector(m.ScoreTerms(tokens))
	if len(qvec.terms) == 0 {
		return []result.Result{}
	}

	results := make([]result.Result, 0)
	for i := range corpus {
		dvec := m.documentVector(corpus, i)
		sim := cosine(qvec, dvec)
		if sim <= 0 {
			continue
		}
		results = append(results, result.New(corpus[i].ID(), sim, matchedTerms(tokens, qvec.weights, dvec.weights)))
	}

	result.SortStable(results)
	return result.Truncate(results, limit)
}

func matchedTerms(queryTokens []string, qvec, dvec map[string]float64) []string {
	var matched []string
	for _, term := range textproc.Unique(queryTokens) {
		if qvec[term] == 0 {
			continue
		}
		if dvec[term] > 0 {
			matched = append(matched, term)
		}
	}
	return matched
}
