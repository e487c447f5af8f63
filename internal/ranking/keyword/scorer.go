// Package keyword implements a query-time keyword-overlap ranker with exact
// and partial (substring) matching.
package keyword

import (
	"context"
	"fmt"
	"math"
	"strings"

	lru "github.com/hashicorp/golang-lru"

	"github.com/kailas-cloud/relbench/internal/domain"
	domdoc "github.com/kailas-cloud/relbench/internal/domain/document"
	"github.com/kailas-cloud/relbench/internal/domain/search/mode"
	"github.com/kailas-cloud/relbench/internal/domain/search/result"
	"github.com/kailas-cloud/relbench/internal/textproc"
)

// Default match weights.
const (
	DefaultExactMatchWeight   = 1.0
	DefaultPartialMatchWeight = 0.5
)

// Options configures a Scorer.
type Options struct {
	ExactMatchWeight   float64
	PartialMatchWeight float64
	Tokenizer          textproc.Tokenizer
	// TokenCacheSize bounds the per-document token cache. 0 disables it.
	TokenCacheSize int
}

// DefaultOptions returns the default weights without a token cache.
func DefaultOptions() Options {
	return Options{
		ExactMatchWeight:   DefaultExactMatchWeight,
		PartialMatchWeight: DefaultPartialMatchWeight,
		Tokenizer:          textproc.Default(),
	}
}

// Match is the outcome of scoring one document.
type Match struct {
	Score          float64
	ExactMatches   int
	PartialMatches int
	MatchedTerms   []string
}

// Scorer ranks documents by weighted keyword overlap. It has no fit phase and
// is safe for concurrent use.
type Scorer struct {
	opts  Options
	cache *lru.Cache
}

type cachedTokens struct {
	text   string
	tokens []string
}

// New validates options and creates a Scorer.
func New(opts Options) (*Scorer, error) {
	if opts.ExactMatchWeight < 0 || opts.PartialMatchWeight < 0 {
		return nil, fmt.Errorf(
			"match weights must be non-negative (exact=%g, partial=%g): %w",
			opts.ExactMatchWeight, opts.PartialMatchWeight, domain.ErrConfiguration,
		)
	}
	s := &Scorer{opts: opts}
	if opts.TokenCacheSize > 0 {
		c, err := lru.New(opts.TokenCacheSize)
		if err != nil {
			return nil, fmt.Errorf("token cache: %w", err)
		}
		s.cache = c
	}
	return s, nil
}

// Name returns the algorithm name.
func (s *Scorer) Name() string { return string(mode.Keyword) }

// Score computes the overlap score of a document token list against query tokens.
//
// For each distinct query token q with query frequency f:
//
//	exact(q)*f*exactWeight + partial(q)*partialWeight
//
// where partial counts document tokens that differ from q but contain it or
// are contained in it. The sum is divided by (Σf) * ln(len(docTokens)+1).
func (s *Scorer) Score(queryTokens, docTokens []string) Match {
	if len(queryTokens) == 0 || len(docTokens) == 0 {
		return Match{}
	}

	queryFreq := textproc.Counts(queryTokens)
	docFreq := textproc.Counts(docTokens)

	var m Match
	var total, queryWeight float64
	for _, q := range textproc.Unique(queryTokens) {
		f := queryFreq[q]
		queryWeight += float64(f)

		exact := docFreq[q]
		partial := 0
		for _, t := range docTokens {
			if t != q && (strings.Contains(t, q) || strings.Contains(q, t)) {
				partial++
			}
		}
		if exact == 0 && partial == 0 {
			continue
		}
		m.ExactMatches += exact
		m.PartialMatches += partial
		m.MatchedTerms = append(m.MatchedTerms, q)
		total += float64(exact)*float64(f)*s.opts.ExactMatchWeight +
			float64(partial)*s.opts.PartialMatchWeight
	}

	norm := queryWeight * math.Log(float64(len(docTokens))+1)
	if total == 0 || norm == 0 {
		m.Score = 0
		return m
	}
	m.Score = total / norm
	return m
}

// Search ranks corpus against query. Only documents with score > 0 are
// returned, best first, ties in corpus order, at most limit results.
func (s *Scorer) Search(
	ctx context.Context, query string, corpus domdoc.Corpus, limit int,
) ([]result.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	queryTokens := s.opts.Tokenizer.Tokenize(query)
	results := make([]result.Result, 0)
	if len(queryTokens) == 0 {
		return results, nil
	}

	for i := range corpus {
		m := s.Score(queryTokens, s.documentTokens(&corpus[i]))
		if m.Score <= 0 {
			continue
		}
		results = append(results, result.New(corpus[i].ID(), m.Score, m.MatchedTerms))
	}

	result.SortStable(results)
	return result.Truncate(results, limit), nil
}

func (s *Scorer) documentTokens(doc *domdoc.Document) []string {
	text := doc.Text()
	if s.cache == nil {
		return s.opts.Tokenizer.Tokenize(text)
	}
	if v, ok := s.cache.Get(doc.ID()); ok {
		if c, ok := v.(cachedTokens); ok && c.text == text {
			return c.tokens
		}
	}
	tokens := s.opts.Tokenizer.Tokenize(text)
	s.cache.Add(doc.ID(), cachedTokens{text: text, tokens: tokens})
	return tokens
}
