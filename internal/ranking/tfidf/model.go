// Package tfidf implements a cosine-similarity ranker over log-damped TF-IDF
// weight vectors.
package tfidf

import (
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/relbench/internal/domain"
	domdoc "github.com/kailas-cloud/relbench/internal/domain/document"
	"github.com/kailas-cloud/relbench/internal/textproc"
)

// Options configures vocabulary filtering.
type Options struct {
	// MinDF is the minimum number of documents a term must occur in.
	MinDF int
	// MaxDF is the maximum fraction of documents a term may occur in, in (0, 1].
	MaxDF float64
	// Tokenizer normalizes document and query text.
	Tokenizer textproc.Tokenizer
}

// DefaultOptions keeps every term that occurs at least once.
func DefaultOptions() Options {
	return Options{MinDF: 1, MaxDF: 1.0, Tokenizer: textproc.Default()}
}

// Validate checks the min_df/max_df relationship independent of corpus size.
func (o Options) Validate() error {
	if o.MinDF < 1 {
		return fmt.Errorf("min_df must be >= 1, got %d: %w", o.MinDF, domain.ErrConfiguration)
	}
	if o.MaxDF <= 0 || o.MaxDF > 1 {
		return fmt.Errorf("max_df must be in (0, 1], got %g: %w", o.MaxDF, domain.ErrConfiguration)
	}
	return nil
}

// Model is a fitted vocabulary and IDF table. It is never mutated after Fit
// returns and is safe to share across goroutines.
type Model struct {
	vocabulary map[string]int
	idf        map[string]float64
	tokenizer  textproc.Tokenizer
	numDocs    int
	docIDs     []string
	docTexts   []string
	docVectors []vector
}

// vector is a sparse weight vector with its terms in sorted order and its
// squared magnitude.
type vector struct {
	weights map[string]float64
	terms   []string
	norm2   float64
}

func newVector(weights map[string]float64) vector {
	terms := sortedTerms(weights)
	var norm2 float64
	for _, term := range terms {
		w := weights[term]
		norm2 += w * w
	}
	return vector{weights: weights, terms: terms, norm2: norm2}
}

// Fit builds a Model over the corpus. Each document contributes its weighted
// text (title counted twice). Terms outside [MinDF, MaxDF*N] are dropped.
func Fit(corpus domdoc.Corpus, opts Options) (*Model, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	n := len(corpus)
	if n == 0 {
		return nil, fmt.Errorf("fit on empty corpus: %w", domain.ErrConfiguration)
	}
	maxCount := opts.MaxDF * float64(n)
	if float64(opts.MinDF) > maxCount {
		return nil, fmt.Errorf(
			"min_df %d exceeds max_df*N = %g: %w", opts.MinDF, maxCount, domain.ErrConfiguration,
		)
	}

	docTokens := make([][]string, n)
	docTexts := make([]string, n)
	df := make(map[string]int)
	for i := range corpus {
		docTexts[i] = corpus[i].WeightedText()
		tokens := opts.Tokenizer.Tokenize(docTexts[i])
		docTokens[i] = tokens
		for _, term := range textproc.Unique(tokens) {
			df[term]++
		}
	}

	terms := make([]string, 0, len(df))
	for term, count := range df {
		if count >= opts.MinDF && float64(count) <= maxCount {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)

	m := &Model{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make(map[string]float64, len(terms)),
		tokenizer:  opts.Tokenizer,
		numDocs:    n,
	}
	for i, term := range terms {
		m.vocabulary[term] = i
		m.idf[term] = math.Log(float64(n) / float64(df[term]))
	}

	m.docIDs = corpus.IDs()
	m.docTexts = docTexts
	m.docVectors = make([]vector, n)
	for i, tokens := range docTokens {
		m.docVectors[i] = newVector(m.ScoreTerms(tokens))
	}
	return m, nil
}

// Vocabulary returns a copy of the term→index map.
func (m *Model) Vocabulary() map[string]int {
	out := make(map[string]int, len(m.vocabulary))
	for k, v := range m.vocabulary {
		out[k] = v
	}
	return out
}

// IDFTable returns a copy of the term→idf map.
func (m *Model) IDFTable() map[string]float64 {
	out := make(map[string]float64, len(m.idf))
	for k, v := range m.idf {
		out[k] = v
	}
	return out
}

// IDF returns the inverse document frequency of a term and whether it is in
// the vocabulary.
func (m *Model) IDF(term string) (float64, bool) {
	v, ok := m.idf[term]
	return v, ok
}

// Size returns the vocabulary size.
func (m *Model) Size() int { return len(m.vocabulary) }

// Documents returns the number of documents the model was fitted on.
func (m *Model) Documents() int { return m.numDocs }

// Tokenizer returns the tokenizer the model was fitted with.
func (m *Model) Tokenizer() textproc.Tokenizer { return m.tokenizer }

// ScoreTerms builds a sparse weight vector: (1 + ln(count)) * idf per
// in-vocabulary term. Out-of-vocabulary tokens are dropped.
func (m *Model) ScoreTerms(tokens []string) map[string]float64 {
	vec := make(map[string]float64)
	for term, count := range textproc.Counts(tokens) {
		idf, ok := m.idf[term]
		if !ok {
			continue
		}
		vec[term] = (1 + math.Log(float64(count))) * idf
	}
	return vec
}

// Vectorize tokenizes text and returns its weight vector.
func (m *Model) Vectorize(text string) map[string]float64 {
	return m.ScoreTerms(m.tokenizer.Tokenize(text))
}

// documentVector returns the vector cached at fit time when the i-th document
// has the id and text the model was fitted on, and a freshly computed one
// otherwise.
func (m *Model) documentVector(corpus domdoc.Corpus, i int) vector {
	text := corpus[i].WeightedText()
	if i < len(m.docIDs) && m.docIDs[i] == corpus[i].ID() && m.docTexts[i] == text {
		return m.docVectors[i]
	}
	return newVector(m.Vectorize(text))
}

// Similarity is the cosine of two sparse vectors over the union of their
// nonzero dimensions. It is 0 when either vector has zero magnitude.
func Similarity(a, b map[string]float64) float64 {
	return cosine(newVector(a), newVector(b))
}

// cosine sums the dot product over the shorter vector's sorted terms. Only
// shared terms contribute, so the summation order is the sorted intersection
// whichever side is iterated.
func cosine(a, b vector) float64 {
	if a.norm2 == 0 || b.norm2 == 0 {
		return 0
	}
	short, long := a, b
	if len(b.terms) < len(a.terms) {
		short, long = b, a
	}
	var dot float64
	for _, term := range short.terms {
		if w, ok := long.weights[term]; ok {
			dot += short.weights[term] * w
		}
	}
	sim := dot / math.Sqrt(a.norm2*b.norm2)
	switch {
	case sim < 0:
		return 0
	case sim > 1:
		return 1
	}
	return sim
}

func sortedTerms(vec map[string]float64) []string {
	terms := make([]string, 0, len(vec))
	for term := range vec {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}
