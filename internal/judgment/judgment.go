// Package judgment synthesizes surrogate relevance ground truth from term
// overlap between queries and documents.
//
// The heuristic rewards the same term overlap the keyword scorer measures, so
// comparisons built on it favor that scorer.
package judgment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/relbench/internal/domain"
	domdoc "github.com/kailas-cloud/relbench/internal/domain/document"
	"github.com/kailas-cloud/relbench/internal/textproc"
)

const (
	// DefaultThreshold is the minimum score counted as relevant.
	DefaultThreshold = 0.5
	// phraseBonus is added when the whole query occurs verbatim in the document.
	phraseBonus = 0.3
)

// Synthesizer scores (query, document) pairs.
type Synthesizer struct {
	tokenizer textproc.Tokenizer
}

// NewSynthesizer creates a synthesizer using tokenizer for both sides.
func NewSynthesizer(tokenizer textproc.Tokenizer) *Synthesizer {
	return &Synthesizer{tokenizer: tokenizer}
}

// Relevance returns |q ∩ d| / |q| over unique terms, plus a phrase bonus when
// the lowercased query occurs in the lowercased document text, clamped to 1.
// A query without terms scores 0.
func (s *Synthesizer) Relevance(query string, doc *domdoc.Document) float64 {
	queryTerms := textproc.Unique(s.tokenizer.Tokenize(query))
	if len(queryTerms) == 0 {
		return 0
	}
	text := doc.Text()
	docTerms := make(map[string]struct{})
	for _, term := range s.tokenizer.Tokenize(text) {
		docTerms[term] = struct{}{}
	}
	return s.relevance(query, queryTerms, text, docTerms)
}

func (s *Synthesizer) relevance(
	query string, queryTerms []string, text string, docTerms map[string]struct{},
) float64 {
	overlap := 0
	for _, term := range queryTerms {
		if _, ok := docTerms[term]; ok {
			overlap++
		}
	}
	score := float64(overlap) / float64(len(queryTerms))

	phrase := strings.ToLower(strings.TrimSpace(query))
	if phrase != "" && strings.Contains(strings.ToLower(text), phrase) {
		score += phraseBonus
	}
	if score > 1 {
		score = 1
	}
	return score
}

// Build scores every query against every document, keeping nonzero scores.
// Document tokens are computed once per document.
func (s *Synthesizer) Build(queries []string, corpus domdoc.Corpus) *Judgment {
	texts := make([]string, len(corpus))
	terms := make([]map[string]struct{}, len(corpus))
	for i := range corpus {
		texts[i] = corpus[i].Text()
		set := make(map[string]struct{})
		for _, term := range s.tokenizer.Tokenize(texts[i]) {
			set[term] = struct{}{}
		}
		terms[i] = set
	}

	j := &Judgment{grades: make(map[string]map[string]float64, len(queries))}
	for _, q := range queries {
		if _, done := j.grades[q]; done {
			continue
		}
		grades := make(map[string]float64)
		queryTerms := textproc.Unique(s.tokenizer.Tokenize(q))
		if len(queryTerms) > 0 {
			for i := range corpus {
				if score := s.relevance(q, queryTerms, texts[i], terms[i]); score > 0 {
					grades[corpus[i].ID()] = score
				}
			}
		}
		j.grades[q] = grades
	}
	return j
}

// Judgment maps query → itemID → score in (0, 1]. It is read-only once built.
type Judgment struct {
	grades map[string]map[string]float64
}

// New wraps externally supplied grades. Scores must be in [0, 1]; zero
// scores are dropped.
func New(grades map[string]map[string]float64) (*Judgment, error) {
	j := &Judgment{grades: make(map[string]map[string]float64, len(grades))}
	for q, items := range grades {
		copied := make(map[string]float64, len(items))
		for id, score := range items {
			if score < 0 || score > 1 {
				return nil, fmt.Errorf("grade %g for %q/%q outside [0,1]: %w", score, q, id, domain.ErrInvalidInput)
			}
			if score > 0 {
				copied[id] = score
			}
		}
		j.grades[q] = copied
	}
	return j, nil
}

// Grades returns a copy of the graded items for query. Unknown queries yield
// an empty map.
func (j *Judgment) Grades(query string) map[string]float64 {
	out := make(map[string]float64, len(j.grades[query]))
	for id, score := range j.grades[query] {
		out[id] = score
	}
	return out
}

// RelevantItems returns the itemIDs whose score is at least threshold.
func (j *Judgment) RelevantItems(query string, threshold float64) map[string]struct{} {
	out := make(map[string]struct{})
	for id, score := range j.grades[query] {
		if score >= threshold {
			out[id] = struct{}{}
		}
	}
	return out
}

// Queries returns the judged queries in sorted order.
func (j *Judgment) Queries() []string {
	out := make([]string, 0, len(j.grades))
	for q := range j.grades {
		out = append(out, q)
	}
	sort.Strings(out)
	return out
}
