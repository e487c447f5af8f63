// Package textproc normalizes free text into token sequences shared by every
// scorer and by the judgment synthesizer.
package textproc

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"
)

// Options configures a Tokenizer.
type Options struct {
	// CaseSensitive disables lowercasing. Stop words still match case-insensitively.
	CaseSensitive bool
	// MinLength drops tokens with fewer runes. Values <= 1 keep every token.
	MinLength int
	// Stem applies the Snowball English stemmer to surviving tokens.
	// Stemmed output is always lowercase.
	Stem bool
}

// Tokenizer is an immutable, concurrency-safe text normalizer.
type Tokenizer struct {
	opts Options
}

// New creates a Tokenizer.
func New(opts Options) Tokenizer {
	return Tokenizer{opts: opts}
}

// Default returns the lowercasing tokenizer without length filter or stemming.
func Default() Tokenizer {
	return Tokenizer{}
}

// Options returns the tokenizer configuration.
func (t Tokenizer) Options() Options { return t.opts }

// Tokenize splits text on non-word runes and filters stop words and short tokens.
// It never fails; empty input yields an empty slice.
func (t Tokenizer) Tokenize(text string) []string {
	tokens := make([]string, 0, len(text)/5+1)
	if text == "" {
		return tokens
	}
	if !t.opts.CaseSensitive {
		text = strings.ToLower(text)
	}

	for _, raw := range strings.FieldsFunc(text, isSeparator) {
		if IsStopword(strings.ToLower(raw)) {
			continue
		}
		if t.opts.MinLength > 1 && utf8.RuneCountInString(raw) < t.opts.MinLength {
			continue
		}
		tok := raw
		if t.opts.Stem {
			tok = english.Stem(raw, false)
			if tok == "" {
				continue
			}
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Counts returns the term frequency of each distinct token.
func Counts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	return counts
}

// Unique returns the distinct tokens in first-occurrence order.
func Unique(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
}
