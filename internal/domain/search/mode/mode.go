package mode

// Mode names a ranking algorithm.
type Mode string

// Algorithm names.
const (
	TFIDF   Mode = "tfidf"
	Keyword Mode = "keyword"
	// HybridRRF fuses TF-IDF and keyword rankings via Reciprocal Rank Fusion.
	HybridRRF Mode = "hybrid_rrf"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == TFIDF || m == Keyword || m == HybridRRF
}

// All returns every supported mode in registration order.
func All() []Mode {
	return []Mode{TFIDF, Keyword, HybridRRF}
}
