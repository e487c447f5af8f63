package textproc

// stopwords is the fixed English stop-word set removed by every tokenizer.
var stopwords = makeSet(
	"a", "an", "the", "and", "or", "but",
	"to", "in", "of", "on", "for", "with", "as", "at", "by", "from",
	"is", "are", "was", "were", "be", "been", "being",
	"this", "that", "these", "those", "it", "its", "itself",
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves",
	"you", "your", "yours", "yourself", "yourselves",
	"he", "him", "his", "himself", "she", "her", "hers", "herself",
	"they", "them", "their", "theirs", "themselves",
	"do", "does", "did", "doing",
	"have", "has", "had", "having",
	"not", "no", "nor", "only", "very", "too",
	"can", "could", "should", "would", "may", "might", "must", "will",
	"if", "then", "else", "than", "so", "because", "while", "when", "where",
	"about", "above", "below", "under", "over", "into", "out", "up", "down",
	"again", "further", "once", "here", "there",
	"what", "which", "who", "whom", "how", "why", "all", "any", "both", "each",
	"few", "more", "most", "other", "some", "such", "own", "same", "just",
)

func makeSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// IsStopword reports whether the lowercased word is in the stop-word set.
func IsStopword(lower string) bool {
	_, ok := stopwords[lower]
	return ok
}
