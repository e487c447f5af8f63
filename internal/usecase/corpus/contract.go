package corpus

import (
	"context"

	domdoc "github.com/kailas-cloud/relbench/internal/domain/document"
)

// Repository persists named corpora.
type Repository interface {
	Save(ctx context.Context, name string, corpus domdoc.Corpus) error
	Get(ctx context.Context, name string) (domdoc.Corpus, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}
