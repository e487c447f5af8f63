// Package corpus imports and serves the named corpora comparisons run on.
package corpus

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/kailas-cloud/relbench/internal/domain"
	dombatch "github.com/kailas-cloud/relbench/internal/domain/batch"
	domdoc "github.com/kailas-cloud/relbench/internal/domain/document"
)

// MaxImportSize is the default maximum number of records per import.
const MaxImportSize = 10000

const maxNameLength = 64

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Service validates records and stores corpora with per-record error reporting.
type Service struct {
	repo          Repository
	logger        *zap.Logger
	maxImportSize int
}

// New creates a corpus service.
func New(repo Repository) *Service {
	return &Service{repo: repo, logger: zap.NewNop(), maxImportSize: MaxImportSize}
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithMaxImportSize configures the maximum import size.
func (s *Service) WithMaxImportSize(size int) *Service {
	if size > 0 {
		s.maxImportSize = size
	}
	return s
}

// ValidateName checks a corpus name.
func ValidateName(name string) error {
	if name == "" || len(name) > maxNameLength || !nameRegex.MatchString(name) {
		return fmt.Errorf(
			"corpus name %q must be 1-%d chars of [a-zA-Z0-9_-]: %w", name, maxNameLength, domain.ErrInvalidInput,
		)
	}
	return nil
}

// Parse coerces loose records into a corpus. Records without a usable ID and
// repeated IDs are rejected individually; the rest keep their order.
func Parse(records []map[string]string) (domdoc.Corpus, []dombatch.Result) {
	results := make([]dombatch.Result, len(records))
	corpus := make(domdoc.Corpus, 0, len(records))
	seen := make(map[string]int, len(records))

	for i, rec := range records {
		doc, err := domdoc.FromFields(rec)
		if err != nil {
			results[i] = dombatch.NewError(i, rec["id"], err)
			continue
		}
		if first, dup := seen[doc.ID()]; dup {
			results[i] = dombatch.NewError(i, doc.ID(), fmt.Errorf(
				"duplicate item ID %q (first at record %d): %w", doc.ID(), first, domain.ErrInvalidInput,
			))
			continue
		}
		seen[doc.ID()] = i
		corpus = append(corpus, doc)
		results[i] = dombatch.NewOK(i, doc.ID())
	}
	return corpus, results
}

// Import replaces the corpus called name with the valid records. It fails as
// a whole when the name is invalid, the import is too large, no record is
// valid, or storage fails.
func (s *Service) Import(
	ctx context.Context, name string, records []map[string]string,
) ([]dombatch.Result, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no records: %w", domain.ErrInvalidInput)
	}
	if len(records) > s.maxImportSize {
		return nil, fmt.Errorf("import size %d exceeds %d: %w", len(records), s.maxImportSize, domain.ErrInvalidInput)
	}

	corpus, results := Parse(records)
	if len(corpus) == 0 {
		return results, fmt.Errorf("no valid records: %w", domain.ErrInvalidInput)
	}

	if err := s.repo.Save(ctx, name, corpus); err != nil {
		return nil, fmt.Errorf("save corpus %s: %w", name, err)
	}

	s.logger.Info("Corpus imported",
		zap.String("corpus", name),
		zap.Int("documents", len(corpus)),
		zap.Int("rejected", dombatch.CountFailed(results)),
	)
	return results, nil
}

// Get returns a stored corpus.
func (s *Service) Get(ctx context.Context, name string) (domdoc.Corpus, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	c, err := s.repo.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get corpus %s: %w", name, err)
	}
	return c, nil
}

// List returns stored corpus names.
func (s *Service) List(ctx context.Context) ([]string, error) {
	names, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list corpora: %w", err)
	}
	return names, nil
}

// Delete removes a stored corpus.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete corpus %s: %w", name, err)
	}
	return nil
}
