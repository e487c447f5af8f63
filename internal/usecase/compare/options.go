package compare

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/relbench/internal/domain"
	"github.com/kailas-cloud/relbench/internal/judgment"
)

// Defaults for interactive use.
const (
	DefaultWorkers             = 4
	DefaultPerQueryResultLimit = 5
	DefaultMetricK             = 10
)

// Options configures a comparison run.
type Options struct {
	// Workers is the worker pool size.
	Workers int
	// PerQueryResultLimit is how many top results each unit keeps for inspection.
	PerQueryResultLimit int
	// SearchLimit is passed to every Algorithm.Search. 0 asks for the full ranking.
	SearchLimit int
	// MetricK is the cut-off for precision, recall, F1 and NDCG.
	MetricK int
	// RelevanceThreshold is the judgment score at which an item counts as relevant.
	RelevanceThreshold float64
	// RunDeadline bounds the whole run. 0 disables it.
	RunDeadline time.Duration
}

// DefaultOptions returns the interactive defaults.
func DefaultOptions() Options {
	return Options{
		Workers:             DefaultWorkers,
		PerQueryResultLimit: DefaultPerQueryResultLimit,
		MetricK:             DefaultMetricK,
		RelevanceThreshold:  judgment.DefaultThreshold,
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	switch {
	case o.Workers < 1:
		return fmt.Errorf("worker count must be >= 1, got %d: %w", o.Workers, domain.ErrConfiguration)
	case o.PerQueryResultLimit < 0:
		return fmt.Errorf("per-query result limit must be >= 0: %w", domain.ErrConfiguration)
	case o.SearchLimit < 0:
		return fmt.Errorf("search limit must be >= 0: %w", domain.ErrConfiguration)
	case o.MetricK < 1:
		return fmt.Errorf("metric k must be >= 1, got %d: %w", o.MetricK, domain.ErrConfiguration)
	case o.RelevanceThreshold < 0 || o.RelevanceThreshold > 1:
		return fmt.Errorf("relevance threshold must be in [0,1], got %g: %w",
			o.RelevanceThreshold, domain.ErrConfiguration)
	case o.RunDeadline < 0:
		return fmt.Errorf("run deadline must be >= 0: %w", domain.ErrConfiguration)
	}
	return nil
}
