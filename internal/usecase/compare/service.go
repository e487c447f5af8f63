// Package compare runs every registered ranking algorithm over every query
// and aggregates the results into a report.
package compare

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/relbench/internal/domain"
	domdoc "github.com/kailas-cloud/relbench/internal/domain/document"
	"github.com/kailas-cloud/relbench/internal/domain/report"
	"github.com/kailas-cloud/relbench/internal/ranking"
)

// Run status values passed to the Recorder.
const (
	RunStatusOK         = "ok"
	RunStatusIncomplete = "incomplete"
	RunStatusFailed     = "failed"
)

// Service is the comparison harness.
type Service struct {
	judge    JudgmentBuilder
	opts     Options
	logger   *zap.Logger
	recorder Recorder
	progress ProgressFunc
	newID    func() string

	mu         sync.RWMutex
	algorithms []Algorithm
}

// New creates a harness with validated options.
func New(judge JudgmentBuilder, opts Options) (*Service, error) {
	if judge == nil {
		return nil, fmt.Errorf("judgment builder is required: %w", domain.ErrConfiguration)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		judge:  judge,
		opts:   opts,
		logger: zap.NewNop(),
		newID:  uuid.NewString,
	}, nil
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithRecorder sets the telemetry recorder.
func (s *Service) WithRecorder(r Recorder) *Service {
	s.recorder = r
	return s
}

// WithProgress sets the per-unit progress callback.
func (s *Service) WithProgress(fn ProgressFunc) *Service {
	s.progress = fn
	return s
}

// Options returns the run options.
func (s *Service) Options() Options { return s.opts }

// Register adds an algorithm. Names must be non-empty and unique.
func (s *Service) Register(a Algorithm) error {
	if a == nil {
		return fmt.Errorf("algorithm is nil: %w", domain.ErrConfiguration)
	}
	name := a.Name()
	if name == "" {
		return fmt.Errorf("algorithm name is empty: %w", domain.ErrConfiguration)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.algorithms {
		if existing.Name() == name {
			return fmt.Errorf("algorithm %q already registered: %w", name, domain.ErrConfiguration)
		}
	}
	s.algorithms = append(s.algorithms, a)
	return nil
}

// Algorithms returns the registered algorithm names in registration order.
func (s *Service) Algorithms() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.algorithms))
	for i, a := range s.algorithms {
		names[i] = a.Name()
	}
	return names
}

// Run evaluates every registered algorithm on every query against corpus.
//
// Configuration problems (no algorithms, empty or invalid corpus, a failing
// Bind) are returned before any work starts. Once units are running the
// report is always returned: failed units become zero-metric records tagged
// with their error, and units cut off by the run deadline are marked skipped.
func (s *Service) Run(ctx context.Context, queries []string, corpus domdoc.Corpus) (*report.Report, error) {
	s.mu.RLock()
	algorithms := append([]Algorithm(nil), s.algorithms...)
	s.mu.RUnlock()

	if len(algorithms) == 0 {
		return nil, fmt.Errorf("no algorithms registered: %w", domain.ErrConfiguration)
	}
	if len(corpus) == 0 {
		return nil, fmt.Errorf("corpus is empty: %w", domain.ErrConfiguration)
	}
	if err := corpus.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	rep := s.newReport(algorithms, queries, corpus, start)

	if len(queries) == 0 {
		rep.Summary = summarize(rep)
		s.finish(rep, start, RunStatusOK)
		return rep, nil
	}

	bound, err := bindAll(algorithms, corpus)
	if err != nil {
		s.recordRun(RunStatusFailed, time.Since(start))
		return nil, err
	}

	j := s.judge.Build(queries, corpus)

	if s.opts.RunDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RunDeadline)
		defer cancel()
	}

	s.logger.Info("Comparison started",
		zap.String("run_id", rep.RunID),
		zap.Int("queries", len(queries)),
		zap.Int("algorithms", len(algorithms)),
		zap.Int("documents", len(corpus)),
		zap.Int("workers", s.opts.Workers),
	)

	p := &pool{
		opts:       s.opts,
		algorithms: bound,
		queries:    queries,
		corpus:     corpus,
		judgment:   j,
		logger:     s.logger,
		recorder:   s.recorder,
		progress:   s.progress,
	}
	rep.PerQuery = p.run(ctx)

	rep.Aggregated = aggregate(rep.PerQuery, algorithms, len(queries))
	for i := range rep.PerQuery {
		if rep.PerQuery[i].Status == report.StatusSkipped {
			rep.Incomplete = true
			break
		}
	}
	rep.Summary = summarize(rep)

	status := RunStatusOK
	if rep.Incomplete {
		status = RunStatusIncomplete
	}
	s.finish(rep, start, status)
	return rep, nil
}

// bindAll fits binders on corpus without touching the registered instances,
// so concurrent runs over different corpora stay independent.
func bindAll(algorithms []Algorithm, corpus domdoc.Corpus) ([]Algorithm, error) {
	bound := make([]Algorithm, len(algorithms))
	for i, a := range algorithms {
		b, ok := a.(ranking.Binder)
		if !ok {
			bound[i] = a
			continue
		}
		r, err := b.Bind(corpus)
		if err != nil {
			return nil, fmt.Errorf("bind %s: %w", a.Name(), err)
		}
		bound[i] = r
	}
	return bound, nil
}

func (s *Service) newReport(
	algorithms []Algorithm, queries []string, corpus domdoc.Corpus, start time.Time,
) *report.Report {
	names := make([]string, len(algorithms))
	for i, a := range algorithms {
		names[i] = a.Name()
	}
	return &report.Report{
		RunID:     s.newID(),
		StartedAt: start.UTC(),
		Settings: report.Settings{
			WorkerCount:         s.opts.Workers,
			MetricK:             s.opts.MetricK,
			SearchLimit:         s.opts.SearchLimit,
			PerQueryResultLimit: s.opts.PerQueryResultLimit,
			RelevanceThreshold:  s.opts.RelevanceThreshold,
			RunDeadlineSec:      s.opts.RunDeadline.Seconds(),
		},
		Algorithms: names,
		Queries:    append([]string{}, queries...),
		CorpusSize: len(corpus),
		PerQuery:   []report.QueryResult{},
		Aggregated: map[string]report.AlgorithmStats{},
	}
}

func (s *Service) finish(rep *report.Report, start time.Time, status string) {
	elapsed := time.Since(start)
	rep.DurationMS = durationMS(elapsed)
	s.recordRun(status, elapsed)
	s.logger.Info("Comparison finished",
		zap.String("run_id", rep.RunID),
		zap.String("status", status),
		zap.Duration("duration", elapsed),
		zap.Int("units", len(rep.PerQuery)),
	)
}

func (s *Service) recordRun(status string, d time.Duration) {
	if s.recorder != nil {
		s.recorder.RecordRun(status, d)
	}
}

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
