package compare

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/relbench/internal/domain"
	domdoc "github.com/kailas-cloud/relbench/internal/domain/document"
	"github.com/kailas-cloud/relbench/internal/domain/report"
	"github.com/kailas-cloud/relbench/internal/domain/search/result"
	"github.com/kailas-cloud/relbench/internal/eval"
	"github.com/kailas-cloud/relbench/internal/judgment"
)

// pool executes (query, algorithm) units. Unit i covers query i/A and
// algorithm i%A, and writes only slot i.
type pool struct {
	opts       Options
	algorithms []Algorithm
	queries    []string
	corpus     domdoc.Corpus
	judgment   *judgment.Judgment
	logger     *zap.Logger
	recorder   Recorder
	progress   ProgressFunc

	progressMu sync.Mutex
	done       int
}

func (p *pool) run(ctx context.Context) []report.QueryResult {
	total := len(p.queries) * len(p.algorithms)
	slots := make([]report.QueryResult, total)
	executed := make([]bool, total)

	units := make(chan int, total)
	for i := 0; i < total; i++ {
		units <- i
	}
	close(units)

	workers := p.opts.Workers
	if workers > total {
		workers = total
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, units, slots, executed)
		}()
	}
	wg.Wait()

	skipped := 0
	for i := range slots {
		if executed[i] {
			continue
		}
		skipped++
		query, alg := p.unit(i)
		slots[i] = skippedResult(query, alg.Name(), ctx.Err())
		p.record(alg.Name(), report.StatusSkipped, 0)
	}
	if skipped > 0 {
		p.logger.Warn("Run deadline cut off units",
			zap.Int("skipped", skipped),
			zap.Int("total", total),
			zap.Error(ctx.Err()),
		)
	}
	return slots
}

func (p *pool) worker(ctx context.Context, units <-chan int, slots []report.QueryResult, executed []bool) {
	for i := range units {
		if ctx.Err() != nil {
			// Drain: remaining units are recorded as skipped after the join.
			continue
		}
		query, alg := p.unit(i)
		slots[i] = p.execute(ctx, query, alg)
		executed[i] = true
		p.tick(len(slots))
	}
}

func (p *pool) unit(i int) (string, Algorithm) {
	a := len(p.algorithms)
	return p.queries[i/a], p.algorithms[i%a]
}

func (p *pool) tick(total int) {
	p.progressMu.Lock()
	defer p.progressMu.Unlock()
	p.done++
	if p.progress != nil {
		p.progress(p.done, total)
	}
}

// execute runs one unit. Errors and panics become error-tagged records.
func (p *pool) execute(ctx context.Context, query string, alg Algorithm) report.QueryResult {
	name := alg.Name()
	relevant := p.judgment.RelevantItems(query, p.opts.RelevanceThreshold)

	start := time.Now()
	results, err := p.search(ctx, query, alg)
	latency := time.Since(start)

	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		// Cut off mid-search by the run deadline or cancellation.
		p.record(name, report.StatusSkipped, latency)
		skipped := skippedResult(query, name, err)
		skipped.LatencyMS = durationMS(latency)
		skipped.Relevant = len(relevant)
		return skipped
	}
	if err != nil {
		runErr := domain.NewAlgorithmRuntime(name, query, err)
		p.logger.Warn("Algorithm failed",
			zap.String("algorithm", name),
			zap.String("query", query),
			zap.Duration("latency", latency),
			zap.Error(err),
		)
		p.record(name, report.StatusError, latency)
		return report.QueryResult{
			Query:      query,
			Algorithm:  name,
			Status:     report.StatusError,
			Error:      runErr.Error(),
			LatencyMS:  durationMS(latency),
			Relevant:   len(relevant),
			TopResults: []report.Hit{},
		}
	}

	scores := eval.Evaluate(result.IDs(results), relevant, p.judgment.Grades(query), p.opts.MetricK)
	p.record(name, report.StatusOK, latency)
	p.logger.Debug("Unit completed",
		zap.String("algorithm", name),
		zap.String("query", query),
		zap.Duration("latency", latency),
		zap.Int("results", len(results)),
	)

	return report.QueryResult{
		Query:      query,
		Algorithm:  name,
		Status:     report.StatusOK,
		LatencyMS:  durationMS(latency),
		Relevant:   len(relevant),
		Returned:   len(results),
		Metrics:    toMetrics(scores),
		TopResults: toHits(result.Truncate(results, p.opts.PerQueryResultLimit)),
	}
}

func (p *pool) search(ctx context.Context, query string, alg Algorithm) (results []result.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return alg.Search(ctx, query, p.corpus, p.opts.SearchLimit)
}

func (p *pool) record(algorithm string, status report.UnitStatus, latency time.Duration) {
	if p.recorder != nil {
		p.recorder.RecordUnit(algorithm, string(status), latency)
	}
}

func skippedResult(query, algorithm string, cause error) report.QueryResult {
	if cause == nil {
		cause = context.DeadlineExceeded
	}
	return report.QueryResult{
		Query:      query,
		Algorithm:  algorithm,
		Status:     report.StatusSkipped,
		Error:      domain.NewAlgorithmRuntime(algorithm, query, cause).Error(),
		TopResults: []report.Hit{},
	}
}

func toMetrics(s eval.Scores) report.Metrics {
	return report.Metrics{
		Precision: s.Precision,
		Recall:    s.Recall,
		F1:        s.F1,
		NDCG:      s.NDCG,
		MAP:       s.AP,
		MRR:       s.RR,
	}
}

func toScores(m report.Metrics) eval.Scores {
	return eval.Scores{
		Precision: m.Precision,
		Recall:    m.Recall,
		F1:        m.F1,
		NDCG:      m.NDCG,
		AP:        m.MAP,
		RR:        m.MRR,
	}
}

func toHits(results []result.Result) []report.Hit {
	hits := make([]report.Hit, len(results))
	for i := range results {
		terms := results[i].MatchedTerms()
		if terms == nil {
			terms = []string{}
		}
		hits[i] = report.Hit{
			ItemID:       results[i].ID(),
			Score:        results[i].Score(),
			MatchedTerms: terms,
		}
	}
	return hits
}
