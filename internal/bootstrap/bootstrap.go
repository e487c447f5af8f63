// Package bootstrap assembles the store and the comparison harness from
// configuration. Both binaries share it.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/relbench/internal/config"
	"github.com/kailas-cloud/relbench/internal/db"
	"github.com/kailas-cloud/relbench/internal/db/memory"
	dbRedis "github.com/kailas-cloud/relbench/internal/db/redis"
	"github.com/kailas-cloud/relbench/internal/judgment"
	"github.com/kailas-cloud/relbench/internal/ranking/hybrid"
	"github.com/kailas-cloud/relbench/internal/ranking/keyword"
	"github.com/kailas-cloud/relbench/internal/ranking/tfidf"
	"github.com/kailas-cloud/relbench/internal/textproc"
	compareuc "github.com/kailas-cloud/relbench/internal/usecase/compare"
)

// NewStore creates the database store for the configured driver and waits
// until it answers.
func NewStore(ctx context.Context, cfg config.DatabaseConfig) (db.Store, error) {
	var store db.Store
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.NewStore(), nil
	case config.DriverRedis, config.DriverValkey:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
		}
		store = s
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	return store, nil
}

// Tokenizer builds the tokenizer shared by scorers and judgments.
func Tokenizer(cfg *config.Config) textproc.Tokenizer {
	return textproc.New(textproc.Options{
		CaseSensitive: cfg.Scoring.CaseSensitive,
		MinLength:     cfg.Scoring.MinTokenLength,
		Stem:          cfg.Scoring.Stem,
	})
}

// HarnessOptions maps the harness section onto run options.
func HarnessOptions(cfg *config.Config) compareuc.Options {
	return compareuc.Options{
		Workers:             cfg.Harness.WorkerCount,
		PerQueryResultLimit: cfg.Harness.PerQueryResultLimit,
		SearchLimit:         cfg.Harness.SearchLimit,
		MetricK:             cfg.Harness.MetricK,
		RelevanceThreshold:  cfg.RelevanceThreshold(),
		RunDeadline:         cfg.RunDeadline(),
	}
}

// Algorithms creates the configured ranking algorithms in registration order:
// tfidf, keyword and, when enabled, hybrid_rrf over the two.
func Algorithms(cfg *config.Config, tok textproc.Tokenizer) ([]compareuc.Algorithm, error) {
	tfOpts := tfidf.Options{
		MinDF:     cfg.Scoring.MinDF,
		MaxDF:     cfg.Scoring.MaxDF,
		Tokenizer: tok,
	}
	if err := tfOpts.Validate(); err != nil {
		return nil, fmt.Errorf("tfidf scorer: %w", err)
	}
	tf := tfidf.NewScorer(tfOpts)

	cacheSize := cfg.Keyword.TokenCacheSize
	if cacheSize < 0 {
		cacheSize = 0
	}
	kw, err := keyword.New(keyword.Options{
		ExactMatchWeight:   cfg.ExactMatchWeight(),
		PartialMatchWeight: cfg.PartialMatchWeight(),
		Tokenizer:          tok,
		TokenCacheSize:     cacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("keyword scorer: %w", err)
	}

	algorithms := []compareuc.Algorithm{tf, kw}
	if cfg.HybridEnabled() {
		h, err := hybrid.New(tf, kw)
		if err != nil {
			return nil, fmt.Errorf("hybrid scorer: %w", err)
		}
		algorithms = append(algorithms, h)
	}
	return algorithms, nil
}

// Harness creates the comparison service with every configured algorithm
// registered. recorder may be nil.
func Harness(cfg *config.Config, logger *zap.Logger, recorder compareuc.Recorder) (*compareuc.Service, error) {
	tok := Tokenizer(cfg)
	svc, err := compareuc.New(judgment.NewSynthesizer(tok), HarnessOptions(cfg))
	if err != nil {
		return nil, err
	}
	svc.WithLogger(logger)
	if recorder != nil {
		svc.WithRecorder(recorder)
	}

	algorithms, err := Algorithms(cfg, tok)
	if err != nil {
		return nil, err
	}
	for _, a := range algorithms {
		if err := svc.Register(a); err != nil {
			return nil, err
		}
	}
	return svc, nil
}
