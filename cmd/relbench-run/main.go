package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"go.uber.org/zap"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/kailas-cloud/relbench/internal/bootstrap"
	"github.com/kailas-cloud/relbench/internal/config"
	logpkg "github.com/kailas-cloud/relbench/internal/logger"
	"github.com/kailas-cloud/relbench/internal/version"
)

type args struct {
	Env         string `help:"Config environment (config/<env>.yaml)" arg:"-e,env:ENV" default:"local"`
	Out         string `help:"Write the report to this file instead of stdout" arg:"-o"`
	Workers     int    `help:"Override harness.worker_count" arg:"-w"`
	MetricK     int    `help:"Override harness.metric_k" arg:"-k"`
	SearchLimit int    `help:"Override harness.search_limit" arg:"-l"`
	DeadlineSec int    `help:"Override harness.run_deadline_sec" arg:"-d"`
	NoHybrid    bool   `help:"Do not register the hybrid_rrf algorithm"`
	Quiet       bool   `help:"Disable the progress bar" arg:"-q"`
	Indent      bool   `help:"Pretty-print the report JSON"`
	CorpusFile  string `help:"JSON corpus: an array of records or {\"documents\": [...]}" arg:"required,positional"`
	QueryFile   string `help:"Queries, one per line" arg:"required,positional"`
}

func (args) Version() string {
	return "relbench-run " + version.String()
}

func (args) Description() string {
	return "Runs every configured ranking algorithm over a query set and prints the comparison report."
}

func main() {
	var a args
	arg.MustParse(&a)

	if err := run(a); err != nil {
		fmt.Fprintln(os.Stderr, "relbench-run:", err)
		os.Exit(1)
	}
}

func run(a args) error {
	cfg, err := config.Load(a.Env)
	if err != nil {
		return err
	}
	a.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logpkg.NewLogger(a.Env, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	corpus, err := loadCorpus(a.CorpusFile)
	if err != nil {
		return err
	}
	queries, err := loadQueries(a.QueryFile)
	if err != nil {
		return err
	}
	logger.Info("Inputs loaded",
		zap.String("corpus_file", a.CorpusFile),
		zap.Int("documents", len(corpus)),
		zap.Int("queries", len(queries)),
	)

	harness, err := bootstrap.Harness(&cfg, logger, nil)
	if err != nil {
		return err
	}

	if !a.Quiet && len(queries) > 0 {
		bar := pb.New(len(queries) * len(harness.Algorithms()))
		bar.Output = os.Stderr
		bar.Start()
		defer bar.Finish()
		harness.WithProgress(func(done, _ int) { bar.Set(done) })
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := harness.Run(ctx, queries, corpus)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if a.Out != "" {
		f, err := os.Create(a.Out)
		if err != nil {
			return fmt.Errorf("create %s: %w", a.Out, err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	enc := json.NewEncoder(out)
	if a.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	logger.Info("Report written",
		zap.String("run_id", rep.RunID),
		zap.Bool("incomplete", rep.Incomplete),
		zap.Duration("duration", time.Duration(rep.DurationMS*float64(time.Millisecond))),
	)
	return nil
}

// apply overrides config values with explicitly set flags.
func (a args) apply(cfg *config.Config) {
	if a.Workers > 0 {
		cfg.Harness.WorkerCount = a.Workers
	}
	if a.MetricK > 0 {
		cfg.Harness.MetricK = a.MetricK
	}
	if a.SearchLimit > 0 {
		cfg.Harness.SearchLimit = a.SearchLimit
	}
	if a.DeadlineSec > 0 {
		cfg.Harness.RunDeadlineSec = a.DeadlineSec
	}
	if a.NoHybrid {
		disabled := false
		cfg.Hybrid.Enabled = &disabled
	}
}
