package bootstrap

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/relbench/internal/config"
	"github.com/kailas-cloud/relbench/internal/db/memory"
	"github.com/kailas-cloud/relbench/internal/domain"
	domdoc "github.com/kailas-cloud/relbench/internal/domain/document"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.HTTP.Port = 8080
	cfg.ApplyDefaults()
	return cfg
}

func TestHarness_RegistersConfiguredAlgorithms(t *testing.T) {
	cfg := testConfig()
	svc, err := Harness(cfg, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("Harness: %v", err)
	}
	if got, want := svc.Algorithms(), []string{"tfidf", "keyword", "hybrid_rrf"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Algorithms() = %v, want %v", got, want)
	}

	disabled := false
	cfg.Hybrid.Enabled = &disabled
	svc, err = Harness(cfg, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("Harness: %v", err)
	}
	if got := svc.Algorithms(); len(got) != 2 {
		t.Errorf("Algorithms() = %v, want tfidf and keyword only", got)
	}
}

func TestHarnessOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Harness.RunDeadlineSec = 30
	cfg.Harness.SearchLimit = 50
	threshold := 0.7
	cfg.Judgment.RelevanceThreshold = &threshold

	opts := HarnessOptions(cfg)
	if opts.Workers != 4 || opts.MetricK != 10 || opts.PerQueryResultLimit != 5 {
		t.Errorf("defaults not mapped: %+v", opts)
	}
	if opts.RunDeadline != 30*time.Second || opts.SearchLimit != 50 || opts.RelevanceThreshold != 0.7 {
		t.Errorf("options = %+v", opts)
	}
}

func TestAlgorithms_InvalidScoring(t *testing.T) {
	cfg := testConfig()
	cfg.Scoring.MinDF = 0
	if _, err := Algorithms(cfg, Tokenizer(cfg)); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestHarness_RunsEndToEnd(t *testing.T) {
	cfg := testConfig()
	svc, err := Harness(cfg, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("Harness: %v", err)
	}

	var corpus domdoc.Corpus
	for _, rec := range []map[string]string{
		{"id": "1", "title": "red running shoe"},
		{"id": "2", "title": "blue sock"},
		{"id": "3", "title": "red hat"},
	} {
		doc, err := domdoc.FromFields(rec)
		if err != nil {
			t.Fatal(err)
		}
		corpus = append(corpus, doc)
	}

	rep, err := svc.Run(context.Background(), []string{"red shoe", "sock"}, corpus)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.PerQuery) != 6 {
		t.Errorf("expected 6 units, got %d", len(rep.PerQuery))
	}
	for _, qr := range rep.PerQuery {
		if qr.Failed() {
			t.Errorf("unit %s/%s failed: %s", qr.Query, qr.Algorithm, qr.Error)
		}
	}
}

func TestNewStore(t *testing.T) {
	store, err := NewStore(context.Background(), config.DatabaseConfig{Driver: config.DriverMemory})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Errorf("store = %T, want *memory.Store", store)
	}

	if _, err := NewStore(context.Background(), config.DatabaseConfig{Driver: "sqlite"}); err == nil {
		t.Error("expected error for unknown driver")
	}
	if _, err := NewStore(context.Background(), config.DatabaseConfig{Driver: config.DriverRedis}); err == nil {
		t.Error("expected error for redis without addrs")
	}
}
