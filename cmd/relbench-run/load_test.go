package main

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kailas-cloud/relbench/internal/config"
	"github.com/kailas-cloud/relbench/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCorpus(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"array", `[{"id": "1", "title": "a"}, {"item_id": "2", "brand": "b"}]`, []string{"1", "2"}},
		{"wrapped", `{"documents": [{"id": "x"}]}`, []string{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corpus, err := loadCorpus(writeFile(t, "corpus.json", tt.content))
			if err != nil {
				t.Fatalf("loadCorpus: %v", err)
			}
			if !reflect.DeepEqual(corpus.IDs(), tt.want) {
				t.Errorf("IDs = %v, want %v", corpus.IDs(), tt.want)
			}
		})
	}
}

func TestLoadCorpus_Errors(t *testing.T) {
	if _, err := loadCorpus(writeFile(t, "c.json", `[{"title": "no id"}]`)); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("missing id: expected ErrInvalidInput, got %v", err)
	}
	if _, err := loadCorpus(writeFile(t, "c.json", `[{"id": "1"}, {"id": "1"}]`)); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("duplicate: expected ErrInvalidInput, got %v", err)
	}
	if _, err := loadCorpus(writeFile(t, "c.json", `not json`)); err == nil {
		t.Error("expected decode error")
	}
	if _, err := loadCorpus(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected read error")
	}
}

func TestLoadQueries(t *testing.T) {
	path := writeFile(t, "q.txt", "red shoe\n\n# comment\n  blue sock  \nred shoe\n")
	got, err := loadQueries(path)
	if err != nil {
		t.Fatalf("loadQueries: %v", err)
	}
	want := []string{"red shoe", "blue sock", "red shoe"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("queries = %v, want %v", got, want)
	}

	if _, err := loadQueries(writeFile(t, "empty.txt", "\n# only comments\n")); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestArgsApply(t *testing.T) {
	cfg := config.Config{}
	cfg.ApplyDefaults()

	args{Workers: 8, MetricK: 5, SearchLimit: 100, DeadlineSec: 30, NoHybrid: true}.apply(&cfg)

	if cfg.Harness.WorkerCount != 8 || cfg.Harness.MetricK != 5 ||
		cfg.Harness.SearchLimit != 100 || cfg.Harness.RunDeadlineSec != 30 {
		t.Errorf("harness = %+v", cfg.Harness)
	}
	if cfg.HybridEnabled() {
		t.Error("hybrid should be disabled")
	}

	before := cfg.Harness
	args{}.apply(&cfg)
	if cfg.Harness != before {
		t.Error("zero flags must not change config")
	}
}
