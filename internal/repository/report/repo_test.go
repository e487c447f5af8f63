package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/relbench/internal/db"
	"github.com/kailas-cloud/relbench/internal/domain"
	domreport "github.com/kailas-cloud/relbench/internal/domain/report"
)

type mockStore struct {
	getFn        func(ctx context.Context, key string) ([]byte, error)
	setWithTTLFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setWithTTLFn != nil {
		return m.setWithTTLFn(ctx, key, value, ttl)
	}
	return nil
}

func TestSave(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "relbench:", time.Hour)

	var gotKey string
	var gotTTL time.Duration
	var gotData []byte
	ms.setWithTTLFn = func(_ context.Context, key string, value []byte, ttl time.Duration) error {
		gotKey, gotData, gotTTL = key, value, ttl
		return nil
	}

	rep := &domreport.Report{RunID: "run-1", Algorithms: []string{"tfidf"}}
	if err := repo.Save(context.Background(), rep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "relbench:report:run-1" {
		t.Errorf("key = %q", gotKey)
	}
	if gotTTL != time.Hour {
		t.Errorf("ttl = %v", gotTTL)
	}
	if !strings.Contains(string(gotData), `"run_id":"run-1"`) {
		t.Errorf("data = %s", gotData)
	}
}

func TestSave_MissingRunID(t *testing.T) {
	repo := New(&mockStore{}, "relbench:", 0)
	err := repo.Save(context.Background(), &domreport.Report{})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSave_StoreError(t *testing.T) {
	ms := &mockStore{
		setWithTTLFn: func(context.Context, string, []byte, time.Duration) error {
			return errors.New("READONLY")
		},
	}
	repo := New(ms, "relbench:", 0)
	if err := repo.Save(context.Background(), &domreport.Report{RunID: "r"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestGet(t *testing.T) {
	ms := &mockStore{
		getFn: func(_ context.Context, key string) ([]byte, error) {
			if key != "relbench:report:run-1" {
				t.Errorf("unexpected key: %s", key)
			}
			return []byte(`{"run_id":"run-1","corpus_size":8,"incomplete":true}`), nil
		},
	}
	repo := New(ms, "relbench:", 0)

	rep, err := repo.Get(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.RunID != "run-1" || rep.CorpusSize != 8 || !rep.Incomplete {
		t.Errorf("report = %+v", rep)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := New(&mockStore{}, "relbench:", 0)
	_, err := repo.Get(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGet_Corrupt(t *testing.T) {
	ms := &mockStore{
		getFn: func(context.Context, string) ([]byte, error) { return []byte("{"), nil },
	}
	repo := New(ms, "relbench:", 0)
	_, err := repo.Get(context.Background(), "run-1")
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}
