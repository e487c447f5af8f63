package corpus

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/relbench/internal/db"
	"github.com/kailas-cloud/relbench/internal/db/memory"
	domdoc "github.com/kailas-cloud/relbench/internal/domain/document"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn    func(ctx context.Context, items []db.HashSetItem) error
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	delFn          func(ctx context.Context, keys ...string) error
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
	rpushFn        func(ctx context.Context, key string, values ...string) error
	lrangeFn       func(ctx context.Context, key string, start, stop int64) ([]string, error)
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	if m.delFn != nil {
		return m.delFn(ctx, keys...)
	}
	return nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) RPush(ctx context.Context, key string, values ...string) error {
	if m.rpushFn != nil {
		return m.rpushFn(ctx, key, values...)
	}
	return nil
}

func (m *mockStore) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	if m.lrangeFn != nil {
		return m.lrangeFn(ctx, key, start, stop)
	}
	return []string{}, nil
}

// failingHSet wraps a real store and fails every HSetMulti.
type failingHSet struct {
	*memory.Store
}

func (f *failingHSet) HSetMulti(context.Context, []db.HashSetItem) error {
	return errors.New("OOM")
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "relbench:"), ms
}

func testCorpus(t *testing.T) domdoc.Corpus {
	t.Helper()
	a, err := domdoc.New("a", domdoc.Fields{Title: "red shoe", Brand: "acme"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := domdoc.New("b", domdoc.Fields{Title: "blue sock", Tags: "cotton"})
	if err != nil {
		t.Fatal(err)
	}
	return domdoc.Corpus{a, b}
}
