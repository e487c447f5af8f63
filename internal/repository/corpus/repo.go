// Package corpus persists named corpora: one list of item IDs per corpus
// (keeping corpus order) and one hash per document.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/relbench/internal/db"
	"github.com/kailas-cloud/relbench/internal/domain"
	domdoc "github.com/kailas-cloud/relbench/internal/domain/document"
)

// store is the consumer interface for corpora (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	RPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// Repo implements usecase/corpus.Repository.
type Repo struct {
	store  store
	prefix string
}

// New creates a corpus repository. prefix namespaces every key.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Save replaces the corpus stored under name. Document hashes are written
// before the id list is swapped, so a failed write leaves the previous corpus
// listed. Hashes the new list no longer references are removed last.
func (r *Repo) Save(ctx context.Context, name string, corpus domdoc.Corpus) error {
	if len(corpus) == 0 {
		if err := r.Delete(ctx, name); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return nil
	}

	items := make([]db.HashSetItem, len(corpus))
	for i := range corpus {
		items[i] = db.HashSetItem{Key: r.docKey(name, corpus[i].ID()), Fields: corpus[i].Fields()}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset corpus %s: %w", name, err)
	}

	if err := r.store.Del(ctx, r.itemsKey(name)); err != nil {
		return fmt.Errorf("del corpus %s items: %w", name, err)
	}
	if err := r.store.RPush(ctx, r.itemsKey(name), corpus.IDs()...); err != nil {
		return fmt.Errorf("rpush corpus %s: %w", name, err)
	}
	return r.dropStale(ctx, name, corpus.IDs())
}

// dropStale deletes document hashes under name that are not in keep. It scans
// rather than reading the old list, so hashes orphaned by an earlier failed
// Save are collected too.
func (r *Repo) dropStale(ctx context.Context, name string, keep []string) error {
	keys, err := r.store.Scan(ctx, r.docKey(name, "*"))
	if err != nil {
		return fmt.Errorf("scan corpus %s: %w", name, err)
	}
	live := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		live[r.docKey(name, id)] = struct{}{}
	}
	var stale []string
	for _, key := range keys {
		if _, ok := live[key]; !ok {
			stale = append(stale, key)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	if err := r.store.Del(ctx, stale...); err != nil {
		return fmt.Errorf("del stale documents of %s: %w", name, err)
	}
	return nil
}

// Get loads a corpus in stored order.
func (r *Repo) Get(ctx context.Context, name string) (domdoc.Corpus, error) {
	ids, err := r.ids(ctx, name)
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.docKey(name, id)
	}
	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall corpus %s: %w", name, err)
	}
	if len(hashes) != len(ids) {
		return nil, fmt.Errorf("corpus %s: expected %d documents, got %d", name, len(ids), len(hashes))
	}

	corpus := make(domdoc.Corpus, 0, len(ids))
	for i, fields := range hashes {
		if len(fields) == 0 {
			return nil, fmt.Errorf("corpus %s: document %q missing", name, ids[i])
		}
		doc, err := domdoc.FromFields(fields)
		if err != nil {
			return nil, fmt.Errorf("corpus %s: decode %q: %w", name, ids[i], err)
		}
		corpus = append(corpus, doc)
	}
	return corpus, nil
}

// List returns stored corpus names, sorted.
func (r *Repo) List(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"corpus:*:items")
	if err != nil {
		return nil, fmt.Errorf("scan corpora: %w", err)
	}
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimSuffix(strings.TrimPrefix(key, r.prefix+"corpus:"), ":items")
		if name != "" && !strings.Contains(name, ":") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a corpus and all its documents.
func (r *Repo) Delete(ctx context.Context, name string) error {
	ids, err := r.ids(ctx, name)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, r.docKey(name, id))
	}
	keys = append(keys, r.itemsKey(name))
	if err := r.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("del corpus %s: %w", name, err)
	}
	return nil
}

func (r *Repo) ids(ctx context.Context, name string) ([]string, error) {
	ids, err := r.store.LRange(ctx, r.itemsKey(name), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("lrange corpus %s: %w", name, err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("corpus %q: %w", name, domain.ErrNotFound)
	}
	return ids, nil
}

func (r *Repo) itemsKey(name string) string {
	return r.prefix + "corpus:" + name + ":items"
}

func (r *Repo) docKey(name, id string) string {
	return r.prefix + "corpus:" + name + ":doc:" + id
}
