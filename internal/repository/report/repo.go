// Package report stores comparison reports as JSON strings with a TTL.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/relbench/internal/db"
	"github.com/kailas-cloud/relbench/internal/domain"
	domreport "github.com/kailas-cloud/relbench/internal/domain/report"
)

// store is the consumer interface for reports (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Repo implements usecase/compare.ReportStore.
type Repo struct {
	store  store
	prefix string
	ttl    time.Duration
}

// New creates a report repository. ttl 0 keeps reports forever.
func New(s store, prefix string, ttl time.Duration) *Repo {
	return &Repo{store: s, prefix: prefix, ttl: ttl}
}

// Save stores a report under its run ID.
func (r *Repo) Save(ctx context.Context, rep *domreport.Report) error {
	if rep.RunID == "" {
		return fmt.Errorf("report without run ID: %w", domain.ErrInvalidInput)
	}
	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	key := r.key(rep.RunID)
	if err := r.store.SetWithTTL(ctx, key, data, r.ttl); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Get loads a report by run ID.
func (r *Repo) Get(ctx context.Context, runID string) (*domreport.Report, error) {
	key := r.key(runID)
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("report %q: %w", runID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	var rep domreport.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("unmarshal report %s: %w", runID, err)
	}
	return &rep, nil
}

func (r *Repo) key(runID string) string {
	return r.prefix + "report:" + runID
}
