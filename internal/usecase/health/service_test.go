package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockLister struct {
	names []string
}

func (m *mockLister) Algorithms() []string { return m.names }

// --- Tests ---

func TestCheck(t *testing.T) {
	tests := []struct {
		name       string
		dbErr      error
		algorithms []string
		want       Status
		database   CheckResult
		algs       CheckResult
	}{
		{"all healthy", nil, []string{"tfidf", "keyword"}, Healthy, CheckOK, CheckOK},
		{"db down", errors.New("conn refused"), []string{"tfidf"}, Degraded, CheckError, CheckOK},
		{"no algorithms", nil, nil, Degraded, CheckOK, CheckError},
		{"everything down", errors.New("conn refused"), nil, Unhealthy, CheckError, CheckError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(&mockDBPinger{err: tt.dbErr}, &mockLister{names: tt.algorithms})
			r := svc.Check(context.Background())

			if r.Status != tt.want {
				t.Errorf("expected %q, got %q", tt.want, r.Status)
			}
			if r.Checks["database"] != tt.database {
				t.Errorf("expected database %q, got %q", tt.database, r.Checks["database"])
			}
			if r.Checks["algorithms"] != tt.algs {
				t.Errorf("expected algorithms %q, got %q", tt.algs, r.Checks["algorithms"])
			}
			if len(r.Algorithms) != len(tt.algorithms) {
				t.Errorf("expected %d algorithm names, got %v", len(tt.algorithms), r.Algorithms)
			}
		})
	}
}
