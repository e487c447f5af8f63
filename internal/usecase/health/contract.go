package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// AlgorithmLister exposes the algorithms registered with the harness.
type AlgorithmLister interface {
	Algorithms() []string
}
