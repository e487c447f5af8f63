package compare

import (
	"time"

	domdoc "github.com/kailas-cloud/relbench/internal/domain/document"
	"github.com/kailas-cloud/relbench/internal/judgment"
	"github.com/kailas-cloud/relbench/internal/ranking"
)

// Algorithm is a ranking strategy under comparison. Algorithms that also
// implement ranking.Binder are bound to the run corpus once, before any
// worker starts.
type Algorithm = ranking.Ranker

// JudgmentBuilder produces the ground truth for a run.
type JudgmentBuilder interface {
	Build(queries []string, corpus domdoc.Corpus) *judgment.Judgment
}

// Recorder receives run telemetry.
type Recorder interface {
	RecordUnit(algorithm, status string, latency time.Duration)
	RecordRun(status string, duration time.Duration)
}

// ProgressFunc is called after every finished unit with the number of units
// done so far and the total. Calls are serialized.
type ProgressFunc func(done, total int)
