// Package report holds the serializable outcome of a comparison run.
package report

import "time"

// UnitStatus is the outcome of one (query, algorithm) unit.
type UnitStatus string

// Unit status values.
const (
	StatusOK      UnitStatus = "ok"
	StatusError   UnitStatus = "error"
	StatusSkipped UnitStatus = "skipped"
)

// Metrics is one metric set, either for a single unit or averaged over queries.
type Metrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	NDCG      float64 `json:"ndcg"`
	MAP       float64 `json:"map"`
	MRR       float64 `json:"mrr"`
}

// Hit is one retained ranked result.
type Hit struct {
	ItemID       string   `json:"item_id"`
	Score        float64  `json:"score"`
	MatchedTerms []string `json:"matched_terms"`
}

// QueryResult is the record of one (query, algorithm) unit.
type QueryResult struct {
	Query      string     `json:"query"`
	Algorithm  string     `json:"algorithm"`
	Status     UnitStatus `json:"status"`
	Error      string     `json:"error,omitempty"`
	LatencyMS  float64    `json:"latency_ms"`
	Relevant   int        `json:"relevant"`
	Returned   int        `json:"returned"`
	Metrics    Metrics    `json:"metrics"`
	TopResults []Hit      `json:"top_results"`
}

// Failed reports whether the unit produced no usable ranking.
func (r *QueryResult) Failed() bool { return r.Status != StatusOK }

// AlgorithmStats aggregates one algorithm over every query.
type AlgorithmStats struct {
	Metrics      Metrics `json:"metrics"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
	MAPStdDev    float64 `json:"map_stddev"`
	Units        int     `json:"units"`
	Errors       int     `json:"errors"`
}

// RankEntry is one place in the MAP ranking.
type RankEntry struct {
	Rank      int     `json:"rank"`
	Algorithm string  `json:"algorithm"`
	MAP       float64 `json:"map"`
}

// Summary is the headline comparison.
type Summary struct {
	Ranking       []RankEntry       `json:"ranking"`
	BestPerMetric map[string]string `json:"best_per_metric"`
	Insights      []string          `json:"insights"`
}

// Settings echoes the knobs a run used.
type Settings struct {
	WorkerCount         int     `json:"worker_count"`
	MetricK             int     `json:"metric_k"`
	SearchLimit         int     `json:"search_limit"`
	PerQueryResultLimit int     `json:"per_query_result_limit"`
	RelevanceThreshold  float64 `json:"relevance_threshold"`
	RunDeadlineSec      float64 `json:"run_deadline_sec"`
}

// Report is the complete result of a comparison run.
type Report struct {
	RunID      string                    `json:"run_id"`
	StartedAt  time.Time                 `json:"started_at"`
	DurationMS float64                   `json:"duration_ms"`
	Settings   Settings                  `json:"settings"`
	Algorithms []string                  `json:"algorithms"`
	Queries    []string                  `json:"queries"`
	CorpusSize int                       `json:"corpus_size"`
	Incomplete bool                      `json:"incomplete"`
	PerQuery   []QueryResult             `json:"per_query"`
	Aggregated map[string]AlgorithmStats `json:"aggregated"`
	Summary    Summary                   `json:"summary"`
}

// Lookup returns the unit record for (query, algorithm). Duplicate queries
// resolve to the first occurrence.
func (r *Report) Lookup(query, algorithm string) (QueryResult, bool) {
	for i := range r.PerQuery {
		if r.PerQuery[i].Query == query && r.PerQuery[i].Algorithm == algorithm {
			return r.PerQuery[i], true
		}
	}
	return QueryResult{}, false
}
