package compare

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/kailas-cloud/relbench/internal/domain/report"
	"github.com/kailas-cloud/relbench/internal/eval"
)

// aggregate averages each algorithm over all queries. Sums run in query order
// and are divided once, so the result does not depend on which worker
// finished first.
func aggregate(units []report.QueryResult, algorithms []Algorithm, numQueries int) map[string]report.AlgorithmStats {
	out := make(map[string]report.AlgorithmStats, len(algorithms))
	a := len(algorithms)
	for ai, alg := range algorithms {
		var sum eval.Scores
		var latency float64
		errs := 0
		maps := make([]float64, 0, numQueries)
		for q := 0; q < numQueries; q++ {
			u := &units[q*a+ai]
			sum = sum.Add(toScores(u.Metrics))
			latency += u.LatencyMS
			maps = append(maps, u.Metrics.MAP)
			if u.Failed() {
				errs++
			}
		}

		var stddev float64
		if len(maps) > 1 {
			stddev = stat.StdDev(maps, nil)
		}
		var avgLatency float64
		if numQueries > 0 {
			avgLatency = latency / float64(numQueries)
		}
		out[alg.Name()] = report.AlgorithmStats{
			Metrics:      toMetrics(sum.Divide(numQueries)),
			AvgLatencyMS: avgLatency,
			MAPStdDev:    stddev,
			Units:        numQueries,
			Errors:       errs,
		}
	}
	return out
}

// summarize ranks algorithms by MAP and derives the insights list.
func summarize(rep *report.Report) report.Summary {
	sum := report.Summary{
		Ranking:       []report.RankEntry{},
		BestPerMetric: map[string]string{},
		Insights:      []string{},
	}
	if len(rep.Queries) == 0 {
		sum.Insights = append(sum.Insights, "No queries to evaluate.")
		return sum
	}

	names := append([]string{}, rep.Algorithms...)
	sort.SliceStable(names, func(i, j int) bool {
		mi, mj := rep.Aggregated[names[i]].Metrics.MAP, rep.Aggregated[names[j]].Metrics.MAP
		if mi != mj {
			return mi > mj
		}
		return names[i] < names[j]
	})
	for i, name := range names {
		sum.Ranking = append(sum.Ranking, report.RankEntry{
			Rank:      i + 1,
			Algorithm: name,
			MAP:       rep.Aggregated[name].Metrics.MAP,
		})
	}

	for _, metric := range eval.MetricNames() {
		best, bestValue := "", -1.0
		for _, name := range names {
			v := toScores(rep.Aggregated[name].Metrics).Named()[metric]
			if v > bestValue {
				best, bestValue = name, v
			}
		}
		sum.BestPerMetric[metric] = best
	}

	total, failed, skipped := 0, 0, 0
	for i := range rep.PerQuery {
		total++
		switch rep.PerQuery[i].Status {
		case report.StatusError:
			failed++
		case report.StatusSkipped:
			skipped++
		}
	}
	if failed+skipped == total {
		sum.Insights = append(sum.Insights,
			fmt.Sprintf("No successful units: all %d units failed or were skipped.", total))
		return sum
	}

	if fastest, ok := fastestAlgorithm(rep, names); ok {
		sum.Insights = append(sum.Insights, fmt.Sprintf(
			"Fastest algorithm: %s (%.3f ms average latency).",
			fastest, rep.Aggregated[fastest].AvgLatencyMS))
	}

	first := sum.Ranking[0]
	sum.Insights = append(sum.Insights, fmt.Sprintf("Best MAP: %s (%.4f).", first.Algorithm, first.MAP))

	if len(sum.Ranking) > 1 {
		second := sum.Ranking[1]
		margin := first.MAP - second.MAP
		if second.MAP > 0 {
			sum.Insights = append(sum.Insights, fmt.Sprintf(
				"%s leads %s by %.4f MAP (%.1f%%).",
				first.Algorithm, second.Algorithm, margin, margin/second.MAP*100))
		} else {
			sum.Insights = append(sum.Insights, fmt.Sprintf(
				"%s leads %s by %.4f MAP.", first.Algorithm, second.Algorithm, margin))
		}
	}

	if failed > 0 {
		sum.Insights = append(sum.Insights, fmt.Sprintf("%d of %d units failed.", failed, total))
	}
	if skipped > 0 {
		sum.Insights = append(sum.Insights, fmt.Sprintf(
			"Run deadline exceeded: %d of %d units were not executed.", skipped, total))
	}
	return sum
}

// fastestAlgorithm picks the lowest average latency among algorithms with at
// least one successful unit.
func fastestAlgorithm(rep *report.Report, names []string) (string, bool) {
	best, found := "", false
	for _, name := range names {
		st := rep.Aggregated[name]
		if st.Errors == st.Units {
			continue
		}
		if !found || st.AvgLatencyMS < rep.Aggregated[best].AvgLatencyMS {
			best, found = name, true
		}
	}
	return best, found
}
