package eval

// Scores is the full metric set for one ranking, or an accumulation of them.
type Scores struct {
	Precision float64
	Recall    float64
	F1        float64
	NDCG      float64
	AP        float64
	RR        float64
}

// Evaluate computes every metric for ranked. Cut-off metrics use k; AP and RR
// use the whole ranking.
func Evaluate(ranked []string, relevant Set, grades map[string]float64, k int) Scores {
	p := PrecisionAtK(ranked, relevant, k)
	r := RecallAtK(ranked, relevant, k)
	return Scores{
		Precision: p,
		Recall:    r,
		F1:        f1(p, r),
		NDCG:      NDCGAtK(ranked, grades, k),
		AP:        AveragePrecision(ranked, relevant),
		RR:        ReciprocalRank(ranked, relevant),
	}
}

// Add returns the element-wise sum.
func (s Scores) Add(o Scores) Scores {
	return Scores{
		Precision: s.Precision + o.Precision,
		Recall:    s.Recall + o.Recall,
		F1:        s.F1 + o.F1,
		NDCG:      s.NDCG + o.NDCG,
		AP:        s.AP + o.AP,
		RR:        s.RR + o.RR,
	}
}

// Divide divides every metric by n. n <= 0 returns the zero value.
func (s Scores) Divide(n int) Scores {
	if n <= 0 {
		return Scores{}
	}
	d := float64(n)
	return Scores{
		Precision: s.Precision / d,
		Recall:    s.Recall / d,
		F1:        s.F1 / d,
		NDCG:      s.NDCG / d,
		AP:        s.AP / d,
		RR:        s.RR / d,
	}
}

// Named returns the metrics keyed by their report names.
func (s Scores) Named() map[string]float64 {
	return map[string]float64{
		MetricPrecision: s.Precision,
		MetricRecall:    s.Recall,
		MetricF1:        s.F1,
		MetricNDCG:      s.NDCG,
		MetricMAP:       s.AP,
		MetricMRR:       s.RR,
	}
}

// Report names of the metrics.
const (
	MetricPrecision = "precision"
	MetricRecall    = "recall"
	MetricF1        = "f1"
	MetricNDCG      = "ndcg"
	MetricMAP       = "map"
	MetricMRR       = "mrr"
)

// MetricNames lists the metric names in report order.
func MetricNames() []string {
	return []string{MetricPrecision, MetricRecall, MetricF1, MetricNDCG, MetricMAP, MetricMRR}
}
