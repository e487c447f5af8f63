package hybrid

import (
	"math"
	"reflect"
	"testing"

	"github.com/kailas-cloud/relbench/internal/domain/search/result"
)

func makeResult(id string, terms ...string) result.Result {
	return result.New(id, 0, terms)
}

func TestFuseRRF_DisjointLists(t *testing.T) {
	first := []result.Result{makeResult("a"), makeResult("b")}
	second := []result.Result{makeResult("c"), makeResult("d")}

	results := fuseRRF([][]result.Result{first, second}, 10)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	// Equal scores keep first-appearance order.
	want := []string{"a", "c", "b", "d"}
	if got := result.IDs(results); !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestFuseRRF_OverlappingLists(t *testing.T) {
	first := []result.Result{makeResult("a"), makeResult("b"), makeResult("c")}
	second := []result.Result{makeResult("b"), makeResult("d"), makeResult("a")}

	results := fuseRRF([][]result.Result{first, second}, 10)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	// "a": 1/61 + 1/63, "b": 1/62 + 1/61; b wins.
	if results[0].ID() != "b" {
		t.Errorf("expected 'b' first, got %s", results[0].ID())
	}
	if results[1].ID() != "a" {
		t.Errorf("expected 'a' second, got %s", results[1].ID())
	}
	if results[1].Score() <= results[2].Score() {
		t.Errorf("overlap score %f should be > single score %f", results[1].Score(), results[2].Score())
	}
}

func TestFuseRRF_EmptyInputs(t *testing.T) {
	t.Run("no rankings", func(t *testing.T) {
		if results := fuseRRF(nil, 10); len(results) != 0 {
			t.Fatalf("expected 0 results, got %d", len(results))
		}
	})

	t.Run("one empty ranking", func(t *testing.T) {
		results := fuseRRF([][]result.Result{nil, {makeResult("a")}}, 10)
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
	})
}

func TestFuseRRF_TopKLimiting(t *testing.T) {
	first := []result.Result{makeResult("a"), makeResult("b"), makeResult("c")}
	second := []result.Result{makeResult("d"), makeResult("e"), makeResult("f")}

	if results := fuseRRF([][]result.Result{first, second}, 3); len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results := fuseRRF([][]result.Result{first, second}, 0); len(results) != 6 {
		t.Fatalf("expected 6 results without a limit, got %d", len(results))
	}
}

func TestFuseRRF_ScoreFormula(t *testing.T) {
	results := fuseRRF([][]result.Result{{makeResult("a")}, {makeResult("a")}}, 10)
	// rank 0 in both: 1/(60+1) + 1/(60+1) = 2/61
	expected := 2.0 / 61.0
	if math.Abs(results[0].Score()-expected) > 1e-10 {
		t.Errorf("expected score %f, got %f", expected, results[0].Score())
	}
}

func TestFuseRRF_UnionOfMatchedTerms(t *testing.T) {
	first := []result.Result{makeResult("a", "red", "shoe")}
	second := []result.Result{makeResult("a", "shoe", "shoes")}

	results := fuseRRF([][]result.Result{first, second}, 10)
	want := []string{"red", "shoe", "shoes"}
	if got := results[0].MatchedTerms(); !reflect.DeepEqual(got, want) {
		t.Errorf("MatchedTerms = %v, want %v", got, want)
	}
}
