package chi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/relbench/internal/db/memory"
	"github.com/kailas-cloud/relbench/internal/domain/report"
	"github.com/kailas-cloud/relbench/internal/judgment"
	"github.com/kailas-cloud/relbench/internal/ranking/keyword"
	"github.com/kailas-cloud/relbench/internal/ranking/tfidf"
	corpusrepo "github.com/kailas-cloud/relbench/internal/repository/corpus"
	reportrepo "github.com/kailas-cloud/relbench/internal/repository/report"
	"github.com/kailas-cloud/relbench/internal/textproc"
	compareuc "github.com/kailas-cloud/relbench/internal/usecase/compare"
	corpusuc "github.com/kailas-cloud/relbench/internal/usecase/corpus"
	healthuc "github.com/kailas-cloud/relbench/internal/usecase/health"
)

func newTestRouter(t *testing.T, withReports bool) http.Handler {
	t.Helper()
	store := memory.NewStore()

	harness, err := compareuc.New(judgment.NewSynthesizer(textproc.Default()), compareuc.DefaultOptions())
	if err != nil {
		t.Fatalf("compare.New: %v", err)
	}
	kw, err := keyword.New(keyword.DefaultOptions())
	if err != nil {
		t.Fatalf("keyword.New: %v", err)
	}
	for _, a := range []compareuc.Algorithm{tfidf.NewScorer(tfidf.DefaultOptions()), kw} {
		if err := harness.Register(a); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	var reports ReportStore
	if withReports {
		reports = reportrepo.New(store, "test:", time.Hour)
	}
	srv := NewServer(
		harness,
		corpusuc.New(corpusrepo.New(store, "test:")),
		reports,
		healthuc.New(store, harness),
		zap.NewNop(),
	)
	r := chi.NewRouter()
	srv.Routes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

const testDocuments = `[
	{"id": "1", "title": "red running shoe"},
	{"id": "2", "title": "blue cotton sock"},
	{"id": "3", "title": "red wool hat"}
]`

func TestCreateComparison_InlineDocuments(t *testing.T) {
	h := newTestRouter(t, true)

	rr := do(t, h, http.MethodPost, "/v1/comparisons",
		`{"queries": ["red shoe", "sock"], "documents": `+testDocuments+`}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var rep report.Report
	if err := json.NewDecoder(rr.Body).Decode(&rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep.RunID == "" || rep.CorpusSize != 3 {
		t.Errorf("report = %+v", rep)
	}
	if len(rep.PerQuery) != 4 {
		t.Errorf("expected 4 units, got %d", len(rep.PerQuery))
	}

	got := do(t, h, http.MethodGet, "/v1/comparisons/"+rep.RunID, "")
	if got.Code != http.StatusOK {
		t.Fatalf("stored report: status = %d", got.Code)
	}
	if !strings.Contains(got.Body.String(), rep.RunID) {
		t.Errorf("stored report body = %s", got.Body.String())
	}
}

func TestCreateComparison_StoredCorpus(t *testing.T) {
	h := newTestRouter(t, false)

	put := do(t, h, http.MethodPut, "/v1/corpora/shop", `{"documents": `+testDocuments+`}`)
	if put.Code != http.StatusOK {
		t.Fatalf("put corpus: status = %d, body = %s", put.Code, put.Body.String())
	}

	rr := do(t, h, http.MethodPost, "/v1/comparisons", `{"queries": ["red"], "corpus": "shop"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	// Without a report store nothing is kept.
	var rep report.Report
	_ = json.NewDecoder(rr.Body).Decode(&rep)
	if got := do(t, h, http.MethodGet, "/v1/comparisons/"+rep.RunID, ""); got.Code != http.StatusNotFound {
		t.Errorf("expected 404 without store, got %d", got.Code)
	}
}

func TestCreateComparison_Errors(t *testing.T) {
	h := newTestRouter(t, true)

	tests := []struct {
		name string
		body string
		want int
		code string
	}{
		{"malformed json", `{`, http.StatusBadRequest, codeBadRequest},
		{"unknown field", `{"queries": [], "bogus": 1}`, http.StatusBadRequest, codeBadRequest},
		{"no corpus", `{"queries": ["red"]}`, http.StatusBadRequest, codeValidationFailed},
		{"both corpus forms", `{"queries": ["red"], "corpus": "x", "documents": [{"id": "1"}]}`,
			http.StatusBadRequest, codeValidationFailed},
		{"missing corpus", `{"queries": ["red"], "corpus": "nope"}`, http.StatusNotFound, codeNotFound},
		{"document without id", `{"queries": ["red"], "documents": [{"title": "x"}]}`,
			http.StatusBadRequest, codeValidationFailed},
		{"duplicate ids", `{"queries": ["red"], "documents": [{"id": "1"}, {"id": "1"}]}`,
			http.StatusBadRequest, codeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/v1/comparisons", tt.body)
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d, body = %s", rr.Code, tt.want, rr.Body.String())
			}
			var errResp errorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if errResp.Code != tt.code {
				t.Errorf("code = %q, want %q", errResp.Code, tt.code)
			}
		})
	}
}

func TestCreateComparison_EmptyQueries(t *testing.T) {
	h := newTestRouter(t, true)
	rr := do(t, h, http.MethodPost, "/v1/comparisons", `{"queries": [], "documents": `+testDocuments+`}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var rep report.Report
	_ = json.NewDecoder(rr.Body).Decode(&rep)
	if len(rep.PerQuery) != 0 {
		t.Errorf("expected no units, got %d", len(rep.PerQuery))
	}
}

func TestGetComparison_NotFound(t *testing.T) {
	h := newTestRouter(t, true)
	if rr := do(t, h, http.MethodGet, "/v1/comparisons/missing", ""); rr.Code != http.StatusNotFound {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestCorpusLifecycle(t *testing.T) {
	h := newTestRouter(t, true)

	rr := do(t, h, http.MethodPut, "/v1/corpora/shop",
		`{"documents": [{"id": "1", "title": "a"}, {"title": "no id"}, {"id": "2"}]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp corpusResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Documents != 2 || resp.Rejected != 1 {
		t.Errorf("response = %+v", resp)
	}
	if resp.Results[1].Status != "error" || resp.Results[1].Error == "" {
		t.Errorf("record 1 = %+v", resp.Results[1])
	}

	list := do(t, h, http.MethodGet, "/v1/corpora", "")
	if !strings.Contains(list.Body.String(), `"shop"`) {
		t.Errorf("list = %s", list.Body.String())
	}

	get := do(t, h, http.MethodGet, "/v1/corpora/shop", "")
	if get.Code != http.StatusOK || !strings.Contains(get.Body.String(), `"title":"a"`) {
		t.Errorf("get = %d %s", get.Code, get.Body.String())
	}

	if del := do(t, h, http.MethodDelete, "/v1/corpora/shop", ""); del.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", del.Code)
	}
	if get := do(t, h, http.MethodGet, "/v1/corpora/shop", ""); get.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d", get.Code)
	}
}

func TestPutCorpus_NothingValid(t *testing.T) {
	h := newTestRouter(t, true)
	rr := do(t, h, http.MethodPut, "/v1/corpora/shop", `{"documents": [{"title": "x"}]}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp corpusResponse
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Rejected != 1 || len(resp.Results) != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestPutCorpus_InvalidName(t *testing.T) {
	h := newTestRouter(t, true)
	rr := do(t, h, http.MethodPut, "/v1/corpora/bad.name", `{"documents": [{"id": "1"}]}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestHealthAndAlgorithms(t *testing.T) {
	h := newTestRouter(t, true)

	rr := do(t, h, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("health status = %d", rr.Code)
	}
	var health struct {
		Status     string            `json:"status"`
		Checks     map[string]string `json:"checks"`
		Algorithms []string          `json:"algorithms"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "ok" || health.Checks["database"] != "ok" {
		t.Errorf("health = %+v", health)
	}

	algs := do(t, h, http.MethodGet, "/v1/algorithms", "")
	if !strings.Contains(algs.Body.String(), `["tfidf","keyword"]`) {
		t.Errorf("algorithms = %s", algs.Body.String())
	}
}

func TestJSONRecoverer(t *testing.T) {
	h := JSONRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), codeInternalError) {
		t.Errorf("body = %s", rr.Body.String())
	}
}
