package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/relbench/internal/domain"
	dombatch "github.com/kailas-cloud/relbench/internal/domain/batch"
	domdoc "github.com/kailas-cloud/relbench/internal/domain/document"
	"github.com/kailas-cloud/relbench/internal/domain/report"
	logpkg "github.com/kailas-cloud/relbench/internal/logger"
	compareuc "github.com/kailas-cloud/relbench/internal/usecase/compare"
	corpusuc "github.com/kailas-cloud/relbench/internal/usecase/corpus"
	healthuc "github.com/kailas-cloud/relbench/internal/usecase/health"
)

const (
	maxQueries     = 1000
	maxRequestBody = 64 << 20
)

// Error response codes.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeConfiguration    = "configuration_error"
	codeNotFound         = "not_found"
	codeInternalError    = "internal_error"
)

// ReportStore persists comparison reports.
type ReportStore interface {
	Save(ctx context.Context, rep *report.Report) error
	Get(ctx context.Context, runID string) (*report.Report, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the comparison API.
type Server struct {
	harness       *compareuc.Service
	corpora       *corpusuc.Service
	reports       ReportStore
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. reports may be nil, in which case
// reports are returned but not kept.
func NewServer(
	harness *compareuc.Service,
	corpora *corpusuc.Service,
	reports ReportStore,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		harness: harness,
		corpora: corpora,
		reports: reports,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrConfiguration, http.StatusBadRequest, codeConfiguration),
	}
	return s
}

// Routes mounts every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/algorithms", s.ListAlgorithms)
		r.Post("/comparisons", s.CreateComparison)
		r.Get("/comparisons/{id}", s.GetComparison)
		r.Get("/corpora", s.ListCorpora)
		r.Put("/corpora/{name}", s.PutCorpus)
		r.Get("/corpora/{name}", s.GetCorpus)
		r.Delete("/corpora/{name}", s.DeleteCorpus)
	})
}

type comparisonRequest struct {
	Queries   []string            `json:"queries"`
	Corpus    string              `json:"corpus,omitempty"`
	Documents []map[string]string `json:"documents,omitempty"`
}

type corpusRequest struct {
	Documents []map[string]string `json:"documents"`
}

type recordResult struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type corpusResponse struct {
	Name      string         `json:"name"`
	Documents int            `json:"documents"`
	Rejected  int            `json:"rejected"`
	Results   []recordResult `json:"results"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateComparison handles POST /v1/comparisons.
func (s *Server) CreateComparison(w http.ResponseWriter, r *http.Request) {
	var req comparisonRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Queries) > maxQueries {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			fmt.Sprintf("at most %d queries per comparison", maxQueries))
		return
	}

	corpus, err := s.resolveCorpus(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	rep, err := s.harness.Run(r.Context(), req.Queries, corpus)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if s.reports != nil {
		if err := s.reports.Save(r.Context(), rep); err != nil {
			logpkg.FromContextOr(r.Context(), s.logger).Error("Failed to store report",
				zap.String("run_id", rep.RunID), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) resolveCorpus(ctx context.Context, req *comparisonRequest) (domdoc.Corpus, error) {
	switch {
	case req.Corpus != "" && len(req.Documents) > 0:
		return nil, fmt.Errorf("set either corpus or documents, not both: %w", domain.ErrInvalidInput)
	case req.Corpus != "":
		return s.corpora.Get(ctx, req.Corpus)
	case len(req.Documents) > 0:
		corpus, results := corpusuc.Parse(req.Documents)
		for _, res := range results {
			if res.Err() != nil {
				return nil, fmt.Errorf("document %d: %w", res.Index(), res.Err())
			}
		}
		return corpus, nil
	}
	return nil, fmt.Errorf("corpus or documents is required: %w", domain.ErrInvalidInput)
}

// GetComparison handles GET /v1/comparisons/{id}.
func (s *Server) GetComparison(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "reports are not stored")
		return
	}
	rep, err := s.reports.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// ListAlgorithms handles GET /v1/algorithms.
func (s *Server) ListAlgorithms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"algorithms": s.harness.Algorithms()})
}

// ListCorpora handles GET /v1/corpora.
func (s *Server) ListCorpora(w http.ResponseWriter, r *http.Request) {
	names, err := s.corpora.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"corpora": names})
}

// PutCorpus handles PUT /v1/corpora/{name}.
func (s *Server) PutCorpus(w http.ResponseWriter, r *http.Request) {
	var req corpusRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	name := chi.URLParam(r, "name")
	results, err := s.corpora.Import(r.Context(), name, req.Documents)
	if err != nil {
		if results != nil && errors.Is(err, domain.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, toCorpusResponse(name, results))
			return
		}
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCorpusResponse(name, results))
}

// GetCorpus handles GET /v1/corpora/{name}.
func (s *Server) GetCorpus(w http.ResponseWriter, r *http.Request) {
	corpus, err := s.corpora.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	docs := make([]map[string]string, len(corpus))
	for i := range corpus {
		docs[i] = corpus[i].Fields()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":      chi.URLParam(r, "name"),
		"documents": docs,
	})
}

// DeleteCorpus handles DELETE /v1/corpora/{name}.
func (s *Server) DeleteCorpus(w http.ResponseWriter, r *http.Request) {
	if err := s.corpora.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	rep := s.health.Check(r.Context())

	checks := make(map[string]string, len(rep.Checks))
	for k, v := range rep.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if rep.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":     rep.Status,
		"checks":     checks,
		"algorithms": rep.Algorithms,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func toCorpusResponse(name string, results []dombatch.Result) corpusResponse {
	resp := corpusResponse{
		Name:     name,
		Rejected: dombatch.CountFailed(results),
		Results:  make([]recordResult, len(results)),
	}
	resp.Documents = len(results) - resp.Rejected
	for i, res := range results {
		resp.Results[i] = recordResult{Index: res.Index(), ID: res.ID(), Status: string(res.Status())}
		if res.Err() != nil {
			resp.Results[i].Error = res.Err().Error()
		}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// Client errors carry their full message; anything else is reported as an
// internal error without details.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err, err.Error()) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
