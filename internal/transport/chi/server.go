// Package chi is the HTTP transport: a go-chi router over the analysis pipeline.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/domain"
	"github.com/kailas-cloud/resumatch/internal/domain/document"
	"github.com/kailas-cloud/resumatch/internal/domain/score"
	logpkg "github.com/kailas-cloud/resumatch/internal/logger"
	analysisuc "github.com/kailas-cloud/resumatch/internal/usecase/analysis"
	healthuc "github.com/kailas-cloud/resumatch/internal/usecase/health"
)

// Multipart form field names.
const (
	fieldResume         = "resume"
	fieldJobDescription = "job_description"
)

const defaultMaxUploadBytes = 10 << 20

// formOverhead is the slack allowed above the file limit for the text field and multipart framing.
const formOverhead = 1 << 20

// Analyzer runs one analysis.
type Analyzer interface {
	Analyze(ctx context.Context, doc document.Document, jdText string) (analysisuc.Result, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server holds the HTTP handlers.
type Server struct {
	analyses       Analyzer
	health         HealthChecker
	logger         *zap.Logger
	validate       *validator.Validate
	maxUploadBytes int64
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server. maxUploadBytes <= 0 selects 10 MiB.
func NewServer(analyses Analyzer, health HealthChecker, maxUploadBytes int64, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	s := &Server{
		analyses:       analyses,
		health:         health,
		logger:         logger,
		validate:       validator.New(),
		maxUploadBytes: maxUploadBytes,
	}
	s.errorHandlers = []errorHandler{
		payloadTooLargeHandler,
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, ErrorCodeBadRequest, safeMessage),
		sentinelHandler(domain.ErrUnsupportedFormat,
			http.StatusUnsupportedMediaType, ErrorCodeUnsupportedFormat, sentinelMessage(domain.ErrUnsupportedFormat)),
		sentinelHandler(domain.ErrExtraction, http.StatusUnprocessableEntity, ErrorCodeExtractionFailed, verbatim),
		sentinelHandler(domain.ErrEmbeddingUnavailable,
			http.StatusServiceUnavailable, ErrorCodeEmbeddingUnavailable, sentinelMessage(domain.ErrEmbeddingUnavailable)),
	}
	return s
}

// CreateAnalysis handles POST /v1/analyses.
func (s *Server) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+formOverhead)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		s.handleDomainError(w, r, fmt.Errorf("%w: parse multipart form: %w", domain.ErrInvalidInput, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(fieldResume)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "resume file is required",
			map[string]string{"field": fieldResume})
		return
	}
	defer func() { _ = file.Close() }()

	form := analysisForm{
		Filename:       header.Filename,
		JobDescription: r.FormValue(fieldJobDescription),
	}
	if err = s.validate.Struct(form); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "validation failed", validationDetails(err))
		return
	}
	if header.Size > s.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge, "resume file too large", nil)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.handleDomainError(w, r, fmt.Errorf("%w: read resume: %w", domain.ErrInvalidInput, err))
		return
	}

	doc, err := document.FromFile(form.Filename, data)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.analyses.Analyze(r.Context(), doc, form.JobDescription)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, analysisToResponse(res))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	for component, err := range report.Errors {
		logpkg.FromContextOr(r.Context(), s.logger).Warn("Health check failed",
			zap.String("component", component), zap.Error(err))
	}

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func analysisToResponse(res analysisuc.Result) AnalysisResponse {
	b := res.Breakdown
	return AnalysisResponse{
		ID:              res.ID.String(),
		LexicalScore:    score.Round2(b.Lexical),
		SemanticScore:   score.Round2(b.Semantic),
		FinalScore:      score.Round2(b.Final),
		Verdict:         string(b.Verdict),
		Tip:             b.Tip,
		MatchedKeywords: nonNil(res.Matched),
		MissingKeywords: nonNil(res.Missing),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func validationDetails(err error) map[string]string {
	details := map[string]string{}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			details[strings.ToLower(fe.Field())] = fe.Tag()
		}
	}
	return details
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string, details map[string]string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// sentinelMessage always reports the sentinel's own text, hiding provider internals.
func sentinelMessage(sentinel error) func(error) string {
	return func(error) string { return sentinel.Error() }
}

func verbatim(err error) string { return err.Error() }

// safeMessage drops wrapped library errors and keeps the sentinel text.
func safeMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidInput) {
		return domain.ErrInvalidInput.Error()
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode, message func(error) string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, message(err), nil)
		return true
	}
}

// payloadTooLargeHandler maps an exceeded body limit to 413.
func payloadTooLargeHandler(w http.ResponseWriter, err error) bool {
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe):
		writeError(w, http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge, "payload too large",
			map[string]string{"limit_bytes": strconv.FormatInt(mbe.Limit, 10)})
		return true
	case strings.Contains(err.Error(), "request body too large"):
		// multipart parsing may flatten the MaxBytesError into text
		writeError(w, http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge, "payload too large", nil)
		return true
	default:
		return false
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error", nil)
}
