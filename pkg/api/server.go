// Package api exposes the analysis pipeline over HTTP JSON endpoints.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/modguard/modguard/pkg/observability/logging"
	"github.com/modguard/modguard/pkg/pii"
	"github.com/modguard/modguard/pkg/scoring"
	"github.com/modguard/modguard/pkg/services"
)

// AnalysisAPIServer holds the server state and dependencies.
type AnalysisAPIServer struct {
	analysisSvc *services.AnalysisService
}

// NewServer creates an API server over the given analysis service.
func NewServer(svc *services.AnalysisService) *AnalysisAPIServer {
	return &AnalysisAPIServer{analysisSvc: svc}
}

// ScoreRequest is a single-comment scoring request.
type ScoreRequest struct {
	Text string `json:"text"`
}

// RedactRequest is a single-comment redaction request.
type RedactRequest struct {
	Text string `json:"text"`
}

// RedactResponse is the redaction result.
type RedactResponse struct {
	Redacted string    `json:"redacted"`
	Hits     []pii.Hit `json:"hits"`
}

// BatchScoreRequest scores several comments in one call.
type BatchScoreRequest struct {
	Texts []string `json:"texts"`
}

// BatchScoreItem is one comment's result within a batch response. Error is
// set instead of Result when that comment's oracle invocation failed.
type BatchScoreItem struct {
	Index  int             `json:"index"`
	Result *scoring.Result `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// BatchScoreResponse is the ordered batch result.
type BatchScoreResponse struct {
	Results          []BatchScoreItem `json:"results"`
	TotalCount       int              `json:"total_count"`
	FailedCount      int              `json:"failed_count"`
	ProcessingTimeMs int64            `json:"processing_time_ms"`
}

// CapabilitiesResponse reports which optional stages are active.
type CapabilitiesResponse struct {
	SecondaryClassifier bool `json:"secondary_classifier"`
	PhoneValidation     bool `json:"phone_validation"`
}

// Start runs the API server on the given port. It blocks until the listener
// fails.
func (s *AnalysisAPIServer) Start(port int) error {
	mux := s.setupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	logging.Infof("Starting analysis API server on port %d", port)
	return server.ListenAndServe()
}

func (s *AnalysisAPIServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /info/capabilities", s.handleCapabilities)

	mux.HandleFunc("POST /api/v1/score", s.handleScore)
	mux.HandleFunc("POST /api/v1/score/batch", s.handleBatchScore)
	mux.HandleFunc("POST /api/v1/redact", s.handleRedact)
	mux.HandleFunc("POST /api/v1/analyze", s.handleAnalyze)

	return mux
}

func (s *AnalysisAPIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy", "service": "analysis-api"}`))
}

func (s *AnalysisAPIServer) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, http.StatusOK, CapabilitiesResponse{
		SecondaryClassifier: s.analysisSvc.SecondaryAvailable(),
		PhoneValidation:     s.analysisSvc.PhoneValidationAvailable(),
	})
}

func (s *AnalysisAPIServer) handleScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := s.parseJSONRequest(r, &req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	result, err := s.analysisSvc.ScoreComment(r.Context(), req.Text)
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "ORACLE_FAILURE", err.Error())
		return
	}

	s.writeJSONResponse(w, http.StatusOK, result)
}

func (s *AnalysisAPIServer) handleBatchScore(w http.ResponseWriter, r *http.Request) {
	var req BatchScoreRequest
	if err := s.parseJSONRequest(r, &req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	if len(req.Texts) == 0 {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_INPUT", "texts array cannot be empty")
		return
	}

	start := time.Now()
	batch := s.analysisSvc.ScoreBatch(r.Context(), req.Texts)

	response := BatchScoreResponse{
		Results:    make([]BatchScoreItem, len(batch)),
		TotalCount: len(batch),
	}
	for i, br := range batch {
		item := BatchScoreItem{Index: br.Index, Result: br.Result}
		if br.Err != nil {
			item.Error = br.Err.Error()
			response.FailedCount++
		}
		response.Results[i] = item
	}
	response.ProcessingTimeMs = time.Since(start).Milliseconds()

	s.writeJSONResponse(w, http.StatusOK, response)
}

func (s *AnalysisAPIServer) handleRedact(w http.ResponseWriter, r *http.Request) {
	var req RedactRequest
	if err := s.parseJSONRequest(r, &req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	redacted, hits := s.analysisSvc.RedactPII(req.Text)
	s.writeJSONResponse(w, http.StatusOK, RedactResponse{Redacted: redacted, Hits: hits})
}

func (s *AnalysisAPIServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := s.parseJSONRequest(r, &req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	result, err := s.analysisSvc.AnalyzeComment(r.Context(), req.Text)
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "ORACLE_FAILURE", err.Error())
		return
	}

	s.writeJSONResponse(w, http.StatusOK, result)
}

func (s *AnalysisAPIServer) parseJSONRequest(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if len(body) == 0 {
		return errors.New("request body is empty")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func (s *AnalysisAPIServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Errorf("Failed to encode JSON response: %v", err)
	}
}

func (s *AnalysisAPIServer) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) {
	errorResponse := map[string]interface{}{
		"error": map[string]interface{}{
			"code":      errorCode,
			"message":   message,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}

	s.writeJSONResponse(w, statusCode, errorResponse)
}
