// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/cadence/internal/adapters/decode"
	"github.com/okian/cadence/internal/adapters/repository"
	"github.com/okian/cadence/internal/domain/analysis"
	"github.com/okian/cadence/internal/domain/audio"
	"github.com/okian/cadence/internal/domain/dedupe"
	"github.com/okian/cadence/internal/domain/model"
	"github.com/okian/cadence/pkg/metrics"
)

// Default upload limit for multipart audio payloads.
const defaultMaxUploadBytes = 32 << 20 // 32 MiB

// Multipart form field names.
const (
	fieldAudio      = "audio"
	fieldTranscript = "transcript"
	fieldRequestID  = "request_id"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Analyze runs the full analysis synchronously.
	Analyze(ctx context.Context, clip audio.Clip, transcript string) analysis.Result

	// Submit enqueues a job for async processing. Returns false on backpressure.
	Submit(ctx context.Context, job Job) bool

	// Job returns the stored record for a job id.
	Job(ctx context.Context, id string) (Record, error)
}

// Job and Record mirror the shapes used by the submission pipeline.
type (
	Job    = model.Job
	Record = repository.Record
)

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	analyzeHandler  *AnalyzeHandler
	analysesHandler *AnalysesHandler
	tipsHandler     *TipsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	cfg := serverConfig{maxUploadBytes: defaultMaxUploadBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		analyzeHandler:  NewAnalyzeHandler(deps, cfg.maxUploadBytes),
		analysesHandler: NewAnalysesHandler(deps, cfg.maxUploadBytes),
		tipsHandler:     NewTipsHandler(deps),
	}
}

// serverConfig carries server-level handler settings.
type serverConfig struct {
	maxUploadBytes int64
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*serverConfig)

// WithMaxUploadBytes caps the size of accepted multipart payloads.
func WithMaxUploadBytes(limit int64) ServerOption {
	return func(c *serverConfig) {
		if limit > 0 {
			c.maxUploadBytes = limit
		}
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux, deps Dependencies) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/analyze", MetricsMiddleware(s.analyzeHandler.HandleAnalyze, "analyze"))
	mux.HandleFunc("/analyses", MetricsMiddleware(s.analysesHandler.HandleSubmit, "analyses"))
	mux.HandleFunc("/analyses/", MetricsMiddleware(s.analysesHandler.HandleGetAnalysis, "analyses_get"))
	mux.HandleFunc("/tips/", MetricsMiddleware(s.tipsHandler.HandleGetTips, "tips"))
}

// analysisUpload is the parsed multipart payload for analyze/submit requests.
type analysisUpload struct {
	clip       audio.Clip
	transcript string
	requestID  string
}

// parseUpload reads the multipart form: a WAV file under "audio", plus
// optional "transcript" and "request_id" values. The reader is capped at
// maxBytes before any parsing happens.
func parseUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (analysisUpload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return analysisUpload{}, fmt.Errorf("parsing multipart form: %w", err)
	}

	file, _, err := r.FormFile(fieldAudio)
	if err != nil {
		return analysisUpload{}, fmt.Errorf("missing %q file field: %w", fieldAudio, err)
	}
	defer file.Close()

	clip, err := decode.WAV(file)
	if err != nil {
		metrics.RecordDecodeError()
		return analysisUpload{}, err
	}

	return analysisUpload{
		clip:       clip,
		transcript: strings.TrimSpace(r.FormValue(fieldTranscript)),
		requestID:  strings.TrimSpace(r.FormValue(fieldRequestID)),
	}, nil
}

type ackResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type jobResponse struct {
	ID     string           `json:"id"`
	Status string           `json:"status"`
	Result *analysis.Result `json:"result,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isDecodeFailure reports whether the upload was well-formed multipart but
// carried audio the decoder could not use.
func isDecodeFailure(err error) bool {
	return errors.Is(err, decode.ErrInvalidWAV) || errors.Is(err, decode.ErrEmptyAudio)
}

// isNotFound allows the API to translate upstream not-found errors to 404.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, repository.ErrNotFound) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}
