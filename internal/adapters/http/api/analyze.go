// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/okian/cadence/internal/domain/analysis"
)

// AnalyzeHandler handles synchronous analysis requests.
type AnalyzeHandler struct {
	deps     Dependencies
	maxBytes int64
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(deps Dependencies, maxBytes int64) *AnalyzeHandler {
	return &AnalyzeHandler{deps: deps, maxBytes: maxBytes}
}

// HandleAnalyze handles POST /analyze requests: a multipart WAV upload is
// decoded and analyzed inline, returning the full result document.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	upload, err := parseUpload(w, r, h.maxBytes)
	if err != nil {
		// Undecodable audio still yields a complete document: every block
		// error-flagged and every score zero. Only a malformed request
		// itself is a client error.
		if isDecodeFailure(err) {
			writeJSON(w, http.StatusOK, analysis.Fallback(err.Error()))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	result := h.deps.Analyze(r.Context(), upload.clip, upload.transcript)
	writeJSON(w, http.StatusOK, result)
}
