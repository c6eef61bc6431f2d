// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/cadence/internal/domain/model"
)

// AnalysesHandler handles asynchronous submission and result lookup.
type AnalysesHandler struct {
	deps     Dependencies
	maxBytes int64
}

// NewAnalysesHandler creates a new analyses handler.
func NewAnalysesHandler(deps Dependencies, maxBytes int64) *AnalysesHandler {
	return &AnalysesHandler{deps: deps, maxBytes: maxBytes}
}

// HandleSubmit handles POST /analyses requests. The optional request_id
// form value makes the submission idempotent: a repeated ID is acknowledged
// without queuing a second job.
func (h *AnalysesHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_analysis"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	upload, err := parseUpload(w, r, h.maxBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	id := upload.requestID
	if id == "" {
		id = uuid.NewString()
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), id) {
		writeJSON(w, http.StatusOK, ackResponse{ID: id, Status: "duplicate", Duplicate: true})
		return
	}

	job := model.Job{
		ID:          id,
		Clip:        upload.clip,
		Transcript:  upload.transcript,
		SubmittedAt: time.Now(),
	}
	if ok := h.deps.Submit(r.Context(), job); !ok {
		// Rollback the "seen" status since the submission failed
		h.deps.Unrecord(r.Context(), id)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{ID: id, Status: "accepted", Duplicate: false})
}

// HandleGetAnalysis handles GET /analyses/{id} requests.
func (h *AnalysesHandler) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /analyses/
	id := strings.TrimPrefix(r.URL.Path, "/analyses/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	record, err := h.deps.Job(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	writeJSON(w, http.StatusOK, jobResponse{
		ID:     record.Job.ID,
		Status: string(record.Status),
		Result: record.Result,
	})
}
