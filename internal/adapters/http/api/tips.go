// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"

	"github.com/okian/cadence/internal/domain/analysis"
	"github.com/okian/cadence/internal/domain/model"
)

// Categories scoring at or above this contribute no tips; the learner is
// doing fine there.
const tipScoreCutoff = 85.0

// TipsHandler serves the student-friendly view of a completed analysis.
type TipsHandler struct {
	deps Dependencies
}

// NewTipsHandler creates a new tips handler.
func NewTipsHandler(deps Dependencies) *TipsHandler {
	return &TipsHandler{deps: deps}
}

type tipsResponse struct {
	ID           string   `json:"id"`
	OverallScore float64  `json:"overall_score"`
	Summary      string   `json:"summary"`
	Tips         []string `json:"tips"`
}

// HandleGetTips handles GET /tips/{id} requests. Tips exist only once the
// analysis has completed; a pending job yields 409.
func (h *TipsHandler) HandleGetTips(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_tips"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/tips/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
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
	if record.Status != model.StatusCompleted || record.Result == nil {
		writeError(w, http.StatusConflict, "pending", NewKind(op, ErrPending))
		return
	}

	res := record.Result
	writeJSON(w, http.StatusOK, tipsResponse{
		ID:           id,
		OverallScore: res.Assessment.OverallAudioScore,
		Summary:      res.Assessment.Summary,
		Tips:         deriveTips(res),
	})
}

// deriveTips splits each weak category's feedback into individual tips.
// Categories already at a strong score are skipped so the list stays
// actionable.
func deriveTips(res *analysis.Result) []string {
	var tips []string
	appendWeak := func(score float64, feedback string) {
		if score >= tipScoreCutoff || feedback == "" {
			return
		}
		tips = append(tips, strings.Split(feedback, ". ")...)
	}

	appendWeak(res.Assessment.PronunciationScore, res.Pronunciation.Feedback)
	appendWeak(res.Assessment.FluencyScore, res.Fluency.Feedback)
	appendWeak(res.Assessment.VoiceQualityScore, res.VoiceQuality.Feedback)

	if len(tips) == 0 {
		tips = append(tips, res.Assessment.Summary)
	}
	return tips
}
