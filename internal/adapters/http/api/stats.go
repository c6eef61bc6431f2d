// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
)

// StatsProvider exposes the service's runtime counters: queue depth,
// worker count, jobs processed, and so on.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves the operational snapshot at GET /stats.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler wires the stats endpoint to a provider.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats writes the current stats snapshot as JSON.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	stats := h.statsProvider.GetStats()
	_ = json.NewEncoder(w).Encode(stats)
}
