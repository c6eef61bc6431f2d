// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/cadence/internal/domain/audio"
)

// Job represents one accepted analysis request flowing from the HTTP layer
// through the queue to a worker.
type Job struct {
	ID          string     // unique id for idempotency and result lookup
	Clip        audio.Clip // decoded, normalized mono audio
	Transcript  string     // optional transcript for speaking-rate metrics
	SubmittedAt time.Time  // when the request was accepted
}

// Status describes where a job is in its lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)
