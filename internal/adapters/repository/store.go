// Package repository defines the analysis job store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/okian/cadence/internal/domain/analysis"
	"github.com/okian/cadence/internal/domain/model"
)

// Record is one tracked job together with its result document once the
// analysis has finished.
type Record struct {
	Job         model.Job
	Status      model.Status
	Result      *analysis.Result // nil while pending
	CompletedAt time.Time        // zero while pending
}

// Store provides read/write access to job state.
type Store interface {
	// Create registers a pending job.
	// Returns ErrDuplicateID if the job ID is already tracked.
	Create(ctx context.Context, job model.Job) error

	// Complete attaches the finished result document to a job.
	// Returns ErrNotFound if the job is unknown.
	Complete(ctx context.Context, id string, result analysis.Result) error

	// Get returns the current record for a job.
	// Returns ErrNotFound if the job is unknown.
	Get(ctx context.Context, id string) (Record, error)

	// Delete removes a job record. Used to roll back a Create when the
	// job could not be enqueued. Unknown IDs are a no-op.
	Delete(ctx context.Context, id string)

	// Count returns the number of jobs tracked in the store.
	Count(ctx context.Context) int
}
