package repository

import "errors"

// Sentinel kinds for job store errors.
var (
	ErrNotFound    = errors.New("job not found")
	ErrDuplicateID = errors.New("job id already exists")
)
