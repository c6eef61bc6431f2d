package testclips

import "time"

// HTTP status code constants.
const (
	StatusOK       = 200
	StatusAccepted = 202
	StatusConflict = 409
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	DefaultPollInterval  = 250 * time.Millisecond
	DefaultPollTimeout   = 30 * time.Second
	PercentageMultiplier = 100
)
