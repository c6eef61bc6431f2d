package metrics

import (
	"errors"
)

// ErrObserveFailed is the error kind for failed metric observations.
// Registration itself panics via promauto, so this covers the softer
// record-time failures callers may want to errors.Is against.
var (
	ErrObserveFailed = errors.New("metrics observe failed")
)
