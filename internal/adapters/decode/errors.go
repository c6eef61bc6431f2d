package decode

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidWAV = errors.New("invalid wav data")
	ErrEmptyAudio = errors.New("audio contains no samples")
)
