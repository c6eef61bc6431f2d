package config

import (
	"errors"
)

// Sentinel kinds wrapped by Load so callers can distinguish a config
// that failed validation from one that could not be read at all.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
