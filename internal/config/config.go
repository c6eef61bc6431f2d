// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory analysis job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the request-id deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// StoreCapacity bounds the number of job records kept in memory.
	StoreCapacity int `koanf:"store_capacity"`

	// MaxUploadBytes caps the size of multipart audio payloads.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// PitchMinHz and PitchMaxHz bound the pitch tracker's search range.
	PitchMinHz float64 `koanf:"pitch_min_hz"`
	PitchMaxHz float64 `koanf:"pitch_max_hz"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:       "info",
		Addr:           ":9080",
		QueueSize:      10_000,
		WorkerCount:    runtime.NumCPU() * 2,
		DedupeSize:     50_000,
		StoreCapacity:  100_000,
		MaxUploadBytes: 32 << 20,
		PitchMinHz:     50,
		PitchMaxHz:     400,
	}
	return c
}
