package testclips

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/cadence/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "test_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the clip test tool.
func ShowHelp() {
	os.Stdout.WriteString(`Cadence Clip Test Tool
======================

A concurrent tool for exercising the Cadence speech analysis service with
synthetic WAV recordings.

Usage:
  go run cmd/test-clips/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -clips int
        Number of clips to generate and submit (default 100)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -poll duration
        Poll interval while waiting for async results (default 250ms)
  -wait duration
        Maximum wait per async result (default 30s)
  -output string
        Directory to save generated WAV files (default: not saved)
  -log string
        Log file for test output (default: test_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Test with default settings
  go run cmd/test-clips/main.go

  # Test with custom parameters
  go run cmd/test-clips/main.go -clips 500 -workers 16 -url http://localhost:8080

  # Save the generated audio for inspection
  go run cmd/test-clips/main.go -clips 20 -output ./clips -verbose
`)
}
