package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/cadence/internal/testclips"
)

// Default configuration constants.
const (
	defaultNumClips    = 100
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numClips     = flag.Int("clips", defaultNumClips, "Number of clips to generate and submit")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		pollInterval = flag.Duration("poll", testclips.DefaultPollInterval, "Poll interval while waiting for results")
		pollTimeout  = flag.Duration("wait", testclips.DefaultPollTimeout, "Maximum wait per async result")
		outputDir    = flag.String("output", "", "Directory to save generated WAV files (default: not saved)")
		logFile      = flag.String("log", "", "Log file for test output (default: test_log_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testclips.ShowHelp()
		return
	}

	// Setup logging
	if err := testclips.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	// Create test configuration
	config := &testclips.Config{
		BaseURL:      *baseURL,
		NumClips:     *numClips,
		Workers:      *workers,
		Timeout:      *timeout,
		PollInterval: *pollInterval,
		PollTimeout:  *pollTimeout,
		OutputDir:    *outputDir,
		LogFile:      *logFile,
		Verbose:      *verbose,
	}

	// Run the test
	if err := testclips.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		return
	}
}
