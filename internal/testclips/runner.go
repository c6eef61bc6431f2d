package testclips

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/cadence/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	wavFilePermission   = 0600
)

// Run executes the complete clip test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting cadence clip test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("clips", config.NumClips),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("pollTimeout", config.PollTimeout.String()),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate synthetic clips
	clips, err := generateClips(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("clip generation failed: %w", err)
	}

	// Step 3: Submit clips concurrently
	if err := submitClips(ctx, config, clips, stats); err != nil {
		return fmt.Errorf("clip submission failed: %w", err)
	}

	// Step 4: Poll for analysis results
	results, err := retrieveResults(ctx, config, clips, stats)
	if err != nil {
		return fmt.Errorf("result retrieval failed: %w", err)
	}

	// Step 5: Fetch tips for completed analyses
	if _, err := retrieveTips(ctx, config, results, stats); err != nil {
		logger.Get().Warn(ctx, "tips retrieval incomplete", logger.Error(err))
	}

	// Step 6: Verify results
	if err := verifyResults(config, clips, results); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 7: Save clips to disk if requested
	if config.OutputDir != "" {
		if err := saveClipsToDir(ctx, config, clips); err != nil {
			logger.Get().Warn(ctx, "failed to save clips", logger.Error(err))
		}
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveClipsToDir writes the generated WAV files into the output directory.
func saveClipsToDir(ctx context.Context, config *Config, clips []Clip) error {
	if len(clips) == 0 {
		return fmt.Errorf("no clips to save")
	}

	if err := os.MkdirAll(config.OutputDir, directoryPermission); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	for i, clip := range clips {
		name := fmt.Sprintf("%s_%s.wav", clip.Profile, clip.ID)
		path := filepath.Join(config.OutputDir, name)
		if err := os.WriteFile(path, clip.WAV, wavFilePermission); err != nil {
			return fmt.Errorf("failed to write clip %d: %w", i, err)
		}
	}

	logger.Get().Info(ctx, "clips saved",
		logger.String("dir", config.OutputDir),
		logger.Int("count", len(clips)))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var acceptRate, clipsPerSecond float64

	if stats.ClipsSubmitted > 0 {
		acceptRate = float64(stats.ClipsAccepted) / float64(stats.ClipsSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		clipsPerSecond = float64(stats.ClipsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("clipsGenerated", stats.ClipsGenerated),
		logger.Int("clipsSubmitted", stats.ClipsSubmitted),
		logger.Int("clipsAccepted", stats.ClipsAccepted),
		logger.Int("clipsDuplicate", stats.ClipsDuplicate),
		logger.Int("clipsFailed", stats.ClipsFailed),
		logger.Int("resultsRetrieved", stats.ResultsRetrieved),
		logger.Int("resultsTimedOut", stats.ResultsTimedOut),
		logger.Int("tipsRetrieved", stats.TipsRetrieved),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("clipsPerSecond", clipsPerSecond))
}
