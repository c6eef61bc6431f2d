package testclips

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// retrieveResults polls the service for every submitted clip's analysis
// result concurrently.
func retrieveResults(ctx context.Context, config *Config, clips []Clip, stats *Stats) ([]JobResponse, error) {
	log.Printf("🔎 Retrieving results for %d clips with %d workers...", len(clips), config.Workers)

	client := newHTTPClient(config.Timeout)

	// Results storage
	results := make([]JobResponse, len(clips))
	var (
		retrieved int64
		timedOut  int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Create worker pool
	clipChan := make(chan int, config.Workers*WorkerChannelMultiplier) // Send indices
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for index := range clipChan {
				select {
				case <-ctx.Done():
					return
				default:
					clip := clips[index]
					job, err := pollSingleResult(ctx, client, config, clip.ID)

					if err != nil {
						atomic.AddInt64(&timedOut, 1)
						if config.Verbose {
							log.Printf("⚠️  Failed to get result for %s: %v", clip.ID, err)
						}
					} else {
						results[index] = job
						atomic.AddInt64(&retrieved, 1)
					}

					// Progress reporting
					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&retrieved) + atomic.LoadInt64(&timedOut)
						ret := atomic.LoadInt64(&retrieved)
						miss := atomic.LoadInt64(&timedOut)

						log.Printf("🔎 Results: %d/%d retrieved (success: %d, missing: %d)",
							total, len(clips), ret, miss)
					}
				}
			}
		}()
	}

	// Send clip indices to workers
	go func() {
		defer close(clipChan)
		for i := range clips {
			select {
			case <-ctx.Done():
				return
			case clipChan <- i:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Filter out empty entries (failed retrievals)
	validResults := make([]JobResponse, 0, len(results))
	for _, job := range results {
		if job.ID != "" { // Empty ID indicates failed retrieval
			validResults = append(validResults, job)
		}
	}

	// Update stats
	stats.ResultsRetrieved = len(validResults)
	stats.ResultsTimedOut = int(atomic.LoadInt64(&timedOut))

	log.Printf(`✅ Result retrieval completed:
   Retrieved: %d
   Timed out: %d
`, len(validResults), stats.ResultsTimedOut)

	return validResults, nil
}

// pollSingleResult polls one analysis job until it completes or the poll
// timeout elapses.
func pollSingleResult(ctx context.Context, client *HTTPClient, config *Config, id string) (JobResponse, error) {
	url := fmt.Sprintf("%s/analyses/%s", config.BaseURL, id)
	deadline := time.Now().Add(config.PollTimeout)

	for {
		job, done, err := fetchJob(ctx, client, url)
		if err != nil {
			return JobResponse{}, err
		}
		if done {
			return job, nil
		}

		if time.Now().After(deadline) {
			return JobResponse{}, fmt.Errorf("result not ready after %s", config.PollTimeout)
		}

		select {
		case <-ctx.Done():
			return JobResponse{}, ctx.Err()
		case <-time.After(config.PollInterval):
		}
	}
}

// fetchJob performs one poll. done is true once the job carries a result.
func fetchJob(ctx context.Context, client *HTTPClient, url string) (JobResponse, bool, error) {
	resp, err := client.Get(ctx, url)
	if err != nil {
		return JobResponse{}, false, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return JobResponse{}, false, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return JobResponse{}, false, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var job JobResponse
	if err := unmarshalJSON(body, &job); err != nil {
		return JobResponse{}, false, fmt.Errorf("failed to parse response: %w", err)
	}

	return job, job.Result != nil, nil
}

// retrieveTips fetches improvement tips for a sample of completed jobs.
func retrieveTips(ctx context.Context, config *Config, results []JobResponse, stats *Stats) ([]TipsResponse, error) {
	log.Printf("💡 Getting tips for %d completed analyses...", len(results))

	client := newHTTPClient(config.Timeout)
	tips := make([]TipsResponse, 0, len(results))

	for _, job := range results {
		select {
		case <-ctx.Done():
			return tips, ctx.Err()
		default:
		}

		url := fmt.Sprintf("%s/tips/%s", config.BaseURL, job.ID)
		resp, err := client.Get(ctx, url)
		if err != nil {
			if config.Verbose {
				log.Printf("⚠️  Failed to get tips for %s: %v", job.ID, err)
			}
			continue
		}

		body, err := readResponseBody(resp)
		if err != nil || resp.StatusCode != StatusOK {
			if config.Verbose {
				log.Printf("⚠️  Tips unavailable for %s (HTTP %d)", job.ID, resp.StatusCode)
			}
			continue
		}

		var t TipsResponse
		if err := unmarshalJSON(body, &t); err != nil {
			continue
		}
		tips = append(tips, t)
	}

	stats.TipsRetrieved = len(tips)
	log.Printf("✅ Retrieved tips for %d analyses", len(tips))

	return tips, nil
}
