package testclips

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Multipart form field names, matching the server's upload contract.
const (
	fieldAudio      = "audio"
	fieldTranscript = "transcript"
	fieldRequestID  = "request_id"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// PostClip performs a multipart POST carrying the clip's WAV, transcript and
// request id.
func (c *HTTPClient) PostClip(ctx context.Context, url string, clip Clip) (*http.Response, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile(fieldAudio, clip.ID+".wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create audio part: %w", err)
	}
	if _, err := part.Write(clip.WAV); err != nil {
		return nil, fmt.Errorf("failed to write audio part: %w", err)
	}
	if err := writer.WriteField(fieldTranscript, clip.Transcript); err != nil {
		return nil, fmt.Errorf("failed to write transcript field: %w", err)
	}
	if err := writer.WriteField(fieldRequestID, clip.ID); err != nil {
		return nil, fmt.Errorf("failed to write request id field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.client.Do(req)
}

// unmarshalJSON unmarshals JSON to a struct.
func unmarshalJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitClips submits clips concurrently using worker pools.
func submitClips(ctx context.Context, config *Config, clips []Clip, stats *Stats) error {
	log.Printf("📤 Submitting %d clips with %d workers...", len(clips), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/analyses"

	// Counters for statistics
	var (
		accepted  int64
		duplicate int64
		failed    int64
		submitted int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Create worker pool
	clipChan := make(chan Clip, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for clip := range clipChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleClip(ctx, client, url, clip)

					// Update counters
					atomic.AddInt64(&submitted, 1)
					switch result {
					case "accepted":
						atomic.AddInt64(&accepted, 1)
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}

					// Progress reporting
					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&submitted)
						acc := atomic.LoadInt64(&accepted)
						dup := atomic.LoadInt64(&duplicate)
						fail := atomic.LoadInt64(&failed)

						if config.Verbose {
							log.Printf("📊 Progress: %d/%d submitted (accepted: %d, duplicate: %d, failed: %d)",
								total, len(clips), acc, dup, fail)
						} else {
							fmt.Printf("\r📤 Submitted: %d/%d (accepted: %d, duplicate: %d, failed: %d)",
								total, len(clips), acc, dup, fail)
						}
					}
				}
			}
		}()
	}

	// Send clips to workers
	go func() {
		defer close(clipChan)
		for _, clip := range clips {
			select {
			case <-ctx.Done():
				return
			case clipChan <- clip:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Final progress report
	if !config.Verbose {
		fmt.Println() // New line after progress indicator
	}

	// Update stats
	stats.ClipsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.ClipsAccepted = int(atomic.LoadInt64(&accepted))
	stats.ClipsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.ClipsFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Clip submission completed:
   Accepted: %d
   Duplicate: %d
   Failed: %d
`, stats.ClipsAccepted, stats.ClipsDuplicate, stats.ClipsFailed)

	return nil
}

// submitSingleClip submits a single clip and returns the result.
func submitSingleClip(ctx context.Context, client *HTTPClient, url string, clip Clip) string {
	resp, err := client.PostClip(ctx, url, clip)
	if err != nil {
		return "failed"
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	switch resp.StatusCode {
	case StatusAccepted:
		var ack AckResponse
		if err := unmarshalJSON(body, &ack); err == nil && ack.Status == "accepted" {
			return "accepted"
		}
		return "accepted" // Assume accepted for 202 even if parsing fails
	case StatusOK:
		var ack AckResponse
		if err := unmarshalJSON(body, &ack); err == nil && ack.Duplicate {
			return "duplicate"
		}
		return "duplicate" // Assume duplicate for 200 even if parsing fails
	default:
		return "failed"
	}
}
