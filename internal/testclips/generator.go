package testclips

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"github.com/okian/cadence/internal/domain/audio"
	"github.com/okian/cadence/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
)

// Synthesis constants.
const (
	clipSampleRate = 16000
	wordsPerSecond = 2.5 // ~150 WPM, inside the optimal speaking range
)

// Voice profiles with varied prosodic character, so the service sees the
// same spread of good and bad speakers a real deployment would.
var profiles = []string{
	"expressive",
	"monotone",
	"choppy",
	"fast",
	"slow",
	"quiet",
}

var transcriptWords = strings.Fields(
	"the quick brown fox jumps over the lazy dog while bright morning light " +
		"falls across the quiet valley and every bird begins to sing again")

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateClips creates the specified number of synthetic clips with unique
// request IDs.
func generateClips(ctx context.Context, config *Config, stats *Stats) ([]Clip, error) {
	logger.Get().Info(ctx, "generating synthetic clips", logger.Int("numClips", config.NumClips))

	clips := make([]Clip, config.NumClips)

	type clipResult struct {
		index int
		clip  Clip
		err   error
	}

	resultChan := make(chan clipResult, config.NumClips)

	// Use worker pool for clip synthesis
	workerCount := minInt(config.Workers, config.NumClips)
	clipsPerWorker := config.NumClips / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * clipsPerWorker
		end := start + clipsPerWorker
		if worker == workerCount-1 {
			end = config.NumClips // Last worker gets remaining clips
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- clipResult{index: i, err: ctx.Err()}
					return
				default:
					clip := generateSingleClip(i)
					resultChan <- clipResult{index: i, clip: clip, err: nil}
				}
			}
		}(start, end)
	}

	for i := 0; i < config.NumClips; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during clip generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate clip %d: %w", result.index, result.err)
			}
			clips[result.index] = result.clip
		}
	}

	stats.ClipsGenerated = len(clips)
	logger.Get().Info(ctx, "generated clips successfully", logger.Int("count", len(clips)))

	return clips, nil
}

// generateSingleClip synthesizes one clip from a randomly chosen profile.
func generateSingleClip(index int) Clip {
	randNum, _ := rand.Int(rand.Reader, big.NewInt(int64(len(profiles))))
	profile := profiles[randNum.Int64()]

	samples, words := synthesizeProfile(profile)
	duration := float64(len(samples)) / clipSampleRate

	return Clip{
		ID:         fmt.Sprintf("clip_%d_%s", index, uuid.New().String()),
		Profile:    profile,
		Transcript: buildTranscript(words),
		WAV:        EncodeWAV(samples, clipSampleRate),
		Duration:   duration,
	}
}

// synthesizeProfile builds the sample buffer for a profile and returns it
// with the number of transcript words that matches its speech density.
func synthesizeProfile(profile string) ([]float64, int) {
	// Small per-clip variation so no two clips are identical.
	pitch := 140 + getRandomFloat()*60 // 140-200 Hz, inside the optimal band
	seconds := 6 + getRandomFloat()*4  // 6-10 s

	switch profile {
	case "expressive":
		// Wide vibrato with phrase pauses reads as lively speech.
		voiced := audio.Vibrato(pitch, 50, 0.8, 0.6, seconds, clipSampleRate)
		samples := audio.Concat(
			voiced[:len(voiced)/2],
			audio.Silence(0.4, clipSampleRate),
			voiced[len(voiced)/2:],
		)
		return samples, int(seconds * wordsPerSecond)
	case "monotone":
		samples := audio.Sine(pitch, 0.5, seconds, clipSampleRate)
		return samples, int(seconds * wordsPerSecond)
	case "choppy":
		// Long gaps between phrases trigger the long-pause counters.
		phrase := seconds / 3
		voiced := func() []float64 {
			return audio.Vibrato(pitch, 30, 1.2, 0.5, phrase, clipSampleRate)
		}
		samples := audio.Concat(
			voiced(),
			audio.Silence(1.5, clipSampleRate),
			voiced(),
			audio.Silence(2.0, clipSampleRate),
			voiced(),
		)
		return samples, int(seconds * wordsPerSecond)
	case "fast":
		samples := audio.Vibrato(pitch, 35, 1.5, 0.55, seconds, clipSampleRate)
		return samples, int(seconds * wordsPerSecond * 2) // ~300 WPM
	case "slow":
		samples := audio.Vibrato(pitch, 35, 0.6, 0.55, seconds, clipSampleRate)
		return samples, int(seconds * wordsPerSecond / 3) // ~50 WPM
	case "quiet":
		// Amplitude modulation at low level stresses the volume checks.
		samples := audio.Modulated(pitch, 0.08, 2.0, 0.6, seconds, clipSampleRate)
		return samples, int(seconds * wordsPerSecond)
	default:
		samples := audio.Sine(pitch, 0.5, seconds, clipSampleRate)
		return samples, int(seconds * wordsPerSecond)
	}
}

// buildTranscript assembles a transcript with exactly n words.
func buildTranscript(n int) string {
	if n <= 0 {
		return ""
	}
	words := make([]string, n)
	for i := 0; i < n; i++ {
		words[i] = transcriptWords[i%len(transcriptWords)]
	}
	return strings.Join(words, " ")
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
