package testclips

import (
	"fmt"
	"log"
	"sort"
)

// Score bounds every assessment must respect.
const (
	minScore = 0.0
	maxScore = 100.0
)

// verifyResults checks that every analysis document is well formed and that
// scores stay inside the published range.
func verifyResults(config *Config, clips []Clip, results []JobResponse) error {
	log.Println("🔍 Verifying results...")

	if len(results) == 0 {
		return fmt.Errorf("no results to verify")
	}

	profileByID := make(map[string]string, len(clips))
	for _, clip := range clips {
		profileByID[clip.ID] = clip.Profile
	}

	violations := 0
	degraded := 0
	for _, job := range results {
		if job.Result == nil {
			violations++
			log.Printf("⚠️  Job %s reported complete without a result document", job.ID)
			continue
		}
		if job.Result.Error != "" {
			degraded++
			if config.Verbose {
				log.Printf("ℹ️  Job %s (%s) degraded: %s", job.ID, profileByID[job.ID], job.Result.Error)
			}
			continue
		}
		for name, score := range map[string]float64{
			"pronunciation": job.Result.Assessments.Pronunciation,
			"fluency":       job.Result.Assessments.Fluency,
			"voice_quality": job.Result.Assessments.VoiceQuality,
			"overall":       job.Result.Assessments.Overall,
		} {
			if score < minScore || score > maxScore {
				violations++
				log.Printf("⚠️  Job %s: %s score %.1f outside [0, 100]", job.ID, name, score)
			}
		}
		if job.Result.Assessments.Summary == "" {
			violations++
			log.Printf("⚠️  Job %s: missing summary", job.ID)
		}
	}

	displayScoreSpread(results, profileByID, config.Verbose)

	if degraded > 0 {
		log.Printf("ℹ️  %d analyses completed in degraded mode", degraded)
	}
	if violations > 0 {
		return fmt.Errorf("%d verification violations detected", violations)
	}

	log.Println("✅ Result verification completed")
	return nil
}

// displayScoreSpread summarizes overall scores and per-profile averages.
func displayScoreSpread(results []JobResponse, profileByID map[string]string, verbose bool) {
	scores := make([]float64, 0, len(results))
	profileSums := make(map[string]float64)
	profileCounts := make(map[string]int)

	for _, job := range results {
		if job.Result == nil || job.Result.Error != "" {
			continue
		}
		overall := job.Result.Assessments.Overall
		scores = append(scores, overall)

		profile := profileByID[job.ID]
		profileSums[profile] += overall
		profileCounts[profile]++
	}

	if len(scores) == 0 {
		return
	}

	sort.Float64s(scores)
	sum := 0.0
	for _, s := range scores {
		sum += s
	}

	log.Printf(`📊 Overall score spread:
   Average: %.1f
   Maximum: %.1f
   Minimum: %.1f
`, sum/float64(len(scores)), scores[len(scores)-1], scores[0])

	if verbose {
		profileNames := make([]string, 0, len(profileCounts))
		for name := range profileCounts {
			profileNames = append(profileNames, name)
		}
		sort.Strings(profileNames)

		log.Println("📊 Average overall score by profile:")
		for _, name := range profileNames {
			avg := profileSums[name] / float64(profileCounts[name])
			log.Printf("   %-12s %.1f (n=%d)", name, avg, profileCounts[name])
		}
	}
}
