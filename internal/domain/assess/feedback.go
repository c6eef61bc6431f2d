package assess

import (
	"fmt"
	"strings"
)

// Optimal band bounds used only to phrase feedback; the detection packages
// own the canonical thresholds.
const (
	optimalPitchRangeLowHz = 85.0
	optimalSpeakingRateLow = 120.0
	feedbackSeparator      = ". "
)

// Overall summary score bands.
const (
	excellentBand = 85.0
	goodBand      = 70.0
	fairBand      = 55.0
)

// PitchFeedback phrases the pronunciation findings for the learner.
func PitchFeedback(rangeHz float64, optimalRange, monotonous bool) string {
	var parts []string
	if optimalRange {
		parts = append(parts, "Good pitch variation showing expressiveness")
	} else if rangeHz < optimalPitchRangeLowHz {
		parts = append(parts, "Try to vary your pitch more for better expressiveness")
	} else {
		parts = append(parts, "Pitch variation is too extreme, try to moderate it")
	}
	if monotonous {
		parts = append(parts, "Speech sounds monotonous - add more emotion and emphasis")
	}
	if len(parts) == 0 {
		return "Pitch characteristics are good"
	}
	return strings.Join(parts, feedbackSeparator)
}

// FluencyFeedback phrases the pacing and pausing findings. A nil wpm or
// optimalRate means no transcript was available to judge the pace.
func FluencyFeedback(wpm *float64, longPauses int, optimalRate *bool) string {
	var parts []string
	if wpm != nil && optimalRate != nil {
		switch {
		case *optimalRate:
			parts = append(parts, fmt.Sprintf("Good speaking pace at %.0f words per minute", *wpm))
		case *wpm < optimalSpeakingRateLow:
			parts = append(parts, fmt.Sprintf("Speaking too slowly (%.0f WPM) - try to speak more naturally", *wpm))
		default:
			parts = append(parts, fmt.Sprintf("Speaking too fast (%.0f WPM) - slow down for clarity", *wpm))
		}
	}
	if longPauses > 0 {
		parts = append(parts, fmt.Sprintf("Detected %d long pause(s) - try to maintain flow", longPauses))
	}
	if len(parts) == 0 {
		return "Fluency is good"
	}
	return strings.Join(parts, feedbackSeparator)
}

// VoiceFeedback phrases the voice-quality findings.
func VoiceFeedback(jitterNormal, shimmerNormal, hnrGood bool) string {
	var parts []string
	if !jitterNormal {
		parts = append(parts, "Voice stability could be improved - try to maintain steady tone")
	}
	if !shimmerNormal {
		parts = append(parts, "Volume consistency needs work - maintain steady volume")
	}
	if !hnrGood {
		parts = append(parts, "Voice clarity could be better - speak more clearly")
	}
	if len(parts) == 0 {
		parts = append(parts, "Excellent voice quality with good clarity and stability")
	}
	return strings.Join(parts, feedbackSeparator)
}

// Summary maps the mean category score onto one of four encouragement bands.
func Summary(scores Scores) string {
	switch {
	case scores.Overall >= excellentBand:
		return "Excellent overall speech quality! Keep up the great work."
	case scores.Overall >= goodBand:
		return "Good speech quality with room for improvement in specific areas."
	case scores.Overall >= fairBand:
		return "Fair speech quality - focus on the areas highlighted for improvement."
	default:
		return "Needs significant improvement - practice regularly and focus on feedback."
	}
}
