package summarize

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"LovePulse/internal/domain/models"
)

const (
	maxSentimentExamples = 3
	maxIntents           = 5
	maxIntentExamples    = 3
	maxWarnings          = 5
	exampleLen           = 80
)

// Sentiment condenses provider sentiment output into one prompt-sized line:
// the whole-recording average plus a few scored example spans. Returns a
// descriptive fallback when the provider produced no sentiment data.
func Sentiment(res *models.TranscriptionResult) string {
	if res == nil || (res.SentimentAverage == nil && len(res.SentimentSegments) == 0) {
		return "No sentiment analysis available."
	}

	var sb strings.Builder
	if avg := res.SentimentAverage; avg != nil {
		fmt.Fprintf(&sb, "Overall sentiment: %s (score %.2f).", avg.Sentiment, avg.SentimentScore)
	}

	n := len(res.SentimentSegments)
	if n > maxSentimentExamples {
		n = maxSentimentExamples
	}
	for i := 0; i < n; i++ {
		seg := res.SentimentSegments[i]
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%q is %s (%.2f).", clip(seg.Text), seg.Sentiment, seg.SentimentScore)
	}
	return sb.String()
}

// Intents ranks detected intents by how often they appear, breaking ties by
// peak confidence, and reports the top few plus a handful of example
// segment/intent pairs. Returns a descriptive fallback when the provider
// produced no intent data.
func Intents(res *models.TranscriptionResult) string {
	if res == nil || len(res.IntentSegments) == 0 {
		return "No intent analysis available."
	}

	type ranked struct {
		intent     string
		count      int
		confidence float64
	}
	byIntent := map[string]*ranked{}
	for _, seg := range res.IntentSegments {
		for _, in := range seg.Intents {
			r, ok := byIntent[in.Intent]
			if !ok {
				r = &ranked{intent: in.Intent}
				byIntent[in.Intent] = r
			}
			r.count++
			if in.ConfidenceScore > r.confidence {
				r.confidence = in.ConfidenceScore
			}
		}
	}
	if len(byIntent) == 0 {
		return "No intent analysis available."
	}

	all := make([]*ranked, 0, len(byIntent))
	for _, r := range byIntent {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		if all[i].confidence != all[j].confidence {
			return all[i].confidence > all[j].confidence
		}
		return all[i].intent < all[j].intent
	})
	if len(all) > maxIntents {
		all = all[:maxIntents]
	}

	parts := make([]string, 0, len(all))
	for _, r := range all {
		parts = append(parts, fmt.Sprintf("%s (x%d, max %s)", r.intent, r.count, percent(r.confidence)))
	}
	out := "Detected intents: " + strings.Join(parts, "; ") + "."

	if ex := intentExamples(res.IntentSegments); len(ex) > 0 {
		out += " Examples: " + strings.Join(ex, "; ") + "."
	}
	return out
}

// intentExamples pairs up to a few transcript spans with the strongest intent
// detected in each.
func intentExamples(segs []models.IntentSegment) []string {
	ex := make([]string, 0, maxIntentExamples)
	for _, seg := range segs {
		if len(ex) == maxIntentExamples {
			break
		}
		if strings.TrimSpace(seg.Text) == "" || len(seg.Intents) == 0 {
			continue
		}
		best := seg.Intents[0]
		for _, in := range seg.Intents[1:] {
			if in.ConfidenceScore > best.ConfidenceScore {
				best = in
			}
		}
		ex = append(ex, fmt.Sprintf("%q reads as %s (%s)", clip(seg.Text), best.Intent, percent(best.ConfidenceScore)))
	}
	return ex
}

func percent(score float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(score*100)))
}

// Warnings renders provider processing warnings as "[parameter] message"
// lines, capped. Empty string when there were none.
func Warnings(res *models.TranscriptionResult) string {
	if res == nil || len(res.Warnings) == 0 {
		return ""
	}
	ws := res.Warnings
	if len(ws) > maxWarnings {
		ws = ws[:maxWarnings]
	}
	parts := make([]string, 0, len(ws))
	for _, w := range ws {
		p := w.Parameter
		if p == "" {
			p = w.Type
		}
		parts = append(parts, fmt.Sprintf("[%s] %s", p, w.Message))
	}
	return strings.Join(parts, "\n")
}

// clip shortens a span to exampleLen runes, never splitting a multi-byte
// character.
func clip(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= exampleLen {
		return s
	}
	return string([]rune(s)[:exampleLen]) + "..."
}
