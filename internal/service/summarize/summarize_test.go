package summarize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"LovePulse/internal/domain/models"
)

func TestSentimentFallback(t *testing.T) {
	if got := Sentiment(nil); got != "No sentiment analysis available." {
		t.Errorf("nil result = %q", got)
	}
	if got := Sentiment(&models.TranscriptionResult{}); got != "No sentiment analysis available." {
		t.Errorf("empty result = %q", got)
	}
}

func TestSentimentIncludesAverageAndExamples(t *testing.T) {
	res := &models.TranscriptionResult{
		SentimentAverage: &models.SentimentAverage{Sentiment: "negative", SentimentScore: -0.35},
		SentimentSegments: []models.SentimentSegment{
			{Text: "you never listen", Sentiment: "negative", SentimentScore: -0.8},
			{Text: "fine whatever", Sentiment: "negative", SentimentScore: -0.5},
			{Text: "I do care", Sentiment: "positive", SentimentScore: 0.4},
			{Text: "a fourth segment that must not appear", Sentiment: "neutral", SentimentScore: 0},
		},
	}
	got := Sentiment(res)
	if !strings.Contains(got, "Overall sentiment: negative (score -0.35)") {
		t.Errorf("missing average: %q", got)
	}
	if !strings.Contains(got, `"you never listen" is negative (-0.80)`) {
		t.Errorf("missing example: %q", got)
	}
	if strings.Contains(got, "fourth segment") {
		t.Errorf("example cap not applied: %q", got)
	}
}

func TestSentimentClipsLongExamples(t *testing.T) {
	long := strings.Repeat("a", 200)
	res := &models.TranscriptionResult{
		SentimentSegments: []models.SentimentSegment{{Text: long, Sentiment: "neutral"}},
	}
	got := Sentiment(res)
	if strings.Contains(got, long) {
		t.Errorf("long example not clipped: %d chars", len(got))
	}
	if !strings.Contains(got, "...") {
		t.Errorf("clipped example missing ellipsis: %q", got)
	}
}

func TestSentimentClipKeepsValidUTF8(t *testing.T) {
	res := &models.TranscriptionResult{
		SentimentSegments: []models.SentimentSegment{
			{Text: strings.Repeat("愛", 200), Sentiment: "positive", SentimentScore: 0.9},
		},
	}
	got := Sentiment(res)
	if !utf8.ValidString(got) {
		t.Fatalf("clipped summary is invalid UTF-8: %q", got)
	}
	if n := strings.Count(got, "愛"); n != 80 {
		t.Errorf("clipped to %d runes, want 80", n)
	}
}

func TestIntentsRankedByCountThenConfidence(t *testing.T) {
	res := &models.TranscriptionResult{
		IntentSegments: []models.IntentSegment{
			{Intents: []models.Intent{{Intent: "Apologize", ConfidenceScore: 0.5}}},
			{Intents: []models.Intent{{Intent: "Apologize", ConfidenceScore: 0.9}, {Intent: "Blame partner", ConfidenceScore: 0.95}}},
			{Intents: []models.Intent{{Intent: "End conversation", ConfidenceScore: 0.7}}},
		},
	}
	got := Intents(res)
	if !strings.HasPrefix(got, "Detected intents: Apologize (x2, max 90%)") {
		t.Errorf("ranking wrong: %q", got)
	}
	// count ties broken by confidence
	iBlame := strings.Index(got, "Blame partner (x1, max 95%)")
	iEnd := strings.Index(got, "End conversation (x1, max 70%)")
	if iBlame < 0 || iEnd < 0 || iBlame > iEnd {
		t.Errorf("tie break wrong: %q", got)
	}
}

func TestIntentsIncludesExamplePairs(t *testing.T) {
	res := &models.TranscriptionResult{
		IntentSegments: []models.IntentSegment{
			{Text: "I'm sorry about last night", Intents: []models.Intent{
				{Intent: "Apologize", ConfidenceScore: 0.92},
				{Intent: "Deflect", ConfidenceScore: 0.3},
			}},
			{Text: "this is your fault", Intents: []models.Intent{{Intent: "Blame partner", ConfidenceScore: 0.8}}},
			{Text: "let's talk later", Intents: []models.Intent{{Intent: "End conversation", ConfidenceScore: 0.6}}},
			{Text: "a fourth example that must not appear", Intents: []models.Intent{{Intent: "Apologize", ConfidenceScore: 0.5}}},
		},
	}
	got := Intents(res)
	if !strings.Contains(got, `"I'm sorry about last night" reads as Apologize (92%)`) {
		t.Errorf("missing strongest-intent example: %q", got)
	}
	if !strings.Contains(got, `"this is your fault" reads as Blame partner (80%)`) {
		t.Errorf("missing second example: %q", got)
	}
	if strings.Contains(got, "fourth example") {
		t.Errorf("example cap not applied: %q", got)
	}
}

func TestIntentsTopFiveOnly(t *testing.T) {
	res := &models.TranscriptionResult{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		res.IntentSegments = append(res.IntentSegments, models.IntentSegment{
			Intents: []models.Intent{{Intent: name, ConfidenceScore: 0.5}},
		})
	}
	got := Intents(res)
	if n := strings.Count(got, "(x"); n != 5 {
		t.Errorf("intent cap = %d entries, want 5: %q", n, got)
	}
}

func TestIntentsFallback(t *testing.T) {
	if got := Intents(&models.TranscriptionResult{}); got != "No intent analysis available." {
		t.Errorf("empty = %q", got)
	}
	res := &models.TranscriptionResult{IntentSegments: []models.IntentSegment{{Text: "x"}}}
	if got := Intents(res); got != "No intent analysis available." {
		t.Errorf("segments without intents = %q", got)
	}
}

func TestWarnings(t *testing.T) {
	if got := Warnings(&models.TranscriptionResult{}); got != "" {
		t.Errorf("empty warnings = %q", got)
	}

	res := &models.TranscriptionResult{
		Warnings: []models.TranscriptionWarning{
			{Parameter: "intents", Message: "not supported for language"},
			{Type: "fallback_type", Message: "no parameter present"},
		},
	}
	got := Warnings(res)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d: %q", len(lines), got)
	}
	if lines[0] != "[intents] not supported for language" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "[fallback_type] no parameter present" {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestWarningsCap(t *testing.T) {
	res := &models.TranscriptionResult{}
	for i := 0; i < 9; i++ {
		res.Warnings = append(res.Warnings, models.TranscriptionWarning{Parameter: "p", Message: "m"})
	}
	got := Warnings(res)
	if n := len(strings.Split(got, "\n")); n != 5 {
		t.Errorf("warning cap = %d, want 5", n)
	}
}
