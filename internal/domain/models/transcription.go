package models

import (
	"strconv"
	"strings"
)

// Utterance is one speaker-attributed span of the transcript.
type Utterance struct {
	Speaker int     `json:"speaker"`
	Text    string  `json:"transcript"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// SentimentSegment is a provider-scored span of the transcript.
type SentimentSegment struct {
	Text           string  `json:"text"`
	Sentiment      string  `json:"sentiment"`
	SentimentScore float64 `json:"sentiment_score"`
}

// SentimentAverage is the provider's whole-recording sentiment.
type SentimentAverage struct {
	Sentiment      string  `json:"sentiment"`
	SentimentScore float64 `json:"sentiment_score"`
}

// Intent is one detected intent with its confidence.
type Intent struct {
	Intent          string  `json:"intent"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// IntentSegment pairs a transcript span with the intents detected in it.
type IntentSegment struct {
	Text    string   `json:"text"`
	Intents []Intent `json:"intents"`
}

// TranscriptionWarning is a provider-emitted processing warning.
type TranscriptionWarning struct {
	Parameter string `json:"parameter"`
	Type      string `json:"type"`
	Message   string `json:"message"`
}

// TranscriptionResult is the adapter's view of a provider response. Sentiment
// and intent fields are absent when the provider rejected the rich feature set
// and the minimal retry was used.
type TranscriptionResult struct {
	Transcript        string
	Utterances        []Utterance
	SentimentSegments []SentimentSegment
	SentimentAverage  *SentimentAverage
	IntentSegments    []IntentSegment
	Warnings          []TranscriptionWarning
	DetectedLanguage  string
}

// DiarizedTranscript renders the utterances as "Speaker N: text" lines.
// Returns the empty string when no utterances are present.
func (r *TranscriptionResult) DiarizedTranscript() string {
	if r == nil || len(r.Utterances) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, u := range r.Utterances {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("Speaker ")
		sb.WriteString(strconv.Itoa(u.Speaker))
		sb.WriteString(": ")
		sb.WriteString(u.Text)
	}
	return sb.String()
}
