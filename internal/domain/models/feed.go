package models

import "time"

// Severity grades an insider log entry.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMed      Severity = "MED"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// InsiderLogEntry is one immutable event in the insider feed. Entries carry
// the optional transcript and summary fields so an analysis can be audited
// after the fact.
type InsiderLogEntry struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	Quote     string    `json:"quote,omitempty"`
	Severity  Severity  `json:"severity"`
	Time      string    `json:"time"`
	CreatedAt time.Time `json:"createdAt"`

	Headline          string            `json:"headline,omitempty"`
	Rationale         string            `json:"rationale,omitempty"`
	Confidence        int               `json:"confidence,omitempty"`
	RelationshipScore int               `json:"relationshipScore,omitempty"`
	Position          Position          `json:"position,omitempty"`
	State             RelationshipState `json:"state,omitempty"`
	MarketMovePercent float64           `json:"marketMovePercent,omitempty"`

	Transcript         string `json:"transcript,omitempty"`
	DiarizedTranscript string `json:"diarizedTranscript,omitempty"`
	SentimentSummary   string `json:"sentimentSummary,omitempty"`
	IntentSummary      string `json:"intentSummary,omitempty"`
	Warnings           string `json:"warnings,omitempty"`
}

// GlobalIndexPoint is one sample of the aggregate sentiment index.
// Timestamp is unix milliseconds; Time is the HH:MM display label.
type GlobalIndexPoint struct {
	Time      string  `json:"time"`
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"`
}
