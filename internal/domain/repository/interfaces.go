package repository

import (
	"context"

	"LovePulse/internal/domain/models"
)

// Transcriber sends raw audio to the speech-intelligence provider.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string) (*models.TranscriptionResult, error)
}

// Classifier turns transcription evidence into a schema-valid analysis.
// Implementations must never return a partially valid analysis: every field
// of a non-nil result is inside its declared range.
type Classifier interface {
	Classify(ctx context.Context, in ClassifyInput) (*models.RelationshipAnalysis, error)
}

// PulseGenerator produces a synthetic market event for a symbol with no
// fresh recording. Same credential policy as Classifier.
type PulseGenerator interface {
	GeneratePulse(ctx context.Context, symbol, names string, price float64) (*models.PulseUpdate, error)
}

// ClassifyInput is the evidence bundle handed to the classifier.
type ClassifyInput struct {
	Symbol             string
	Names              string
	RawTranscript      string
	DiarizedTranscript string
	SentimentSummary   string
	IntentSummary      string
	WarningsSummary    string
}

// Markets is the KV-backed store of asset records and the feed state that
// hangs off them.
type Markets interface {
	GetAll(ctx context.Context) ([]models.AssetRecord, error)
	Get(ctx context.Context, symbol string) (*models.AssetRecord, error)
	Set(ctx context.Context, rec *models.AssetRecord) error
	SeedDefaults(ctx context.Context, assets []models.AssetRecord) (int, error)

	// RepairAll rewrites every asset whose prop bet list is missing or empty
	// and reports how many were repaired.
	RepairAll(ctx context.Context) (int, error)

	InsiderLogs(ctx context.Context) ([]models.InsiderLogEntry, error)
	AppendInsiderLog(ctx context.Context, entry *models.InsiderLogEntry) error
	MarketUpdates(ctx context.Context, symbol string) ([]models.InsiderLogEntry, error)
	AppendMarketUpdate(ctx context.Context, entry *models.InsiderLogEntry) error

	IndexHistory(ctx context.Context) ([]models.GlobalIndexPoint, error)
	SetIndexHistory(ctx context.Context, points []models.GlobalIndexPoint) error

	// LockSymbol serializes read-modify-write sequences for one symbol.
	// The returned release func must be called once the update is persisted.
	LockSymbol(ctx context.Context, symbol string) (func(), error)
}

// FeedPublisher pushes new insider log entries to downstream consumers
// (message broker, live sockets). Best effort: failures are logged, never
// fail the request.
type FeedPublisher interface {
	Publish(ctx context.Context, entry *models.InsiderLogEntry) error
}

// AuditRecord is one archived analysis for offline review.
type AuditRecord struct {
	Symbol             string
	Transcript         string
	DiarizedTranscript string
	State              models.RelationshipState
	Position           models.Position
	MovePercent        float64
	Confidence         int
	Degraded           bool
}

// AuditStore archives analyses. Best effort, same contract as FeedPublisher.
type AuditStore interface {
	Record(ctx context.Context, rec *AuditRecord) error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordAnalysis(outcome string)
	RecordProviderLatency(provider string, seconds float64)
	RecordAssetPrice(symbol string, price float64)
	RecordIndexValue(value float64)
}
