package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"LovePulse/internal/domain/models"
	drepo "LovePulse/internal/domain/repository"
	"LovePulse/internal/service/summarize"
	applogger "LovePulse/pkg/logger"
)

const (
	sourceVoiceWiretap = "VOICE_WIRETAP"
	sourceMockNode     = "MOCK_NODE"

	maxQuoteLen = 140
)

// AnalyzeRecording runs the full pipeline for one uploaded recording:
// transcription, summarization, classification, price update, index recompute
// and the feed entry handed back to the caller. Publish and audit failures
// are logged, never surfaced.
type AnalyzeRecording struct {
	transcriber drepo.Transcriber
	classifier  drepo.Classifier
	updater     *MarketUpdater
	index       *IndexCalculator
	markets     drepo.Markets
	feed        drepo.FeedPublisher
	audit       drepo.AuditStore
	metrics     drepo.Metrics
	logger      *applogger.Logger
}

// NewAnalyzeRecording wires the pipeline.
func NewAnalyzeRecording(
	transcriber drepo.Transcriber,
	classifier drepo.Classifier,
	updater *MarketUpdater,
	index *IndexCalculator,
	markets drepo.Markets,
	feed drepo.FeedPublisher,
	audit drepo.AuditStore,
	metrics drepo.Metrics,
	logger *applogger.Logger,
) *AnalyzeRecording {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &AnalyzeRecording{
		transcriber: transcriber,
		classifier:  classifier,
		updater:     updater,
		index:       index,
		markets:     markets,
		feed:        feed,
		audit:       audit,
		metrics:     metrics,
		logger:      logger,
	}
}

// Execute analyzes one recording for symbol and returns the post-update
// market snapshot plus the new feed entry.
func (a *AnalyzeRecording) Execute(ctx context.Context, symbol string, audio []byte, contentType string) (*models.AssetSnapshot, *models.InsiderLogEntry, error) {
	start := time.Now()
	tres, err := a.transcriber.Transcribe(ctx, audio, contentType)
	a.metrics.RecordProviderLatency("deepgram", time.Since(start).Seconds())
	if err != nil {
		a.metrics.RecordAnalysis("transcription_error")
		return nil, nil, err
	}

	names := symbol
	if rec, err := a.markets.Get(ctx, symbol); err == nil && rec.Names != "" {
		names = rec.Names
	} else if err != nil && !errors.Is(err, models.ErrAssetNotFound) {
		return nil, nil, err
	}

	in := drepo.ClassifyInput{
		Symbol:             symbol,
		Names:              names,
		RawTranscript:      tres.Transcript,
		DiarizedTranscript: tres.DiarizedTranscript(),
		SentimentSummary:   summarize.Sentiment(tres),
		IntentSummary:      summarize.Intents(tres),
		WarningsSummary:    summarize.Warnings(tres),
	}

	start = time.Now()
	analysis, err := a.classifier.Classify(ctx, in)
	a.metrics.RecordProviderLatency("anthropic", time.Since(start).Seconds())
	if err != nil {
		a.metrics.RecordAnalysis("classification_error")
		return nil, nil, err
	}

	snap, err := a.updater.ApplyUpdate(ctx, symbol, names, analysis.MarketMovePercent, analysis.Confidence)
	if err != nil {
		a.metrics.RecordAnalysis("update_error")
		return nil, nil, err
	}

	if err := a.index.Recompute(ctx); err != nil {
		a.logger.Warn("index recompute failed after update", applogger.Error(err))
	}

	entry := a.buildEntry(symbol, tres, in, analysis, snap)
	if err := a.markets.AppendMarketUpdate(ctx, entry); err != nil {
		return nil, nil, err
	}
	if err := a.markets.AppendInsiderLog(ctx, entry); err != nil {
		return nil, nil, err
	}

	if err := a.feed.Publish(ctx, entry); err != nil {
		a.logger.Warn("feed publish failed", applogger.String("symbol", symbol), applogger.Error(err))
	}
	if err := a.audit.Record(ctx, &drepo.AuditRecord{
		Symbol:             symbol,
		Transcript:         tres.Transcript,
		DiarizedTranscript: in.DiarizedTranscript,
		State:              analysis.State,
		Position:           analysis.Position,
		MovePercent:        analysis.MarketMovePercent,
		Confidence:         analysis.Confidence,
		Degraded:           analysis.Degraded,
	}); err != nil {
		a.logger.Warn("audit record failed", applogger.String("symbol", symbol), applogger.Error(err))
	}

	if analysis.Degraded {
		a.metrics.RecordAnalysis("degraded")
	} else {
		a.metrics.RecordAnalysis("ok")
	}
	return snap, entry, nil
}

func (a *AnalyzeRecording) buildEntry(symbol string, tres *models.TranscriptionResult, in drepo.ClassifyInput, analysis *models.RelationshipAnalysis, snap *models.AssetSnapshot) *models.InsiderLogEntry {
	source := sourceVoiceWiretap
	if analysis.Degraded {
		source = sourceMockNode
	}

	quote := ""
	if len(tres.Utterances) > 0 {
		quote = tres.Utterances[0].Text
	} else if tres.Transcript != "" {
		quote = tres.Transcript
	}
	if utf8.RuneCountInString(quote) > maxQuoteLen {
		quote = string([]rune(quote)[:maxQuoteLen])
	}

	return &models.InsiderLogEntry{
		ID:        fmt.Sprintf("rec_%d", time.Now().UnixMilli()),
		Symbol:    symbol,
		Source:    source,
		Message:   analysis.MarketUpdateText,
		Quote:     quote,
		Severity:  severityForMove(snap.Change),
		Time:      "JUST_NOW",
		CreatedAt: time.Now().UTC(),

		Headline:          analysis.Headline,
		Rationale:         analysis.Rationale,
		Confidence:        analysis.Confidence,
		RelationshipScore: analysis.RelationshipScore,
		Position:          analysis.Position,
		State:             analysis.State,
		MarketMovePercent: analysis.MarketMovePercent,

		Transcript:         tres.Transcript,
		DiarizedTranscript: in.DiarizedTranscript,
		SentimentSummary:   in.SentimentSummary,
		IntentSummary:      in.IntentSummary,
		Warnings:           in.WarningsSummary,
	}
}

func severityForMove(adjusted float64) models.Severity {
	m := math.Abs(adjusted)
	switch {
	case m >= 5:
		return models.SeverityCritical
	case m >= 2.5:
		return models.SeverityHigh
	case m >= 1:
		return models.SeverityMed
	default:
		return models.SeverityLow
	}
}
