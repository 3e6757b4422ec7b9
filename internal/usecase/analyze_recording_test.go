package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"LovePulse/internal/domain/models"
	drepo "LovePulse/internal/domain/repository"
	"LovePulse/pkg/kv"
	pkgmetrics "LovePulse/pkg/metrics"

	"LovePulse/internal/repository"
)

type stubTranscriber struct {
	res *models.TranscriptionResult
	err error
}

func (s *stubTranscriber) Transcribe(context.Context, []byte, string) (*models.TranscriptionResult, error) {
	return s.res, s.err
}

type stubClassifier struct {
	analysis *models.RelationshipAnalysis
	err      error
	got      drepo.ClassifyInput
}

func (s *stubClassifier) Classify(_ context.Context, in drepo.ClassifyInput) (*models.RelationshipAnalysis, error) {
	s.got = in
	return s.analysis, s.err
}

type captureFeed struct {
	entries []*models.InsiderLogEntry
	err     error
}

func (f *captureFeed) Publish(_ context.Context, e *models.InsiderLogEntry) error {
	f.entries = append(f.entries, e)
	return f.err
}

type captureAudit struct {
	records []*drepo.AuditRecord
}

func (a *captureAudit) Record(_ context.Context, r *drepo.AuditRecord) error {
	a.records = append(a.records, r)
	return nil
}

func newPipeline(markets *repository.MarketRepository, tr drepo.Transcriber, cl drepo.Classifier, feed drepo.FeedPublisher, audit drepo.AuditStore) *AnalyzeRecording {
	updater := NewMarketUpdater(markets, pkgmetrics.Nop{}, 50, nil)
	index := NewIndexCalculator(markets, pkgmetrics.Nop{}, 75, nil)
	return NewAnalyzeRecording(tr, cl, updater, index, markets, feed, audit, pkgmetrics.Nop{}, nil)
}

func testTranscription() *models.TranscriptionResult {
	return &models.TranscriptionResult{
		Transcript: "we need to talk about the dishes",
		Utterances: []models.Utterance{
			{Speaker: 0, Text: "We need to talk."},
			{Speaker: 1, Text: "About the dishes again?"},
		},
		SentimentAverage: &models.SentimentAverage{Sentiment: "negative", SentimentScore: -0.4},
	}
}

func TestExecuteFullPipeline(t *testing.T) {
	markets := repository.NewMarketRepository(kv.NewMemoryStore())
	ctx := context.Background()
	if err := markets.Set(ctx, &models.AssetRecord{Symbol: "JESSMIKE", Names: "Jess & Mike", Price: 50}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	cl := &stubClassifier{analysis: &models.RelationshipAnalysis{
		Headline:          "Dishes dispute escalates",
		State:             models.StateDeteriorating,
		Confidence:        40,
		RelationshipScore: 35,
		Position:          models.PositionShort,
		MarketMovePercent: -8,
		Rationale:         "Recurring chore conflict.",
		MarketUpdateText:  "$JESSMIKE slides on kitchen friction.",
	}}
	feed := &captureFeed{}
	audit := &captureAudit{}
	p := newPipeline(markets, &stubTranscriber{res: testTranscription()}, cl, feed, audit)

	snap, entry, err := p.Execute(ctx, "JESSMIKE", []byte("audio"), "audio/webm")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if snap.Price != 48.40 || snap.Change != -3.2 {
		t.Errorf("snapshot = %+v, want price 48.40 change -3.2", snap)
	}

	// classifier saw the full evidence bundle
	if cl.got.Names != "Jess & Mike" {
		t.Errorf("classifier names = %q", cl.got.Names)
	}
	if cl.got.DiarizedTranscript == "" || cl.got.SentimentSummary == "" {
		t.Errorf("classifier input incomplete: %+v", cl.got)
	}

	if entry.Symbol != "JESSMIKE" || entry.Source != "VOICE_WIRETAP" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Severity != models.SeverityHigh {
		t.Errorf("severity = %s, want HIGH for 3.2%% move", entry.Severity)
	}
	if entry.Quote != "We need to talk." {
		t.Errorf("quote = %q", entry.Quote)
	}
	if entry.Transcript == "" || entry.Headline == "" {
		t.Errorf("audit fields missing: %+v", entry)
	}

	updates, err := markets.MarketUpdates(ctx, "JESSMIKE")
	if err != nil {
		t.Fatalf("MarketUpdates: %v", err)
	}
	if len(updates) != 1 || updates[0].ID != entry.ID {
		t.Errorf("symbol feed = %+v", updates)
	}

	logs, err := markets.InsiderLogs(ctx)
	if err != nil {
		t.Fatalf("InsiderLogs: %v", err)
	}
	if len(logs) != 1 {
		t.Errorf("global feed = %d entries", len(logs))
	}

	if len(feed.entries) != 1 {
		t.Errorf("published entries = %d", len(feed.entries))
	}
	if len(audit.records) != 1 || audit.records[0].MovePercent != -8 {
		t.Errorf("audit = %+v", audit.records)
	}

	// index got recomputed as part of the pipeline
	history, err := markets.IndexHistory(ctx)
	if err != nil {
		t.Fatalf("IndexHistory: %v", err)
	}
	if len(history) == 0 {
		t.Error("index history empty after pipeline")
	}
}

func TestExecuteTranscriptionFailure(t *testing.T) {
	markets := repository.NewMarketRepository(kv.NewMemoryStore())
	p := newPipeline(markets, &stubTranscriber{err: &models.TranscriptionError{Message: "bad audio"}},
		&stubClassifier{}, &captureFeed{}, &captureAudit{})

	_, _, err := p.Execute(context.Background(), "X", []byte("audio"), "audio/webm")
	var te *models.TranscriptionError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TranscriptionError", err)
	}

	logs, _ := markets.InsiderLogs(context.Background())
	if len(logs) != 0 {
		t.Errorf("no feed entries expected on failure, got %d", len(logs))
	}
}

func TestExecuteClassificationFailure(t *testing.T) {
	markets := repository.NewMarketRepository(kv.NewMemoryStore())
	p := newPipeline(markets, &stubTranscriber{res: testTranscription()},
		&stubClassifier{err: &models.ClassificationError{Message: "model down"}}, &captureFeed{}, &captureAudit{})

	_, _, err := p.Execute(context.Background(), "X", []byte("audio"), "audio/webm")
	var ce *models.ClassificationError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want ClassificationError", err)
	}
}

func TestExecuteFeedFailureIsBestEffort(t *testing.T) {
	markets := repository.NewMarketRepository(kv.NewMemoryStore())
	feed := &captureFeed{err: errors.New("broker down")}
	cl := &stubClassifier{analysis: &models.RelationshipAnalysis{
		Confidence: 50, MarketMovePercent: 1,
		Position: models.PositionLong, State: models.StateStrengthening,
		Headline: "h", Rationale: "r", MarketUpdateText: "m",
	}}
	p := newPipeline(markets, &stubTranscriber{res: testTranscription()}, cl, feed, &captureAudit{})

	if _, _, err := p.Execute(context.Background(), "X", []byte("audio"), "audio/webm"); err != nil {
		t.Fatalf("publish failure must not fail the request: %v", err)
	}
}

func TestExecuteQuoteTruncationKeepsValidUTF8(t *testing.T) {
	markets := repository.NewMarketRepository(kv.NewMemoryStore())
	tr := &stubTranscriber{res: &models.TranscriptionResult{
		Transcript: "long",
		Utterances: []models.Utterance{{Speaker: 0, Text: strings.Repeat("愛", 200)}},
	}}
	cl := &stubClassifier{analysis: &models.RelationshipAnalysis{
		Confidence: 50, Position: models.PositionHold, State: models.StateUnclear,
		Headline: "h", Rationale: "r", MarketUpdateText: "m",
	}}
	p := newPipeline(markets, tr, cl, &captureFeed{}, &captureAudit{})

	_, entry, err := p.Execute(context.Background(), "X", []byte("audio"), "audio/webm")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !utf8.ValidString(entry.Quote) {
		t.Errorf("quote is invalid UTF-8 after truncation: %q", entry.Quote)
	}
	if n := utf8.RuneCountInString(entry.Quote); n != 140 {
		t.Errorf("quote = %d runes, want 140", n)
	}
}

func TestExecuteDegradedSource(t *testing.T) {
	markets := repository.NewMarketRepository(kv.NewMemoryStore())
	cl := &stubClassifier{analysis: &models.RelationshipAnalysis{
		Confidence: 50, Position: models.PositionHold, State: models.StateUnclear,
		Headline: "h", Rationale: "r", MarketUpdateText: "m", Degraded: true,
	}}
	p := newPipeline(markets, &stubTranscriber{res: testTranscription()}, cl, &captureFeed{}, &captureAudit{})

	_, entry, err := p.Execute(context.Background(), "X", []byte("audio"), "audio/webm")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if entry.Source != "MOCK_NODE" {
		t.Errorf("source = %q, want MOCK_NODE", entry.Source)
	}
}
