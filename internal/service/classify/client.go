package classify

import (
	"context"
	"fmt"
	"time"

	"LovePulse/internal/domain/models"
	drepo "LovePulse/internal/domain/repository"
	applogger "LovePulse/pkg/logger"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const classifySystemPrompt = `You are a relationship-market analyst for a satirical prediction market where couples' relationships trade like stocks. You read conversation evidence and price it.

Respond with ONLY a JSON object, no markdown and no extra keys, exactly this schema:
{
  "headline": string,            // punchy financial-news headline, max 120 chars
  "state": string,               // one of: strengthening, deteriorating, mixed, unclear
  "confidence": number,          // 0-100, how sure you are
  "relationshipScore": number,   // 0-100 overall health
  "position": string,            // one of: LONG, SHORT, HOLD
  "marketMovePercent": number,   // -10 to 10, price impact of this conversation
  "rationale": string,           // max 500 chars, cite the evidence
  "marketUpdateText": string     // max 260 chars, ticker-style update for traders
}

Rules:
1. Ground every judgment in the supplied transcript and signal summaries. Never invent events that are not in the evidence.
2. When the evidence is thin, contradictory or mostly small talk, prefer "mixed" or "unclear" with a small move and lower confidence.
3. Output the JSON object only. No markdown fences, no commentary, no additional keys.`

const pulseSystemPrompt = `You write one short synthetic market event for a satirical relationship prediction market. No new recording exists; invent a small plausible blip consistent with the couple and current price.

Respond with ONLY a JSON object, no markdown and no extra keys:
{
  "message": string,       // ticker-style update, max 200 chars
  "quote": string,         // one invented overheard line, max 140 chars
  "severity": string,      // one of: LOW, MED, HIGH, CRITICAL
  "movePercent": number    // -5 to 5
}`

// Service classifies conversations and generates pulse events through the
// Anthropic API. With no API key configured it either serves deterministic
// degraded output or hard-fails, depending on configuration.
type Service struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
	timeout   time.Duration
	degraded  bool
	logger    *applogger.Logger
}

// Option configures the service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(l *applogger.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a classifier. apiKey may be empty; degradedMode decides whether
// that serves mock output or fails every call.
func New(apiKey, model string, maxTokens int, timeout time.Duration, degradedMode bool, opts ...Option) *Service {
	s := &Service{
		model:     anthropic.Model(model),
		maxTokens: int64(maxTokens),
		timeout:   timeout,
		degraded:  degradedMode,
		logger:    applogger.Nop(),
	}
	if apiKey != "" {
		c := anthropic.NewClient(option.WithAPIKey(apiKey))
		s.client = &c
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

var (
	_ drepo.Classifier     = (*Service)(nil)
	_ drepo.PulseGenerator = (*Service)(nil)
)

// Classify prices one recording. The returned analysis is always schema-valid.
func (s *Service) Classify(ctx context.Context, in drepo.ClassifyInput) (*models.RelationshipAnalysis, error) {
	if s.client == nil {
		if !s.degraded {
			return nil, &models.ClassificationError{Message: "language model credentials are not configured"}
		}
		s.logger.Warn("serving degraded mock analysis", applogger.String("symbol", in.Symbol))
		return mockAnalysis(in), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: classifySystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(classifyUserPrompt(in))),
		},
	})
	if err != nil {
		return nil, &models.ClassificationError{Message: "language model request failed", Err: err}
	}
	if len(resp.Content) == 0 {
		return nil, &models.ClassificationError{Message: "empty language model response"}
	}

	return Normalize(in.Symbol, resp.Content[0].Text), nil
}

func classifyUserPrompt(in drepo.ClassifyInput) string {
	transcript := in.DiarizedTranscript
	if transcript == "" {
		transcript = in.RawTranscript
	}
	warnings := in.WarningsSummary
	if warnings == "" {
		warnings = "none"
	}
	return fmt.Sprintf(`Asset: $%s (%s)

Transcript:
%s

Sentiment signals: %s
Intent signals: %s
Processing warnings: %s`,
		in.Symbol, in.Names, transcript, in.SentimentSummary, in.IntentSummary, warnings)
}

// GeneratePulse invents a small market event for a quiet symbol.
func (s *Service) GeneratePulse(ctx context.Context, symbol, names string, price float64) (*models.PulseUpdate, error) {
	if s.client == nil {
		if !s.degraded {
			return nil, &models.ClassificationError{Message: "language model credentials are not configured"}
		}
		s.logger.Warn("serving degraded mock pulse", applogger.String("symbol", symbol))
		return mockPulse(symbol), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user := fmt.Sprintf("Asset: $%s (%s), current price %.2f. Generate one pulse event.", symbol, names, price)

	resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: pulseSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return nil, &models.ClassificationError{Message: "language model request failed", Err: err}
	}
	if len(resp.Content) == 0 {
		return nil, &models.ClassificationError{Message: "empty language model response"}
	}

	return normalizePulse(symbol, resp.Content[0].Text), nil
}

func normalizePulse(symbol, raw string) *models.PulseUpdate {
	m := parseLoose(raw)

	p := &models.PulseUpdate{
		Message:     clampText(stringField(m, "message"), 200),
		Quote:       clampText(stringField(m, "quote"), 140),
		Severity:    normalizeSeverity(stringField(m, "severity")),
		MovePercent: round2(clampFloat(floatField(m, "movePercent", 0), -5, 5)),
	}
	if p.Message == "" {
		p.Message = fmt.Sprintf("Quiet session for $%s. Volume thin, spreads steady.", symbol)
	}
	return p
}

func normalizeSeverity(s string) models.Severity {
	switch models.Severity(s) {
	case models.SeverityLow, models.SeverityMed, models.SeverityHigh, models.SeverityCritical:
		return models.Severity(s)
	default:
		return models.SeverityLow
	}
}
