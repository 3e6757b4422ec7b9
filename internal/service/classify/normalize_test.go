package classify

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"LovePulse/internal/domain/models"
	drepo "LovePulse/internal/domain/repository"
)

func TestNormalizeEmptyObjectDefaults(t *testing.T) {
	a := Normalize("JESSMIKE", "{}")

	if a.Position != models.PositionHold {
		t.Errorf("position = %s, want HOLD", a.Position)
	}
	if a.State != models.StateUnclear {
		t.Errorf("state = %s, want unclear", a.State)
	}
	if a.Confidence != 50 || a.RelationshipScore != 50 {
		t.Errorf("confidence/score = %d/%d, want 50/50", a.Confidence, a.RelationshipScore)
	}
	if a.MarketMovePercent != 0 {
		t.Errorf("move = %v, want 0", a.MarketMovePercent)
	}
	if a.Headline == "" || a.Rationale == "" || a.MarketUpdateText == "" {
		t.Errorf("text defaults missing: %+v", a)
	}
	if !strings.Contains(a.Headline, "JESSMIKE") {
		t.Errorf("headline default should name the symbol: %q", a.Headline)
	}
}

func TestNormalizeValidPayload(t *testing.T) {
	raw := `{
		"headline": "Dishes dispute escalates",
		"state": "deteriorating",
		"confidence": 82,
		"relationshipScore": 37,
		"position": "SHORT",
		"marketMovePercent": -4.27,
		"rationale": "Repeated blame language.",
		"marketUpdateText": "$JESSMIKE down on kitchen friction."
	}`
	a := Normalize("JESSMIKE", raw)

	if a.State != models.StateDeteriorating || a.Position != models.PositionShort {
		t.Errorf("state/position = %s/%s", a.State, a.Position)
	}
	if a.Confidence != 82 || a.RelationshipScore != 37 {
		t.Errorf("confidence/score = %d/%d", a.Confidence, a.RelationshipScore)
	}
	if a.MarketMovePercent != -4.27 {
		t.Errorf("move = %v", a.MarketMovePercent)
	}
}

func TestNormalizeClampsRanges(t *testing.T) {
	raw := `{"confidence": 180, "relationshipScore": -5, "marketMovePercent": 42.7}`
	a := Normalize("X", raw)

	if a.Confidence != 100 {
		t.Errorf("confidence = %d, want 100", a.Confidence)
	}
	if a.RelationshipScore != 0 {
		t.Errorf("score = %d, want 0", a.RelationshipScore)
	}
	if a.MarketMovePercent != 10 {
		t.Errorf("move = %v, want 10", a.MarketMovePercent)
	}

	a = Normalize("X", `{"marketMovePercent": -99}`)
	if a.MarketMovePercent != -10 {
		t.Errorf("move = %v, want -10", a.MarketMovePercent)
	}
}

func TestNormalizeMarkdownFenceAndProse(t *testing.T) {
	raw := "Here is my analysis:\n```json\n{\"position\": \"LONG\", \"state\": \"strengthening\"}\n```\nHope that helps!"
	a := Normalize("X", raw)
	if a.Position != models.PositionLong || a.State != models.StateStrengthening {
		t.Errorf("fenced parse failed: %+v", a)
	}
}

func TestNormalizeStringNumbers(t *testing.T) {
	a := Normalize("X", `{"confidence": "73", "marketMovePercent": "-2.5"}`)
	if a.Confidence != 73 {
		t.Errorf("confidence = %d, want 73", a.Confidence)
	}
	if a.MarketMovePercent != -2.5 {
		t.Errorf("move = %v, want -2.5", a.MarketMovePercent)
	}
}

func TestNormalizeGarbage(t *testing.T) {
	a := Normalize("X", "the model refused to answer")
	if a.Position != models.PositionHold || a.State != models.StateUnclear {
		t.Errorf("garbage should fall back to defaults: %+v", a)
	}
}

func TestNormalizeTruncatesLongText(t *testing.T) {
	raw := `{"headline": "` + strings.Repeat("h", 300) + `", "rationale": "` + strings.Repeat("r", 900) + `"}`
	a := Normalize("X", raw)
	if len(a.Headline) > models.MaxHeadlineLen {
		t.Errorf("headline len = %d", len(a.Headline))
	}
	if len(a.Rationale) > models.MaxRationaleLen {
		t.Errorf("rationale len = %d", len(a.Rationale))
	}
}

func TestNormalizeTruncationKeepsValidUTF8(t *testing.T) {
	raw := `{"headline": "a` + strings.Repeat("愛", 60) + `", "rationale": "` + strings.Repeat("噓", 600) + `"}`
	a := Normalize("X", raw)

	if !utf8.ValidString(a.Headline) {
		t.Errorf("headline is invalid UTF-8 after truncation: %q", a.Headline)
	}
	if !utf8.ValidString(a.Rationale) {
		t.Errorf("rationale is invalid UTF-8 after truncation: %q", a.Rationale)
	}
	if n := utf8.RuneCountInString(a.Rationale); n > models.MaxRationaleLen {
		t.Errorf("rationale = %d runes, want <= %d", n, models.MaxRationaleLen)
	}
}

func TestNormalizeLowercasePosition(t *testing.T) {
	a := Normalize("X", `{"position": "short"}`)
	if a.Position != models.PositionShort {
		t.Errorf("position = %s, want SHORT", a.Position)
	}
}

func TestDegradedClassifyDeterministic(t *testing.T) {
	s := New("", "claude-sonnet-4-5", 1024, 0, true)
	in := drepo.ClassifyInput{Symbol: "JESSMIKE", RawTranscript: "we talked about rent"}

	a1, err := s.Classify(context.Background(), in)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	a2, err := s.Classify(context.Background(), in)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if !a1.Degraded {
		t.Error("degraded flag not set")
	}
	if *a1 != *a2 {
		t.Errorf("degraded analysis not deterministic:\n%+v\n%+v", a1, a2)
	}
	if a1.MarketMovePercent < -models.MaxMovePercent || a1.MarketMovePercent > models.MaxMovePercent {
		t.Errorf("degraded move out of range: %v", a1.MarketMovePercent)
	}
	if a1.Confidence < 0 || a1.Confidence > 100 {
		t.Errorf("degraded confidence out of range: %d", a1.Confidence)
	}
}

func TestMissingKeyHardFailsWithoutDegradedMode(t *testing.T) {
	s := New("", "claude-sonnet-4-5", 1024, 0, false)

	if _, err := s.Classify(context.Background(), drepo.ClassifyInput{Symbol: "X"}); err == nil {
		t.Error("Classify should fail without credentials")
	}
	if _, err := s.GeneratePulse(context.Background(), "X", "X & Y", 50); err == nil {
		t.Error("GeneratePulse should fail without credentials")
	}
}

func TestDegradedPulse(t *testing.T) {
	s := New("", "claude-sonnet-4-5", 1024, 0, true)
	p, err := s.GeneratePulse(context.Background(), "JESSMIKE", "Jess & Mike", 50)
	if err != nil {
		t.Fatalf("GeneratePulse: %v", err)
	}
	if !p.Degraded {
		t.Error("degraded flag not set")
	}
	if p.MovePercent < -5 || p.MovePercent > 5 {
		t.Errorf("pulse move out of range: %v", p.MovePercent)
	}
	if p.Message == "" {
		t.Error("pulse message empty")
	}
}

func TestNormalizePulseDefaults(t *testing.T) {
	p := normalizePulse("ABC", "not json at all")
	if p.Severity != models.SeverityLow {
		t.Errorf("severity = %s, want LOW", p.Severity)
	}
	if p.MovePercent != 0 {
		t.Errorf("move = %v, want 0", p.MovePercent)
	}
	if !strings.Contains(p.Message, "ABC") {
		t.Errorf("default message should name symbol: %q", p.Message)
	}

	p = normalizePulse("ABC", `{"severity": "CRITICAL", "movePercent": 9.9}`)
	if p.Severity != models.SeverityCritical {
		t.Errorf("severity = %s", p.Severity)
	}
	if p.MovePercent != 5 {
		t.Errorf("move = %v, want clamp to 5", p.MovePercent)
	}
}
