package classify

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"LovePulse/internal/domain/models"
)

// Normalize coerces raw model output into a schema-valid analysis. The model
// may wrap its JSON in markdown fences or surrounding prose, emit numbers as
// strings, or drop fields entirely; every shape still yields a usable result.
func Normalize(symbol, raw string) *models.RelationshipAnalysis {
	m := parseLoose(raw)

	a := &models.RelationshipAnalysis{
		Headline:          clampText(stringField(m, "headline"), models.MaxHeadlineLen),
		State:             models.NormalizeState(stringField(m, "state")),
		Confidence:        clampInt(intField(m, "confidence", 50), 0, 100),
		RelationshipScore: clampInt(intField(m, "relationshipScore", 50), 0, 100),
		Position:          models.NormalizePosition(strings.ToUpper(stringField(m, "position"))),
		MarketMovePercent: round2(clampFloat(floatField(m, "marketMovePercent", 0), -models.MaxMovePercent, models.MaxMovePercent)),
		Rationale:         clampText(stringField(m, "rationale"), models.MaxRationaleLen),
		MarketUpdateText:  clampText(stringField(m, "marketUpdateText"), models.MaxMarketUpdateTextLen),
	}

	if a.Headline == "" {
		a.Headline = fmt.Sprintf("Market-moving conversation detected for $%s", symbol)
	}
	if a.Rationale == "" {
		a.Rationale = "No rationale provided."
	}
	if a.MarketUpdateText == "" {
		a.MarketUpdateText = fmt.Sprintf("Unusual conversational activity detected in $%s.", symbol)
	}

	return a
}

// parseLoose unmarshals the response, falling back to the first {...}
// substring, then to an empty object.
func parseLoose(raw string) map[string]interface{} {
	raw = stripFences(raw)

	var m map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &m); err == nil {
		return m
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(raw[start:end+1]), &m); err == nil {
			return m
		}
	}

	return map[string]interface{}{}
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func stringField(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func intField(m map[string]interface{}, key string, def int) int {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case float64:
		return int(math.Round(t))
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return int(math.Round(f))
		}
	}
	return def
}

func floatField(m map[string]interface{}, key string, def float64) float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case float64:
		return t
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return def
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// clampText truncates to max runes, never splitting a multi-byte character.
func clampText(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:max]))
}
