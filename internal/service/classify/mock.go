package classify

import (
	"fmt"
	"hash/fnv"

	"LovePulse/internal/domain/models"
	drepo "LovePulse/internal/domain/repository"
)

// Deterministic stand-ins served when no language model is configured and
// degraded mode is on. Output depends only on the input, so repeated calls
// with the same evidence price identically.

type mockVerdict struct {
	state    models.RelationshipState
	position models.Position
	move     float64
	headline string
}

var mockVerdicts = []mockVerdict{
	{models.StateMixed, models.PositionHold, 0.75, "Mixed signals on the tape; desks split on direction"},
	{models.StateStrengthening, models.PositionLong, 2.25, "Constructive tone lifts sentiment; buyers step in"},
	{models.StateDeteriorating, models.PositionShort, -2.5, "Friction detected in latest session; sellers active"},
	{models.StateUnclear, models.PositionHold, 0, "Thin evidence; market awaits a clearer read"},
	{models.StateStrengthening, models.PositionLong, 1.5, "Repair attempt lands; risk appetite improves"},
	{models.StateDeteriorating, models.PositionShort, -1.25, "Passive-aggressive undertow weighs on the book"},
}

func hashOf(parts ...string) uint32 {
	h := fnv.New32a()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
	}
	return h.Sum32()
}

func mockAnalysis(in drepo.ClassifyInput) *models.RelationshipAnalysis {
	h := hashOf(in.Symbol, in.RawTranscript)
	v := mockVerdicts[h%uint32(len(mockVerdicts))]

	confidence := 55 + int(h%21)
	score := 40 + int((h/7)%31)

	return &models.RelationshipAnalysis{
		Headline:          v.headline,
		State:             v.state,
		Confidence:        confidence,
		RelationshipScore: score,
		Position:          v.position,
		MarketMovePercent: v.move,
		Rationale:         "Degraded analysis: no language model configured. Verdict derived from a fixed evidence hash, not from the conversation content.",
		MarketUpdateText:  fmt.Sprintf("$%s moves %.2f%% on automated desk read (degraded mode).", in.Symbol, v.move),
		Degraded:          true,
	}
}

var mockPulseMessages = []struct {
	message  string
	quote    string
	severity models.Severity
	move     float64
}{
	{"Light chatter detected near $%s desk. No position change advised.", "It's fine. Everything is fine.", models.SeverityLow, 0.5},
	{"$%s sees modest outflow after a pointed sigh was logged.", "No, go ahead, finish your story.", models.SeverityMed, -1.5},
	{"Unconfirmed reports of shared dessert boost $%s.", "Okay fine, we can split it.", models.SeverityLow, 1.25},
	{"$%s volatility ticks up on a debated thermostat setting.", "It is not cold in here.", models.SeverityMed, -0.75},
}

func mockPulse(symbol string) *models.PulseUpdate {
	h := hashOf("pulse", symbol)
	m := mockPulseMessages[h%uint32(len(mockPulseMessages))]
	return &models.PulseUpdate{
		Message:     fmt.Sprintf(m.message, symbol),
		Quote:       m.quote,
		Severity:    m.severity,
		MovePercent: m.move,
		Degraded:    true,
	}
}
