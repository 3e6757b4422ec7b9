package models

// Position is the trading stance derived from a classified conversation.
type Position string

const (
	PositionLong  Position = "LONG"
	PositionShort Position = "SHORT"
	PositionHold  Position = "HOLD"
)

// NormalizePosition coerces arbitrary upstream text to a valid position.
// Anything unrecognized defaults to HOLD.
func NormalizePosition(s string) Position {
	switch Position(s) {
	case PositionLong, PositionShort, PositionHold:
		return Position(s)
	default:
		return PositionHold
	}
}

// RelationshipState classifies the direction a relationship is heading.
type RelationshipState string

const (
	StateStrengthening RelationshipState = "strengthening"
	StateDeteriorating RelationshipState = "deteriorating"
	StateMixed         RelationshipState = "mixed"
	StateUnclear       RelationshipState = "unclear"
)

// NormalizeState coerces arbitrary upstream text to a valid state.
// Anything unrecognized defaults to unclear.
func NormalizeState(s string) RelationshipState {
	switch RelationshipState(s) {
	case StateStrengthening, StateDeteriorating, StateMixed, StateUnclear:
		return RelationshipState(s)
	default:
		return StateUnclear
	}
}

// Field limits for a normalized analysis.
const (
	MaxHeadlineLen         = 120
	MaxRationaleLen        = 500
	MaxMarketUpdateTextLen = 260
	MaxMovePercent         = 10.0
)

// PulseUpdate is a short synthetic market event used to refresh a quiet
// market between recordings.
type PulseUpdate struct {
	Message     string   `json:"message"`
	Quote       string   `json:"quote"`
	Severity    Severity `json:"severity"`
	MovePercent float64  `json:"movePercent"`
	Degraded    bool     `json:"degraded,omitempty"`
}

// RelationshipAnalysis is the classifier's verdict on one recording. It is
// produced fresh per classification call and is always schema-valid: every
// field sits inside its declared enumeration or range regardless of what the
// language model returned.
type RelationshipAnalysis struct {
	Headline          string            `json:"headline"`
	State             RelationshipState `json:"state"`
	Confidence        int               `json:"confidence"`
	RelationshipScore int               `json:"relationshipScore"`
	Position          Position          `json:"position"`
	MarketMovePercent float64           `json:"marketMovePercent"`
	Rationale         string            `json:"rationale"`
	MarketUpdateText  string            `json:"marketUpdateText"`
	Degraded          bool              `json:"degraded,omitempty"`
}
