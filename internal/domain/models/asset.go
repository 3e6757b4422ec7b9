package models

import "time"

// Price bounds for any asset after any update path.
const (
	PriceFloor   = 0.5
	PriceCeiling = 9999
)

// PropBet is a binary yes/no side-market tied to a question about an asset.
// Yes and no odds are independent percent strings and are not required to sum
// to 100.
type PropBet struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	YesOdds  string `json:"yesOdds"`
	NoOdds   string `json:"noOdds"`
	RSI      int    `json:"rsi"`
	Volume   string `json:"volume"`
	Expiry   string `json:"expiry"`
}

// AssetRecord is the persisted state of one tradable relationship market.
// Owned by the market repository; mutated only by the market updater and the
// pulse refresh path.
type AssetRecord struct {
	Symbol        string    `json:"symbol"`
	Names         string    `json:"names"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	IsUp          bool      `json:"isUp"`
	Category      string    `json:"category"`
	Volatility    string    `json:"volatility"`
	PropBets      []PropBet `json:"propBets"`
	AISummary     string    `json:"aiSummary,omitempty"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// AssetSnapshot is the post-update view returned to callers.
type AssetSnapshot struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// Snapshot extracts the caller-facing view of the record.
func (a *AssetRecord) Snapshot() *AssetSnapshot {
	return &AssetSnapshot{
		Symbol:        a.Symbol,
		Price:         a.Price,
		Change:        a.Change,
		LastUpdatedAt: a.LastUpdatedAt,
	}
}
