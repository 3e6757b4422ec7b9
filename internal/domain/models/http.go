package models

// SeedMarketsRequest carries the default asset set for idempotent seeding.
type SeedMarketsRequest struct {
	DefaultAssets []AssetRecord `json:"defaultAssets" validate:"required,min=1,dive"`
}

// PulseRequest triggers an out-of-band refresh of one asset.
type PulseRequest struct {
	Symbol string `json:"symbol" validate:"required,min=2,max=32"`
}

// AnalyzeRecordingResponse is the terminal payload for one processed recording.
type AnalyzeRecordingResponse struct {
	Symbol string           `json:"symbol"`
	Market *AssetSnapshot   `json:"market"`
	Update *InsiderLogEntry `json:"update"`
}

// PulseResponse is the payload for a completed pulse refresh.
type PulseResponse struct {
	Asset  *AssetRecord     `json:"asset"`
	NewLog *InsiderLogEntry `json:"newLog"`
}

// MarketsResponse wraps the full asset list.
type MarketsResponse struct {
	Assets []AssetRecord `json:"assets"`
}

// IndexHistoryResponse wraps the aggregate index history.
type IndexHistoryResponse struct {
	History []GlobalIndexPoint `json:"history"`
}
