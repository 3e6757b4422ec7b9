package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"LovePulse/internal/domain/models"
	drepo "LovePulse/internal/domain/repository"
	applogger "LovePulse/pkg/logger"
)

const (
	minConfidenceFactor = 0.25
	maxConfidenceFactor = 1.0
)

// MarketUpdater applies one classified move to an asset's price. The raw move
// is dampened by the classifier's confidence before touching the price, and
// the result always lands inside the global price bounds. The per-symbol lock
// is held for the whole read-modify-write.
type MarketUpdater struct {
	markets   drepo.Markets
	metrics   drepo.Metrics
	basePrice float64
	logger    *applogger.Logger
}

// NewMarketUpdater creates the updater. basePrice is the starting price for a
// symbol that has never traded.
func NewMarketUpdater(markets drepo.Markets, metrics drepo.Metrics, basePrice float64, logger *applogger.Logger) *MarketUpdater {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &MarketUpdater{markets: markets, metrics: metrics, basePrice: basePrice, logger: logger}
}

// ApplyUpdate moves the symbol's price by movePercent dampened by confidence
// and persists the result. An unseen symbol is created at the base price
// first. Returns ErrSymbolBusy when the symbol lock cannot be acquired.
func (u *MarketUpdater) ApplyUpdate(ctx context.Context, symbol, names string, movePercent float64, confidence int) (*models.AssetSnapshot, error) {
	release, err := u.markets.LockSymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	defer release()

	rec, err := u.markets.Get(ctx, symbol)
	if errors.Is(err, models.ErrAssetNotFound) {
		rec = &models.AssetRecord{Symbol: symbol, Names: names, Price: u.basePrice}
	} else if err != nil {
		return nil, err
	}

	adjusted := AdjustedMove(movePercent, confidence)
	newPrice := NextPrice(rec.Price, adjusted)

	u.logger.Info("applying market update",
		applogger.String("symbol", symbol),
		applogger.Float64("move_percent", movePercent),
		applogger.Int("confidence", confidence),
		applogger.Float64("adjusted_move", adjusted),
		applogger.Float64("old_price", rec.Price),
		applogger.Float64("new_price", newPrice),
	)

	rec.Price = newPrice
	rec.Change = adjusted
	rec.IsUp = adjusted >= 0
	rec.LastUpdatedAt = time.Now().UTC()

	if err := u.markets.Set(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist update %s: %w", symbol, err)
	}
	u.metrics.RecordAssetPrice(symbol, newPrice)

	return rec.Snapshot(), nil
}

// AdjustedMove dampens the raw move by the confidence factor. A low-confidence
// read still moves the market, just less: the factor never drops below 0.25.
func AdjustedMove(movePercent float64, confidence int) float64 {
	cf := float64(confidence) / 100
	if cf < minConfidenceFactor {
		cf = minConfidenceFactor
	}
	if cf > maxConfidenceFactor {
		cf = maxConfidenceFactor
	}
	return round2(movePercent * cf)
}

// NextPrice applies an adjusted percent move and clamps to the price bounds.
func NextPrice(price, adjustedMove float64) float64 {
	next := round2(price * (1 + adjustedMove/100))
	if next < models.PriceFloor {
		return models.PriceFloor
	}
	if next > models.PriceCeiling {
		return models.PriceCeiling
	}
	return next
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
