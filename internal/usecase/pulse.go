package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"LovePulse/internal/domain/models"
	drepo "LovePulse/internal/domain/repository"
	applogger "LovePulse/pkg/logger"
)

// PulseRefresher injects a small synthetic market event into an existing
// asset: a generated blip moves the price, prop bet odds are reshuffled and
// a feed entry is appended. Only assets that already exist can be pulsed.
type PulseRefresher struct {
	markets drepo.Markets
	pulse   drepo.PulseGenerator
	index   *IndexCalculator
	feed    drepo.FeedPublisher
	metrics drepo.Metrics
	logger  *applogger.Logger
}

// NewPulseRefresher wires the pulse path.
func NewPulseRefresher(
	markets drepo.Markets,
	pulse drepo.PulseGenerator,
	index *IndexCalculator,
	feed drepo.FeedPublisher,
	metrics drepo.Metrics,
	logger *applogger.Logger,
) *PulseRefresher {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &PulseRefresher{
		markets: markets,
		pulse:   pulse,
		index:   index,
		feed:    feed,
		metrics: metrics,
		logger:  logger,
	}
}

// Refresh generates and applies one pulse event for symbol. Returns the
// updated asset and the new feed entry. ErrAssetNotFound when the symbol was
// never seeded; ErrSymbolBusy when the symbol lock cannot be acquired.
func (p *PulseRefresher) Refresh(ctx context.Context, symbol string) (*models.AssetRecord, *models.InsiderLogEntry, error) {
	rec, err := p.markets.Get(ctx, symbol)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	pu, err := p.pulse.GeneratePulse(ctx, symbol, rec.Names, rec.Price)
	p.metrics.RecordProviderLatency("anthropic", time.Since(start).Seconds())
	if err != nil {
		p.metrics.RecordAnalysis("pulse_error")
		return nil, nil, err
	}

	release, err := p.markets.LockSymbol(ctx, symbol)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	// re-read under the lock; the pre-lock read only fed the generator
	rec, err = p.markets.Get(ctx, symbol)
	if err != nil {
		return nil, nil, err
	}

	adjusted := round2(pu.MovePercent)
	rec.Price = NextPrice(rec.Price, adjusted)
	rec.Change = adjusted
	rec.IsUp = adjusted >= 0
	rec.AISummary = pu.Message
	rec.LastUpdatedAt = time.Now().UTC()
	reshuffleOdds(rec)

	if err := p.markets.Set(ctx, rec); err != nil {
		return nil, nil, fmt.Errorf("persist pulse %s: %w", symbol, err)
	}
	p.metrics.RecordAssetPrice(symbol, rec.Price)

	source := "INSIDER_NODE"
	if pu.Degraded {
		source = sourceMockNode
	}
	entry := &models.InsiderLogEntry{
		ID:                fmt.Sprintf("pulse_%d", time.Now().UnixMilli()),
		Symbol:            symbol,
		Source:            source,
		Message:           pu.Message,
		Quote:             pu.Quote,
		Severity:          pu.Severity,
		Time:              "JUST_NOW",
		CreatedAt:         time.Now().UTC(),
		MarketMovePercent: adjusted,
	}
	if err := p.markets.AppendInsiderLog(ctx, entry); err != nil {
		return nil, nil, err
	}

	if err := p.feed.Publish(ctx, entry); err != nil {
		p.logger.Warn("feed publish failed", applogger.String("symbol", symbol), applogger.Error(err))
	}
	if err := p.index.Recompute(ctx); err != nil {
		p.logger.Warn("index recompute failed after pulse", applogger.Error(err))
	}

	p.metrics.RecordAnalysis("pulse")
	return rec, entry, nil
}

func reshuffleOdds(rec *models.AssetRecord) {
	for i := range rec.PropBets {
		rec.PropBets[i].YesOdds = fmt.Sprintf("%d%%", rand.Intn(90)+5)
		rec.PropBets[i].NoOdds = fmt.Sprintf("%d%%", rand.Intn(90)+5)
		rec.PropBets[i].RSI = rand.Intn(100)
	}
}
