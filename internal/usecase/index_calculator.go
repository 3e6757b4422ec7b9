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

const (
	bootstrapPoints   = 48
	bootstrapInterval = 30 * time.Minute
)

// IndexCalculator maintains the global index: the mean of all asset prices
// scaled to a human-legible magnitude, sampled into a bounded history series.
type IndexCalculator struct {
	markets drepo.Markets
	metrics drepo.Metrics
	scale   float64
	logger  *applogger.Logger

	now func() time.Time
}

// NewIndexCalculator creates the calculator. scale multiplies the mean price
// into the displayed index value.
func NewIndexCalculator(markets drepo.Markets, metrics drepo.Metrics, scale float64, logger *applogger.Logger) *IndexCalculator {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &IndexCalculator{
		markets: markets,
		metrics: metrics,
		scale:   scale,
		logger:  logger,
		now:     time.Now,
	}
}

// Recompute reads every asset and appends one index sample. No assets means
// no sample. An empty history is first backfilled with synthetic points
// spread over the preceding day so charts have something to draw.
func (c *IndexCalculator) Recompute(ctx context.Context) error {
	assets, err := c.markets.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("recompute index: %w", err)
	}
	if len(assets) == 0 {
		return nil
	}

	var total float64
	for _, a := range assets {
		total += a.Price
	}
	value := round2(total / float64(len(assets)) * c.scale)

	history, err := c.markets.IndexHistory(ctx)
	if err != nil {
		return fmt.Errorf("recompute index: %w", err)
	}
	if len(history) == 0 {
		history = c.bootstrapHistory(value)
	}

	nowT := c.now()
	history = append(history, models.GlobalIndexPoint{
		Time:      nowT.Format("15:04"),
		Value:     value,
		Timestamp: nowT.UnixMilli(),
	})

	if err := c.markets.SetIndexHistory(ctx, history); err != nil {
		return fmt.Errorf("recompute index: %w", err)
	}
	c.metrics.RecordIndexValue(value)
	return nil
}

// bootstrapHistory synthesizes a day of half-hourly points trending up to the
// current value, with a little jitter so the chart does not look fabricated.
func (c *IndexCalculator) bootstrapHistory(value float64) []models.GlobalIndexPoint {
	nowT := c.now()
	points := make([]models.GlobalIndexPoint, bootstrapPoints)
	for i := 0; i < bootstrapPoints; i++ {
		ts := nowT.Add(-time.Duration(bootstrapPoints-i) * bootstrapInterval)
		v := value - 100 + float64(i)/bootstrapPoints*100 + (rand.Float64()-0.5)*20
		points[i] = models.GlobalIndexPoint{
			Time:      fmt.Sprintf("%02d:%02d", i/2, (i%2)*30),
			Value:     round2(v),
			Timestamp: ts.UnixMilli(),
		}
	}
	return points
}
