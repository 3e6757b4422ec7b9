package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"LovePulse/internal/domain/models"
	drepo "LovePulse/internal/domain/repository"
	"LovePulse/pkg/kv"
	applogger "LovePulse/pkg/logger"
)

const (
	assetKeyPrefix   = "market:asset:"
	updatesKeyPrefix = "market:updates:"
	intelLogsKey     = "intel:logs"
	indexHistoryKey  = "market:gli:history"
	lockKeyPrefix    = "lock:symbol:"
)

const (
	maxInsiderLogs   = 50
	maxMarketUpdates = 30
	maxIndexPoints   = 100
	propBetCount     = 12
)

var propBetQuestions = [propBetCount]string{
	"Will they be seen together this week?",
	"Will they post a selfie?",
	"Will they delete a photo?",
	"Will a third party intervene?",
	"Will they announce a split?",
	"Will they get engaged?",
	"Will they go on a trip?",
	"Will they move house?",
	"Will they attend a red carpet?",
	"Will they block each other?",
	"Will a family member comment?",
	"Will they start a business?",
}

// MarketRepository stores assets, feed state and index history in the KV
// store. All list values are single JSON arrays under one key; callers that
// mutate an asset hold its symbol lock for the whole read-modify-write.
type MarketRepository struct {
	store         kv.Store
	lockTTL       time.Duration
	lockRetries   int
	lockRetryWait time.Duration
	logger        *applogger.Logger
}

// Option configures the repository.
type Option func(*MarketRepository)

// WithLock tunes the per-symbol lock behavior.
func WithLock(ttl time.Duration, retries int, retryWait time.Duration) Option {
	return func(r *MarketRepository) {
		r.lockTTL = ttl
		r.lockRetries = retries
		r.lockRetryWait = retryWait
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *applogger.Logger) Option {
	return func(r *MarketRepository) { r.logger = l }
}

// NewMarketRepository creates a KV-backed market repository.
func NewMarketRepository(store kv.Store, opts ...Option) *MarketRepository {
	r := &MarketRepository{
		store:         store,
		lockTTL:       10 * time.Second,
		lockRetries:   5,
		lockRetryWait: 200 * time.Millisecond,
		logger:        applogger.Nop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

var _ drepo.Markets = (*MarketRepository)(nil)

// Get returns one asset or ErrAssetNotFound.
func (r *MarketRepository) Get(ctx context.Context, symbol string) (*models.AssetRecord, error) {
	var rec models.AssetRecord
	err := r.store.Get(ctx, assetKeyPrefix+symbol, &rec)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, models.ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get asset %s: %w", symbol, err)
	}
	return &rec, nil
}

// Set persists one asset.
func (r *MarketRepository) Set(ctx context.Context, rec *models.AssetRecord) error {
	if rec == nil || rec.Symbol == "" {
		return fmt.Errorf("set asset: empty symbol")
	}
	if err := r.store.Set(ctx, assetKeyPrefix+rec.Symbol, rec); err != nil {
		return fmt.Errorf("set asset %s: %w", rec.Symbol, err)
	}
	return nil
}

// GetAll returns every asset, repairing any record with a missing or empty
// prop bet list on the way out. When a repair happened the full set is
// re-read so the caller sees exactly what was persisted.
func (r *MarketRepository) GetAll(ctx context.Context) ([]models.AssetRecord, error) {
	assets, err := r.readAll(ctx)
	if err != nil {
		return nil, err
	}

	repaired := 0
	for i := range assets {
		if len(assets[i].PropBets) > 0 {
			continue
		}
		assets[i].PropBets = freshPropBets()
		if err := r.Set(ctx, &assets[i]); err != nil {
			return nil, err
		}
		repaired++
	}

	if repaired == 0 {
		return assets, nil
	}
	r.logger.Info("repaired assets with missing prop bets", applogger.Int("count", repaired))
	return r.readAll(ctx)
}

func (r *MarketRepository) readAll(ctx context.Context) ([]models.AssetRecord, error) {
	raw, err := r.store.GetByPrefix(ctx, assetKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("scan assets: %w", err)
	}
	assets := make([]models.AssetRecord, 0, len(raw))
	for _, b := range raw {
		var rec models.AssetRecord
		if err := json.Unmarshal(b, &rec); err != nil {
			r.logger.Warn("skipping undecodable asset record", applogger.Error(err))
			continue
		}
		assets = append(assets, rec)
	}
	return assets, nil
}

// RepairAll is the explicit backfill: it rewrites every asset with a missing
// or empty prop bet list and reports how many it touched.
func (r *MarketRepository) RepairAll(ctx context.Context) (int, error) {
	assets, err := r.readAll(ctx)
	if err != nil {
		return 0, err
	}
	repaired := 0
	for i := range assets {
		if len(assets[i].PropBets) > 0 {
			continue
		}
		assets[i].PropBets = freshPropBets()
		if err := r.Set(ctx, &assets[i]); err != nil {
			return repaired, err
		}
		repaired++
	}
	return repaired, nil
}

func freshPropBets() []models.PropBet {
	now := time.Now().UnixMilli()
	bets := make([]models.PropBet, propBetCount)
	for i := 0; i < propBetCount; i++ {
		bets[i] = models.PropBet{
			ID:       fmt.Sprintf("prop_%d_%d", i, now),
			Question: propBetQuestions[i],
			YesOdds:  fmt.Sprintf("%d%%", rand.Intn(80)+10),
			NoOdds:   fmt.Sprintf("%d%%", rand.Intn(80)+10),
			RSI:      rand.Intn(100),
			Volume:   "$0",
			Expiry:   "30D",
		}
	}
	return bets
}

// SeedDefaults writes each asset that does not exist yet, filling in prop
// bets and the update timestamp, and seeds the initial insider log batch when
// the log is empty. Idempotent: re-running never overwrites live state.
func (r *MarketRepository) SeedDefaults(ctx context.Context, assets []models.AssetRecord) (int, error) {
	seeded := 0
	for i := range assets {
		a := assets[i]
		exists, err := r.store.Exists(ctx, assetKeyPrefix+a.Symbol)
		if err != nil {
			return seeded, fmt.Errorf("seed %s: %w", a.Symbol, err)
		}
		if exists {
			continue
		}
		if len(a.PropBets) == 0 {
			a.PropBets = freshPropBets()
		}
		a.LastUpdatedAt = time.Now().UTC()
		if err := r.Set(ctx, &a); err != nil {
			return seeded, err
		}
		seeded++
	}

	logs, err := r.InsiderLogs(ctx)
	if err != nil {
		return seeded, err
	}
	if len(logs) == 0 {
		if err := r.store.Set(ctx, intelLogsKey, seedInsiderLogs()); err != nil {
			return seeded, fmt.Errorf("seed insider logs: %w", err)
		}
	}

	return seeded, nil
}

func seedInsiderLogs() []models.InsiderLogEntry {
	now := time.Now().UTC()
	return []models.InsiderLogEntry{
		{
			ID: "seed_log_1", Source: "WIRETAP_BETA", Symbol: "TAY-TRAV",
			Message:  "Low-frequency argument detected in private suite. Keyword: 'pre-nup'.",
			Severity: models.SeverityHigh, Time: "2m ago", CreatedAt: now,
		},
		{
			ID: "seed_log_2", Source: "PABLO_GOSSIP", Symbol: "BEN-JEN",
			Message:  "Affleck seen moving boxes out of West Hollywood estate. 42% confidence.",
			Severity: models.SeverityCritical, Time: "14m ago", CreatedAt: now,
		},
		{
			ID: "seed_log_3", Source: "SAT_INTEL", Symbol: "TOM-ZEND",
			Message:  "Zendaya's stylist unfollowed Holland on private Alt. Bearish signal.",
			Severity: models.SeverityMed, Time: "45m ago", CreatedAt: now,
		},
	}
}

// InsiderLogs returns the global feed, newest first.
func (r *MarketRepository) InsiderLogs(ctx context.Context) ([]models.InsiderLogEntry, error) {
	return r.readLog(ctx, intelLogsKey)
}

// AppendInsiderLog prepends one entry to the global feed, capped.
func (r *MarketRepository) AppendInsiderLog(ctx context.Context, entry *models.InsiderLogEntry) error {
	return r.appendLog(ctx, intelLogsKey, entry, maxInsiderLogs)
}

// MarketUpdates returns the per-symbol update feed, newest first.
func (r *MarketRepository) MarketUpdates(ctx context.Context, symbol string) ([]models.InsiderLogEntry, error) {
	return r.readLog(ctx, updatesKeyPrefix+symbol)
}

// AppendMarketUpdate prepends one entry to the symbol feed, capped.
func (r *MarketRepository) AppendMarketUpdate(ctx context.Context, entry *models.InsiderLogEntry) error {
	if entry == nil || entry.Symbol == "" {
		return fmt.Errorf("append update: empty symbol")
	}
	return r.appendLog(ctx, updatesKeyPrefix+entry.Symbol, entry, maxMarketUpdates)
}

func (r *MarketRepository) readLog(ctx context.Context, key string) ([]models.InsiderLogEntry, error) {
	var entries []models.InsiderLogEntry
	err := r.store.Get(ctx, key, &entries)
	if errors.Is(err, kv.ErrNotFound) {
		return []models.InsiderLogEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return entries, nil
}

func (r *MarketRepository) appendLog(ctx context.Context, key string, entry *models.InsiderLogEntry, limit int) error {
	entries, err := r.readLog(ctx, key)
	if err != nil {
		return err
	}
	entries = append([]models.InsiderLogEntry{*entry}, entries...)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	if err := r.store.Set(ctx, key, entries); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// IndexHistory returns the stored index series, oldest first.
func (r *MarketRepository) IndexHistory(ctx context.Context) ([]models.GlobalIndexPoint, error) {
	var points []models.GlobalIndexPoint
	err := r.store.Get(ctx, indexHistoryKey, &points)
	if errors.Is(err, kv.ErrNotFound) {
		return []models.GlobalIndexPoint{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get index history: %w", err)
	}
	return points, nil
}

// SetIndexHistory persists the series, keeping only the newest points.
func (r *MarketRepository) SetIndexHistory(ctx context.Context, points []models.GlobalIndexPoint) error {
	if len(points) > maxIndexPoints {
		points = points[len(points)-maxIndexPoints:]
	}
	if err := r.store.Set(ctx, indexHistoryKey, points); err != nil {
		return fmt.Errorf("set index history: %w", err)
	}
	return nil
}

// LockSymbol acquires the per-symbol write lock, retrying with a fixed wait.
// Returns ErrSymbolBusy once retries are exhausted.
func (r *MarketRepository) LockSymbol(ctx context.Context, symbol string) (func(), error) {
	key := lockKeyPrefix + symbol
	attempts := r.lockRetries + 1
	for i := 0; i < attempts; i++ {
		token, ok, err := r.store.TryLock(ctx, key, r.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", symbol, err)
		}
		if ok {
			return func() {
				if err := r.store.Unlock(context.Background(), key, token); err != nil {
					r.logger.Warn("unlock failed", applogger.String("symbol", symbol), applogger.Error(err))
				}
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.lockRetryWait):
		}
	}
	return nil, models.ErrSymbolBusy
}
