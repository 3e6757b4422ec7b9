package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"LovePulse/internal/domain/models"
	"LovePulse/internal/repository"
	"LovePulse/pkg/kv"
	pkgmetrics "LovePulse/pkg/metrics"
)

func newTestMarkets() *repository.MarketRepository {
	return repository.NewMarketRepository(kv.NewMemoryStore(),
		repository.WithLock(time.Second, 1, 5*time.Millisecond))
}

func TestApplyUpdateKnownVector(t *testing.T) {
	markets := newTestMarkets()
	ctx := context.Background()
	if err := markets.Set(ctx, &models.AssetRecord{Symbol: "JESSMIKE", Price: 50}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	u := NewMarketUpdater(markets, pkgmetrics.Nop{}, 50, nil)
	snap, err := u.ApplyUpdate(ctx, "JESSMIKE", "Jess & Mike", -8, 40)
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}

	if snap.Change != -3.2 {
		t.Errorf("adjusted move = %v, want -3.2", snap.Change)
	}
	if snap.Price != 48.40 {
		t.Errorf("price = %v, want 48.40", snap.Price)
	}

	rec, err := markets.Get(ctx, "JESSMIKE")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Price != 48.40 || rec.IsUp {
		t.Errorf("persisted = %+v", rec)
	}
}

func TestApplyUpdateCreatesUnseenSymbolAtBase(t *testing.T) {
	markets := newTestMarkets()
	u := NewMarketUpdater(markets, pkgmetrics.Nop{}, 50, nil)

	snap, err := u.ApplyUpdate(context.Background(), "NEWBIE", "New & Bee", 0, 100)
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}
	if snap.Price != 50 {
		t.Errorf("price = %v, want base 50", snap.Price)
	}

	rec, err := markets.Get(context.Background(), "NEWBIE")
	if err != nil {
		t.Fatalf("asset not created: %v", err)
	}
	if rec.Names != "New & Bee" {
		t.Errorf("names = %q", rec.Names)
	}
}

func TestApplyUpdatePriceFloorAndCeiling(t *testing.T) {
	markets := newTestMarkets()
	ctx := context.Background()
	u := NewMarketUpdater(markets, pkgmetrics.Nop{}, 50, nil)

	if err := markets.Set(ctx, &models.AssetRecord{Symbol: "LOW", Price: 0.6}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	for i := 0; i < 10; i++ {
		if _, err := u.ApplyUpdate(ctx, "LOW", "", -10, 100); err != nil {
			t.Fatalf("ApplyUpdate: %v", err)
		}
	}
	snap, _ := u.ApplyUpdate(ctx, "LOW", "", -10, 100)
	if snap.Price != models.PriceFloor {
		t.Errorf("floor = %v, want %v", snap.Price, models.PriceFloor)
	}

	if err := markets.Set(ctx, &models.AssetRecord{Symbol: "HIGH", Price: 9990}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := u.ApplyUpdate(ctx, "HIGH", "", 10, 100); err != nil {
			t.Fatalf("ApplyUpdate: %v", err)
		}
	}
	snap, _ = u.ApplyUpdate(ctx, "HIGH", "", 10, 100)
	if snap.Price != models.PriceCeiling {
		t.Errorf("ceiling = %v, want %v", snap.Price, models.PriceCeiling)
	}
}

func TestAdjustedMove(t *testing.T) {
	tests := []struct {
		move       float64
		confidence int
		want       float64
	}{
		{-8, 40, -3.2},
		{10, 100, 10},
		{10, 0, 2.5},   // factor floored at 0.25
		{10, 150, 10},  // factor capped at 1
		{-4, 10, -1},   // floored factor applies to negatives too
		{0, 80, 0},
		{3.333, 60, 2},
	}
	for _, tt := range tests {
		got := AdjustedMove(tt.move, tt.confidence)
		if got != tt.want {
			t.Errorf("AdjustedMove(%v, %d) = %v, want %v", tt.move, tt.confidence, got, tt.want)
		}
	}
}

func TestAdjustedMoveSignAndMagnitude(t *testing.T) {
	for _, move := range []float64{-10, -5.5, -0.01, 0.01, 4.2, 10} {
		for _, conf := range []int{0, 25, 50, 75, 100} {
			got := AdjustedMove(move, conf)
			if move > 0 && got < 0 || move < 0 && got > 0 {
				t.Errorf("sign flipped: move %v conf %d -> %v", move, conf, got)
			}
			if abs(got) > abs(move)+0.005 {
				t.Errorf("magnitude grew: move %v conf %d -> %v", move, conf, got)
			}
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestApplyUpdateSymbolBusy(t *testing.T) {
	markets := newTestMarkets()
	ctx := context.Background()

	release, err := markets.LockSymbol(ctx, "HELD")
	if err != nil {
		t.Fatalf("LockSymbol: %v", err)
	}
	defer release()

	u := NewMarketUpdater(markets, pkgmetrics.Nop{}, 50, nil)
	if _, err := u.ApplyUpdate(ctx, "HELD", "", 1, 100); !errors.Is(err, models.ErrSymbolBusy) {
		t.Errorf("err = %v, want ErrSymbolBusy", err)
	}
}
