package usecase

import (
	"context"
	"errors"
	"testing"

	"LovePulse/internal/domain/models"
	"LovePulse/pkg/kv"
	pkgmetrics "LovePulse/pkg/metrics"

	"LovePulse/internal/repository"
)

type stubPulseGen struct {
	pu  *models.PulseUpdate
	err error
}

func (s *stubPulseGen) GeneratePulse(context.Context, string, string, float64) (*models.PulseUpdate, error) {
	return s.pu, s.err
}

func newPulseRefresher(markets *repository.MarketRepository, gen *stubPulseGen, feed *captureFeed) *PulseRefresher {
	index := NewIndexCalculator(markets, pkgmetrics.Nop{}, 75, nil)
	return NewPulseRefresher(markets, gen, index, feed, pkgmetrics.Nop{}, nil)
}

func TestRefreshUnknownAsset(t *testing.T) {
	markets := repository.NewMarketRepository(kv.NewMemoryStore())
	p := newPulseRefresher(markets, &stubPulseGen{}, &captureFeed{})

	if _, _, err := p.Refresh(context.Background(), "GHOST"); !errors.Is(err, models.ErrAssetNotFound) {
		t.Errorf("err = %v, want ErrAssetNotFound", err)
	}
}

func TestRefreshAppliesPulse(t *testing.T) {
	markets := repository.NewMarketRepository(kv.NewMemoryStore())
	ctx := context.Background()

	seed := &models.AssetRecord{Symbol: "JESSMIKE", Names: "Jess & Mike", Price: 50}
	seed.PropBets = []models.PropBet{{ID: "p1", Question: "q", YesOdds: "50%", NoOdds: "50%", RSI: 50}}
	if err := markets.Set(ctx, seed); err != nil {
		t.Fatalf("Set: %v", err)
	}

	gen := &stubPulseGen{pu: &models.PulseUpdate{
		Message:     "Unusual dessert-sharing activity.",
		Quote:       "Fine, we can split it.",
		Severity:    models.SeverityMed,
		MovePercent: 2,
	}}
	feed := &captureFeed{}
	p := newPulseRefresher(markets, gen, feed)

	rec, entry, err := p.Refresh(ctx, "JESSMIKE")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if rec.Price != 51 {
		t.Errorf("price = %v, want 51", rec.Price)
	}
	if !rec.IsUp || rec.Change != 2 {
		t.Errorf("change = %v isUp = %v", rec.Change, rec.IsUp)
	}
	if rec.AISummary != "Unusual dessert-sharing activity." {
		t.Errorf("aiSummary = %q", rec.AISummary)
	}

	if entry.Source != "INSIDER_NODE" || entry.Severity != models.SeverityMed {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Quote != "Fine, we can split it." {
		t.Errorf("quote = %q", entry.Quote)
	}

	logs, err := markets.InsiderLogs(ctx)
	if err != nil {
		t.Fatalf("InsiderLogs: %v", err)
	}
	if len(logs) != 1 || logs[0].ID != entry.ID {
		t.Errorf("insider log = %+v", logs)
	}
	if len(feed.entries) != 1 {
		t.Errorf("published = %d", len(feed.entries))
	}
}

func TestRefreshDegradedSource(t *testing.T) {
	markets := repository.NewMarketRepository(kv.NewMemoryStore())
	ctx := context.Background()
	if err := markets.Set(ctx, &models.AssetRecord{Symbol: "X", Price: 50}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	gen := &stubPulseGen{pu: &models.PulseUpdate{Message: "m", Severity: models.SeverityLow, MovePercent: -1, Degraded: true}}
	p := newPulseRefresher(markets, gen, &captureFeed{})

	_, entry, err := p.Refresh(ctx, "X")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if entry.Source != "MOCK_NODE" {
		t.Errorf("source = %q, want MOCK_NODE", entry.Source)
	}
}

func TestRefreshGeneratorFailure(t *testing.T) {
	markets := repository.NewMarketRepository(kv.NewMemoryStore())
	ctx := context.Background()
	if err := markets.Set(ctx, &models.AssetRecord{Symbol: "X", Price: 50}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	p := newPulseRefresher(markets, &stubPulseGen{err: &models.ClassificationError{Message: "down"}}, &captureFeed{})
	if _, _, err := p.Refresh(ctx, "X"); err == nil {
		t.Error("expected error")
	}

	rec, err := markets.Get(ctx, "X")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Price != 50 {
		t.Errorf("price moved despite failure: %v", rec.Price)
	}
}
