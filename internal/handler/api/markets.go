package api

import (
	"errors"
	"io"
	"strings"

	"LovePulse/internal/domain/models"
	drepo "LovePulse/internal/domain/repository"
	"LovePulse/internal/service/ratelimit"
	"LovePulse/internal/usecase"
	xhttp "LovePulse/pkg/http"
	xlogger "LovePulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

const maxAudioBytes = 25 << 20

// Per-address token buckets for the expensive provider-backed routes.
const (
	analyzeBurst     = 3
	analyzePerSecond = 0.2
	pulseBurst       = 5
	pulsePerSecond   = 0.5
)

// MarketsHandler exposes the market surface: recording analysis, asset
// listing, seeding, pulse refresh and the index history.
type MarketsHandler struct {
	logger  *xlogger.Logger
	analyze *usecase.AnalyzeRecording
	pulse   *usecase.PulseRefresher
	index   *usecase.IndexCalculator
	markets drepo.Markets
	limiter *ratelimit.Limiter
}

// NewMarketsHandler creates the handler.
func NewMarketsHandler(
	logger *xlogger.Logger,
	analyze *usecase.AnalyzeRecording,
	pulse *usecase.PulseRefresher,
	index *usecase.IndexCalculator,
	markets drepo.Markets,
) *MarketsHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &MarketsHandler{
		logger:  logger,
		analyze: analyze,
		pulse:   pulse,
		index:   index,
		markets: markets,
		limiter: ratelimit.New(),
	}
}

// RegisterRoutes registers every market route on the canonical paths.
func (h *MarketsHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/analyze-recording", h.AnalyzeRecording)
	e.GET("/market-updates/:symbol", h.MarketUpdates)
	e.GET("/get-markets", h.GetMarkets)
	e.POST("/seed-global-markets", h.SeedMarkets)
	e.POST("/repair-prop-bets", h.RepairPropBets)
	e.POST("/refresh-market-pulse", h.RefreshPulse)
	e.GET("/get-gli-history", h.IndexHistory)
}

// AnalyzeRecording accepts a multipart recording and runs the full pipeline.
func (h *MarketsHandler) AnalyzeRecording(c echo.Context) error {
	if !h.limiter.Allow("analyze:"+c.RealIP(), analyzeBurst, analyzePerSecond) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("analysis rate limit exceeded"))
	}

	symbol := normalizeSymbol(c.FormValue("symbol"))
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol is required")
	}

	fh, err := c.FormFile("audio")
	if err != nil {
		return xhttp.BadRequestResponse(c, "audio file is required")
	}
	if fh.Size > maxAudioBytes {
		return xhttp.BadRequestResponse(c, "audio file too large")
	}
	f, err := fh.Open()
	if err != nil {
		return xhttp.BadRequestResponse(c, "audio file unreadable")
	}
	defer f.Close()
	audio, err := io.ReadAll(io.LimitReader(f, maxAudioBytes))
	if err != nil {
		return xhttp.BadRequestResponse(c, "audio file unreadable")
	}

	snap, update, err := h.analyze.Execute(c.Request().Context(), symbol, audio, fh.Header.Get("Content-Type"))
	if err != nil {
		h.logger.Error("analyze recording failed", xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapPipelineError(err))
	}

	return xhttp.SuccessResponse(c, models.AnalyzeRecordingResponse{
		Symbol: symbol,
		Market: snap,
		Update: update,
	})
}

// MarketUpdates returns the per-symbol feed, newest first.
func (h *MarketsHandler) MarketUpdates(c echo.Context) error {
	symbol := normalizeSymbol(c.Param("symbol"))
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol is required")
	}

	updates, err := h.markets.MarketUpdates(c.Request().Context(), symbol)
	if err != nil {
		h.logger.Error("market updates failed", xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, updates)
}

// GetMarkets lists every asset, repairing broken prop bet lists on the way.
func (h *MarketsHandler) GetMarkets(c echo.Context) error {
	assets, err := h.markets.GetAll(c.Request().Context())
	if err != nil {
		h.logger.Error("get markets failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, models.MarketsResponse{Assets: assets})
}

// SeedMarkets idempotently writes the default asset set.
func (h *MarketsHandler) SeedMarkets(c echo.Context) error {
	req := &models.SeedMarketsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	for i := range req.DefaultAssets {
		req.DefaultAssets[i].Symbol = normalizeSymbol(req.DefaultAssets[i].Symbol)
	}

	ctx := c.Request().Context()
	seeded, err := h.markets.SeedDefaults(ctx, req.DefaultAssets)
	if err != nil {
		h.logger.Error("seed markets failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if err := h.index.Recompute(ctx); err != nil {
		h.logger.Warn("index recompute after seed failed", xlogger.Error(err))
	}

	return xhttp.SuccessResponse(c, map[string]interface{}{
		"success": true,
		"seeded":  seeded,
	})
}

// RepairPropBets backfills missing prop bet lists across all assets.
func (h *MarketsHandler) RepairPropBets(c echo.Context) error {
	repaired, err := h.markets.RepairAll(c.Request().Context())
	if err != nil {
		h.logger.Error("prop bet repair failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{"repaired": repaired})
}

// RefreshPulse injects one synthetic market event for an existing asset.
func (h *MarketsHandler) RefreshPulse(c echo.Context) error {
	if !h.limiter.Allow("pulse:"+c.RealIP(), pulseBurst, pulsePerSecond) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("pulse rate limit exceeded"))
	}

	req := &models.PulseRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := normalizeSymbol(req.Symbol)

	asset, newLog, err := h.pulse.Refresh(c.Request().Context(), symbol)
	if err != nil {
		h.logger.Error("pulse refresh failed", xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapPipelineError(err))
	}

	return xhttp.SuccessResponse(c, models.PulseResponse{Asset: asset, NewLog: newLog})
}

// IndexHistory returns the stored index series, computing the first sample on
// demand when the series is empty.
func (h *MarketsHandler) IndexHistory(c echo.Context) error {
	ctx := c.Request().Context()
	history, err := h.markets.IndexHistory(ctx)
	if err != nil {
		h.logger.Error("index history failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	if len(history) == 0 {
		if err := h.index.Recompute(ctx); err != nil {
			h.logger.Error("index recompute failed", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		history, err = h.markets.IndexHistory(ctx)
		if err != nil {
			return xhttp.AppErrorResponse(c, err)
		}
	}

	return xhttp.SuccessResponse(c, models.IndexHistoryResponse{History: history})
}

// normalizeSymbol upper-cases and strips the optional leading dollar sign.
func normalizeSymbol(s string) string {
	s = strings.TrimSpace(strings.ToUpper(s))
	return strings.TrimPrefix(s, "$")
}

func mapPipelineError(err error) error {
	var te *models.TranscriptionError
	var ce *models.ClassificationError
	switch {
	case errors.Is(err, models.ErrAssetNotFound):
		return xhttp.NotFoundError("asset not found")
	case errors.Is(err, models.ErrSymbolBusy):
		return xhttp.ConflictError("symbol is being updated, retry shortly")
	case errors.As(err, &te):
		return xhttp.BadGatewayError(te.Message)
	case errors.As(err, &ce):
		return xhttp.BadGatewayError(ce.Message)
	default:
		return err
	}
}
