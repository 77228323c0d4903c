package api

import (
	"context"
	"errors"
	"time"

	models "TickerPulse/internal/domain/models"
	domrepo "TickerPulse/internal/domain/repository"
	"TickerPulse/internal/service/trend"
	"TickerPulse/internal/usecase"
	"TickerPulse/pkg/cache"
	xhttp "TickerPulse/pkg/http"
	xlogger "TickerPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// HotStocksHandler serves the hot-stock list, snapshot history, and the
// manual scan trigger.
type HotStocksHandler struct {
	logger   *xlogger.Logger
	store    domrepo.SnapshotStore
	cache    cache.Service
	cacheTTL time.Duration
	pipeline *usecase.Pipeline
}

func NewHotStocksHandler(logger *xlogger.Logger, store domrepo.SnapshotStore, c cache.Service, cacheTTL time.Duration, pipeline *usecase.Pipeline) *HotStocksHandler {
	return &HotStocksHandler{logger: logger, store: store, cache: c, cacheTTL: cacheTTL, pipeline: pipeline}
}

func (h *HotStocksHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/hotstocks", h.HotStocks)
	g.GET("/snapshots", h.Snapshots)
	g.GET("/symbols/:symbol", h.SymbolHistory)
	g.POST("/scan", h.TriggerScan)
	e.GET("/healthz", h.Health)
}

// HotStocks returns the latest hot-stock list, served from cache when the
// last run populated it and recomputed from the snapshot store otherwise.
func (h *HotStocksHandler) HotStocks(c echo.Context) error {
	ctx := c.Request().Context()

	if h.cache != nil {
		var hot []models.HotStock
		err := h.cache.Get(ctx, usecase.HotStocksCacheKey, &hot)
		if err == nil {
			return xhttp.ListResponse(c, hot, int64(len(hot)))
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			h.logger.Error("hot stock cache read failed", xlogger.Error(err))
		}
	}

	snapshots, err := h.store.LatestN(ctx, 3)
	if err != nil {
		h.logger.Error("load snapshots failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	hot, err := trend.Detect(snapshots)
	if err != nil {
		if errors.Is(err, trend.ErrInsufficientHistory) {
			return xhttp.ListResponse(c, []models.HotStock{}, 0)
		}
		h.logger.Error("trend detection failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if h.cache != nil {
		// Repopulate so the next request between runs is a cache hit again.
		_ = h.cache.Set(ctx, usecase.HotStocksCacheKey, hot, h.cacheTTL)
	}
	return xhttp.ListResponse(c, hot, int64(len(hot)))
}

func (h *HotStocksHandler) Snapshots(c echo.Context) error {
	req := &models.SnapshotsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snapshots, err := h.store.LatestN(c.Request().Context(), req.N)
	if err != nil {
		h.logger.Error("load snapshots failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, snapshots, int64(len(snapshots)))
}

// SymbolHistory returns the symbol's mention count across the n newest
// snapshots, newest first. Runs where the symbol fell below the mention
// threshold report zero.
func (h *HotStocksHandler) SymbolHistory(c echo.Context) error {
	req := &models.SymbolHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snapshots, err := h.store.LatestN(c.Request().Context(), req.N)
	if err != nil {
		h.logger.Error("load snapshots failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if len(snapshots) == 0 {
		return xhttp.NotFoundResponse(c, "no snapshots on record")
	}

	history := make([]models.SymbolHistoryPoint, 0, len(snapshots))
	for _, s := range snapshots {
		history = append(history, models.SymbolHistoryPoint{
			RunID: s.RunID,
			Count: s.Get(req.Symbol),
		})
	}
	return xhttp.ListResponse(c, history, int64(len(history)))
}

// TriggerScan starts a pipeline run in the background. The pipeline itself
// serializes runs, so a trigger while any run is in flight, scheduled or
// manual, gets 409.
func (h *HotStocksHandler) TriggerScan(c echo.Context) error {
	if err := h.pipeline.RunAsync(context.Background()); err != nil {
		if errors.Is(err, usecase.ErrRunInFlight) {
			return xhttp.ConflictResponse(c, "a scan is already running")
		}
		h.logger.Error("trigger scan failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.AcceptedResponse(c, "scan started")
}

func (h *HotStocksHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, "ok")
}
