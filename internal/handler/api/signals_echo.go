package api

import (
	"encoding/json"
	"errors"
	"time"

	models "stocklens/internal/domain/models"
	domrepo "stocklens/internal/domain/repository"
	icache "stocklens/internal/service/cache"
	"stocklens/internal/service/metrics"
	"stocklens/internal/service/ratelimit"
	"stocklens/internal/usecase"
	xhttp "stocklens/pkg/http"
	"stocklens/pkg/queue"
	xlogger "stocklens/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SignalsEchoHandler exposes the stored signal records and on-demand
// refreshes over HTTP. Reads never compute; refreshes go through the
// queue (or the refresher directly when the queue is disabled).
type SignalsEchoHandler struct {
	logger    *xlogger.Logger
	reader    *usecase.SignalReader
	refresher *usecase.Refresher
	queueSvc  queue.QueueService
	respCache icache.BytesCache
	rl        *ratelimit.Limiter
}

func NewSignalsEchoHandler(logger *xlogger.Logger, reader *usecase.SignalReader, refresher *usecase.Refresher) *SignalsEchoHandler {
	metrics.Register()
	return &SignalsEchoHandler{
		logger:    logger,
		reader:    reader,
		refresher: refresher,
		rl:        ratelimit.New(),
	}
}

// SetQueue injects the job queue for asynchronous refreshes.
func (h *SignalsEchoHandler) SetQueue(q queue.QueueService) { h.queueSvc = q }

// SetResponseCache injects a byte cache for serialized list responses.
func (h *SignalsEchoHandler) SetResponseCache(c icache.BytesCache) { h.respCache = c }

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/signals", h.List)
	g.GET("/signals/:symbol", h.Get)
	g.POST("/signals/:symbol/refresh", h.Refresh)
}

func (h *SignalsEchoHandler) Health(c echo.Context) error {
	if err := h.reader.Health(c.Request().Context()); err != nil {
		return xhttp.DataResponse(c, 503, map[string]string{"status": "degraded", "error": err.Error()})
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *SignalsEchoHandler) List(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues("list").Observe(time.Since(start).Seconds()) }()

	req := &models.ListSignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.Timeframe)

	cacheKey := "api:list:" + string(tf)
	if h.respCache != nil {
		if b, ok, err := h.respCache.GetBytes(cacheKey); err == nil && ok {
			return c.JSONBlob(200, b)
		}
	}

	recs, err := h.reader.List(c.Request().Context(), tf)
	if err != nil {
		metrics.APIErrors.WithLabelValues("list").Inc()
		h.logger.Error("list signals error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	if h.respCache != nil {
		if b, err := json.Marshal(xhttp.APIResponse{Status: 200, Message: "OK", Data: &xhttp.ListDataResponse{Rows: recs, Total: int64(len(recs))}}); err == nil {
			_ = h.respCache.SetBytes(cacheKey, b, 15*time.Second)
		}
	}
	return xhttp.ListResponse(c, recs, int64(len(recs)))
}

func (h *SignalsEchoHandler) Get(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues("get").Observe(time.Since(start).Seconds()) }()

	req := &models.GetSignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.Timeframe)

	rec, err := h.reader.Get(c.Request().Context(), req.Symbol, tf)
	if err != nil {
		if errors.Is(err, models.ErrSignalNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no signal for %s/%s", req.Symbol, tf))
		}
		metrics.APIErrors.WithLabelValues("get").Inc()
		h.logger.Error("get signal error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=30")
	return xhttp.SuccessResponse(c, rec)
}

func (h *SignalsEchoHandler) Refresh(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues("refresh").Observe(time.Since(start).Seconds()) }()

	req := &models.RefreshSignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.Timeframe)

	if !h.rl.Allow(c.RealIP()+":refresh", 3, 0.5) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many refresh requests", 429))
	}

	payload := usecase.RefreshPayload{Symbol: req.Symbol, Timeframe: string(tf), Force: req.Force}
	if h.queueSvc != nil {
		if err := h.queueSvc.PublishMessage(c.Request().Context(), usecase.RefreshJobType, payload); err != nil {
			metrics.APIErrors.WithLabelValues("refresh").Inc()
			h.logger.Error("enqueue refresh error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		return xhttp.DataResponse(c, 202, payload)
	}

	if err := h.refresher.RefreshKey(c.Request().Context(), req.Symbol, tf, req.Force); err != nil {
		metrics.APIErrors.WithLabelValues("refresh").Inc()
		h.logger.Error("refresh error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, payload)
}
