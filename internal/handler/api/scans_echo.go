package api

import (
	"net/http"
	"strings"
	"time"

	models "QuantSift/internal/domain/models"
	domrepo "QuantSift/internal/domain/repository"
	"QuantSift/internal/usecase"
	xhttp "QuantSift/pkg/http"
	xlogger "QuantSift/pkg/logger"
	"QuantSift/pkg/queue"
	"QuantSift/pkg/util"

	"github.com/labstack/echo/v4"
)

// ScansEchoHandler exposes the screening pipeline over HTTP.
type ScansEchoHandler struct {
	logger   *xlogger.Logger
	pipeline *usecase.ScanPipeline
	recorder *usecase.RunRecorder
	store    domrepo.ArtifactStore
	queue    queue.QueueService
	universe []string
}

func NewScansEchoHandler(
	logger *xlogger.Logger,
	pipeline *usecase.ScanPipeline,
	recorder *usecase.RunRecorder,
	store domrepo.ArtifactStore,
	q queue.QueueService,
	universe []string,
) *ScansEchoHandler {
	return &ScansEchoHandler{
		logger:   logger,
		pipeline: pipeline,
		recorder: recorder,
		store:    store,
		queue:    q,
		universe: universe,
	}
}

func (h *ScansEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/scan", h.Scan)
	g.GET("/runs/latest", h.LatestRun)
	g.GET("/runs", h.RunByID)
	g.GET("/records", h.Records)
	g.GET("/health", h.Health)
}

// Scan triggers a screening run. With async=true the request is queued and
// answered immediately; otherwise the run executes inline and the full
// artifact comes back in the response.
func (h *ScansEchoHandler) Scan(c echo.Context) error {
	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	universe := util.NormalizeTickers(req.Tickers)
	if len(universe) == 0 {
		universe = h.universe
	}
	if len(universe) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("no tickers requested and no configured universe"))
	}

	if req.Async {
		if h.queue == nil {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("async scans are not enabled"))
		}
		payload := usecase.ScanPayload{Universe: universe, DryRun: req.DryRun}
		if err := h.queue.PublishMessage(c.Request().Context(), usecase.ScanMessageType, payload); err != nil {
			h.logger.Error("scan enqueue error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.InternalError("scan enqueue failed").WithError(err))
		}
		return xhttp.DataResponse(c, http.StatusAccepted, map[string]any{"queued": true})
	}

	artifact, err := h.pipeline.Run(c.Request().Context(), universe)
	if err != nil {
		h.logger.Error("scan usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("scan failed").WithError(err))
	}
	if req.DryRun {
		artifact.DryRun = true
	}
	if err := h.recorder.Record(c.Request().Context(), artifact); err != nil {
		h.logger.Error("scan record error",
			xlogger.String("run_id", artifact.RunID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("scan result could not be recorded").WithError(err))
	}
	return xhttp.SuccessResponse(c, artifact)
}

func (h *ScansEchoHandler) LatestRun(c echo.Context) error {
	artifact, err := h.store.LatestRun(c.Request().Context())
	if err != nil {
		h.logger.Error("latest run query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if artifact == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no completed runs"))
	}
	return xhttp.SuccessResponse(c, artifact)
}

func (h *ScansEchoHandler) RunByID(c echo.Context) error {
	req := &models.RunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if req.RunID == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("run_id is required"))
	}

	artifact, err := h.store.RunByID(c.Request().Context(), req.RunID)
	if err != nil {
		h.logger.Error("run query error",
			xlogger.String("run_id", req.RunID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if artifact == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("run not found"))
	}
	return xhttp.SuccessResponse(c, artifact)
}

func (h *ScansEchoHandler) Records(c echo.Context) error {
	req := &models.RecordsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	since := util.ParseTimeDefault(req.Since, time.Time{})

	recs, err := h.store.RecordsByTicker(c.Request().Context(), ticker, since, req.Limit)
	if err != nil {
		h.logger.Error("records query error",
			xlogger.String("ticker", req.Ticker), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, recs, int64(len(recs)))
}

func (h *ScansEchoHandler) Health(c echo.Context) error {
	if h.store != nil {
		if err := h.store.Health(c.Request().Context()); err != nil {
			return xhttp.DataResponse(c, http.StatusServiceUnavailable, map[string]any{
				"status": "degraded",
				"store":  err.Error(),
			})
		}
	}
	return xhttp.SuccessResponse(c, map[string]any{"status": "ok"})
}
