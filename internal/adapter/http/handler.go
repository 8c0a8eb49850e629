package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"

	"timelapse/internal/app/ingest"
	"timelapse/internal/app/ports"
	"timelapse/internal/app/replay"
	"timelapse/internal/app/status"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// Handler wires the control surface's small set of operator-facing
// endpoints to the ingest, replay, and status use cases. There is no
// agent identity on this surface: every request acts on the single
// shared history store and simulator the process was started against.
//
// ingestInFlight and replayInFlight guard against a second concurrent
// run of the same kind, since neither use case is safe under concurrent
// writers; a zero-value Handler (as built directly in tests) leaves them
// nil and runs unguarded.
type Handler struct {
	IngestUC ingest.UseCase
	ReplayUC replay.UseCase
	StatusUC status.UseCase
	KPI      kpiSnapshotProvider

	ingestInFlight *atomic.Bool
	replayInFlight *atomic.Bool
}

// NewHandler builds a Handler with its concurrency guards initialized.
func NewHandler(ingestUC ingest.UseCase, replayUC replay.UseCase, statusUC status.UseCase, kpi kpiSnapshotProvider) Handler {
	return Handler{
		IngestUC:       ingestUC,
		ReplayUC:       replayUC,
		StatusUC:       statusUC,
		KPI:            kpi,
		ingestInFlight: &atomic.Bool{},
		replayInFlight: &atomic.Bool{},
	}
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())
	s.POST("/ingest", h.runIngest)
	s.POST("/replay", h.runReplay)
	s.GET("/state", h.state)
	s.GET("/ops/kpi", h.kpi)
	s.GET("/health", h.health)
}

type ingestRequest struct {
	StartAtMs    int64 `json:"start_at_ms"`
	StopBeforeMs int64 `json:"stop_before_ms"`
}

func (h Handler) runIngest(c context.Context, ctx *app.RequestContext) {
	var body ingestRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if h.ingestInFlight != nil {
		if !h.ingestInFlight.CompareAndSwap(false, true) {
			writeError(ctx, ingest.ErrIngestInProgress)
			return
		}
		defer h.ingestInFlight.Store(false)
	}
	resp, err := h.IngestUC.Execute(c, ingest.Request{StartAtMs: body.StartAtMs, StopBeforeMs: body.StopBeforeMs})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type replayRequest struct {
	SimulationStartMs int64 `json:"simulation_start_ms"`
	RecordingStartMs  int64 `json:"recording_start_ms"`
	StepSeconds       int   `json:"step_seconds"`
	PerAction         bool  `json:"per_action"`
}

func (h Handler) runReplay(c context.Context, ctx *app.RequestContext) {
	var body replayRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if h.replayInFlight != nil {
		if !h.replayInFlight.CompareAndSwap(false, true) {
			writeError(ctx, replay.ErrReplayInProgress)
			return
		}
		defer h.replayInFlight.Store(false)
	}
	resp, err := h.ReplayUC.Execute(c, replay.Request{
		SimulationStartMs: body.SimulationStartMs,
		RecordingStartMs:  body.RecordingStartMs,
		StepSeconds:       body.StepSeconds,
		PerAction:         body.PerAction,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) state(c context.Context, ctx *app.RequestContext) {
	resp, err := h.StatusUC.Execute(c, status.Request{})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func (h Handler) health(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, ingest.ErrInvalidRequest),
		errors.Is(err, replay.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ingest.ErrIngestInProgress),
		errors.Is(err, replay.ErrReplayInProgress):
		writeErrorBody(ctx, consts.StatusConflict, "in_progress", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
