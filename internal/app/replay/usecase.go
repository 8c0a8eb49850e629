// Package replay drives the world simulator over a persisted action log,
// producing the frame sequence an external renderer turns into a
// timelapse. It is the read path's counterpart to package ingest: ingest
// writes normalized actions, replay plays them back.
package replay

import (
	"context"
	"errors"

	"timelapse/internal/app/ports"
	"timelapse/internal/domain/world"
)

var ErrInvalidRequest = errors.New("invalid replay request")

type UseCase struct {
	Portals ports.PortalRepository
	Actions ports.ActionRepository
	Metrics ports.ReplayMetrics
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if req.PerAction && req.StepSeconds > 0 {
		return Response{}, ErrInvalidRequest
	}

	catalog, err := u.Portals.ListAll(ctx)
	if err != nil {
		return Response{}, err
	}
	actions, err := u.Actions.ListOrderedByTime(ctx, req.SimulationStartMs, 0)
	if err != nil {
		return Response{}, err
	}

	sim := world.NewSimulator(catalog)

	if req.PerAction {
		return Response{Frames: u.replayPerAction(sim, actions, req.RecordingStartMs)}, nil
	}
	return Response{Frames: u.replayTimeStepped(sim, actions, req)}, nil
}

func (u UseCase) replayPerAction(sim *world.Simulator, actions []world.Action, recordingStartMs int64) []world.Frame {
	frames := make([]world.Frame, 0, len(actions))
	for _, a := range actions {
		changed := sim.ProcessAction(a)
		if u.Metrics != nil {
			u.Metrics.RecordActionApplied(changed)
		}
		if a.TimestampMs < recordingStartMs {
			continue
		}
		if !changed {
			continue
		}
		frames = append(frames, world.Frame{TimestampMs: a.TimestampMs, Changed: changed, State: sim.Snapshot()})
		if u.Metrics != nil {
			u.Metrics.RecordFrameRendered()
		}
	}
	return frames
}

func (u UseCase) replayTimeStepped(sim *world.Simulator, actions []world.Action, req Request) []world.Frame {
	if len(actions) == 0 {
		return nil
	}
	stepMs := int64(req.StepSeconds) * 1000
	if stepMs <= 0 {
		stepMs = 60_000
	}

	ticker := world.NewTicker(sim)
	frames := make([]world.Frame, 0)
	cursor := 0
	end := actions[len(actions)-1].TimestampMs
	start := actions[0].TimestampMs
	if req.SimulationStartMs > 0 {
		start = req.SimulationStartMs
	}

	for ts := start; ts <= end; ts += stepMs {
		frame, advanced := ticker.Step(actions[cursor:], ts)
		cursor += advanced
		if u.Metrics != nil {
			u.Metrics.RecordActionApplied(frame.Changed)
		}
		if ts < req.RecordingStartMs {
			continue
		}
		frames = append(frames, frame)
		if u.Metrics != nil {
			u.Metrics.RecordFrameRendered()
		}
	}
	return frames
}
