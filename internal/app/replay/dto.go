package replay

import (
	"errors"

	"timelapse/internal/domain/world"
)

// ErrReplayInProgress is returned by the control surface when a second
// replay run is requested while one is already executing, mirroring
// ingest.ErrIngestInProgress.
var ErrReplayInProgress = errors.New("replay already in progress")

// Request configures one replay run, per the options table in component
// 4.5: the replay driver owns these, the core stays opaque to them.
type Request struct {
	SimulationStartMs int64
	RecordingStartMs  int64
	StepSeconds       int
	PerAction         bool
}

// Response is the full sequence of frames a replay run produced.
type Response struct {
	Frames []world.Frame
}
