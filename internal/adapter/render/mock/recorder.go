// Package mock implements a Renderer that records the frames it's given
// instead of producing real output, for wiring the ingest/replay pipeline
// end to end without a real timelapse-rendering backend.
package mock

import (
	"sync"

	"timelapse/internal/domain/world"
)

// Recorder collects every frame handed to it in order. Finished reports
// whether Finish has been called, so callers can assert the pipeline
// closed out the renderer cleanly.
type Recorder struct {
	mu       sync.Mutex
	frames   []world.Frame
	finished bool
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) RenderFrame(frame world.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, frame)
	return nil
}

func (r *Recorder) Finish() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = true
	return nil
}

// Frames returns a copy of every frame recorded so far.
func (r *Recorder) Frames() []world.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]world.Frame, len(r.frames))
	copy(out, r.frames)
	return out
}

func (r *Recorder) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}
