package inmemory

import "sync"

// Snapshot is the KPI payload served by GET /ops/kpi.
type Snapshot struct {
	PagesFetched   uint64 `json:"pages_fetched"`
	PortalsSaved   uint64 `json:"portals_saved"`
	ActionsSaved   uint64 `json:"actions_saved"`
	FeedErrors     uint64 `json:"feed_errors"`
	FramesRendered uint64 `json:"frames_rendered"`
	ActionsApplied uint64 `json:"actions_applied"`
	VisibleChanges uint64 `json:"visible_changes"`
}

// Recorder implements both ports.IngestMetrics and ports.ReplayMetrics
// with simple mutex-guarded counters, matching the teacher's action
// recorder in shape.
type Recorder struct {
	mu             sync.Mutex
	pagesFetched   uint64
	portalsSaved   uint64
	actionsSaved   uint64
	feedErrors     uint64
	framesRendered uint64
	actionsApplied uint64
	visibleChanges uint64
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) RecordPageFetched() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pagesFetched++
}

func (r *Recorder) RecordPortalsSaved(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.portalsSaved += uint64(n)
}

func (r *Recorder) RecordActionsSaved(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actionsSaved += uint64(n)
}

func (r *Recorder) RecordFeedError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feedErrors++
}

func (r *Recorder) RecordFrameRendered() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.framesRendered++
}

func (r *Recorder) RecordActionApplied(changed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actionsApplied++
	if changed {
		r.visibleChanges++
	}
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		PagesFetched:   r.pagesFetched,
		PortalsSaved:   r.portalsSaved,
		ActionsSaved:   r.actionsSaved,
		FeedErrors:     r.feedErrors,
		FramesRendered: r.framesRendered,
		ActionsApplied: r.actionsApplied,
		VisibleChanges: r.visibleChanges,
	}
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
