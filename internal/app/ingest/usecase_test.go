package ingest

import (
	"context"
	"errors"
	"testing"

	"timelapse/internal/app/ports"
	"timelapse/internal/domain/world"
)

type fakePortalRepo struct {
	byID map[string]world.Portal
}

func newFakePortalRepo() *fakePortalRepo {
	return &fakePortalRepo{byID: map[string]world.Portal{}}
}

func (r *fakePortalRepo) SaveAll(_ context.Context, portals []world.Portal) error {
	for _, p := range portals {
		if _, exists := r.byID[p.ID]; exists {
			continue
		}
		r.byID[p.ID] = p
	}
	return nil
}

func (r *fakePortalRepo) ListAll(_ context.Context) ([]world.Portal, error) {
	out := make([]world.Portal, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, nil
}

type fakeActionRepo struct {
	byID map[string]world.Action
}

func newFakeActionRepo() *fakeActionRepo {
	return &fakeActionRepo{byID: map[string]world.Action{}}
}

func (r *fakeActionRepo) SaveAll(_ context.Context, actions []world.Action) error {
	for _, a := range actions {
		if _, exists := r.byID[a.ID]; exists {
			continue
		}
		r.byID[a.ID] = a
	}
	return nil
}

func (r *fakeActionRepo) ListOrderedByTime(_ context.Context, fromMs, toMs int64) ([]world.Action, error) {
	return nil, nil
}

func (r *fakeActionRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.byID)), nil
}

type noopTx struct{}

func (noopTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type pagedFeed struct {
	pages []ports.FeedPage
	calls int
}

func (f *pagedFeed) FetchHistory(_ context.Context, untilMs int64) (ports.FeedPage, error) {
	if f.calls >= len(f.pages) {
		return ports.FeedPage{}, nil
	}
	p := f.pages[f.calls]
	f.calls++
	return p, nil
}

func sampleRecord(guid string, ts int64) ports.RawRecord {
	return ports.RawRecord{
		GUID:        guid,
		TimestampMs: ts,
		PlainText:   "Agent Alpha captured Some Portal",
		Markup: []ports.MarkupTag{
			{Type: "PLAYER", Team: "RESISTANCE"},
			{Type: "PORTAL", GUID: "p1", LatE6: 0, LngE6: 0},
		},
	}
}

func TestIngestPersistsNormalizedRecords(t *testing.T) {
	feed := &pagedFeed{pages: []ports.FeedPage{
		{Records: []ports.RawRecord{sampleRecord("e1", 1000)}, MinTimestampMs: 1000, HasMore: false},
	}}
	portals := newFakePortalRepo()
	actions := newFakeActionRepo()
	u := UseCase{Feed: feed, Portals: portals, Actions: actions, TxManager: noopTx{}}

	resp, err := u.Execute(context.Background(), Request{StartAtMs: 2000, StopBeforeMs: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ActionsSaved != 1 || resp.PortalsSaved != 1 {
		t.Fatalf("unexpected counts: %+v", resp)
	}
}

func TestIngestRejectsNegativeBounds(t *testing.T) {
	u := UseCase{Feed: &pagedFeed{}, Portals: newFakePortalRepo(), Actions: newFakeActionRepo(), TxManager: noopTx{}}

	if _, err := u.Execute(context.Background(), Request{StartAtMs: -1}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for negative StartAtMs, got %v", err)
	}
	if _, err := u.Execute(context.Background(), Request{StopBeforeMs: -1}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for negative StopBeforeMs, got %v", err)
	}
}

func TestIngestStopsCleanlyOnFeedError(t *testing.T) {
	u := UseCase{
		Feed: fetchErrorFeed{},
		Portals: newFakePortalRepo(),
		Actions: newFakeActionRepo(),
		TxManager: noopTx{},
	}
	resp, err := u.Execute(context.Background(), Request{StartAtMs: 2000})
	if err != nil {
		t.Fatalf("expected a feed error to terminate cleanly without propagating, got %v", err)
	}
	if !resp.StoppedOnError {
		t.Fatalf("expected StoppedOnError=true")
	}
}

type fetchErrorFeed struct{}

func (fetchErrorFeed) FetchHistory(context.Context, int64) (ports.FeedPage, error) {
	return ports.FeedPage{}, errors.New("network error")
}

func TestIngestStopsWhenOldestRecordCrossesLookbackFloor(t *testing.T) {
	feed := &pagedFeed{pages: []ports.FeedPage{
		{Records: []ports.RawRecord{sampleRecord("e1", 5000)}, MinTimestampMs: 5000, HasMore: true},
		{Records: []ports.RawRecord{sampleRecord("e2", 1000)}, MinTimestampMs: 1000, HasMore: true},
	}}
	u := UseCase{Feed: feed, Portals: newFakePortalRepo(), Actions: newFakeActionRepo(), TxManager: noopTx{}}

	resp, err := u.Execute(context.Background(), Request{StartAtMs: 6000, StopBeforeMs: 2000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.PagesFetched != 2 {
		t.Fatalf("expected exactly 2 pages fetched before the floor stopped the loop, got %d", resp.PagesFetched)
	}
}

// TestIdempotentIngestOverOverlappingWindows exercises scenario 6: running
// ingestion twice over overlapping windows must leave the same row counts
// as a single run over the union window, because SaveAll is
// insert-or-ignore keyed on the stable ids.
func TestIdempotentIngestOverOverlappingWindows(t *testing.T) {
	portals := newFakePortalRepo()
	actions := newFakeActionRepo()
	tx := noopTx{}

	runOnce := func(records []ports.RawRecord) {
		feed := &pagedFeed{pages: []ports.FeedPage{{Records: records, MinTimestampMs: 0, HasMore: false}}}
		u := UseCase{Feed: feed, Portals: portals, Actions: actions, TxManager: tx}
		if _, err := u.Execute(context.Background(), Request{StartAtMs: 9999}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	runOnce([]ports.RawRecord{sampleRecord("e1", 1000), sampleRecord("e2", 2000)})
	runOnce([]ports.RawRecord{sampleRecord("e2", 2000), sampleRecord("e3", 3000)})

	if len(actions.byID) != 3 {
		t.Fatalf("expected 3 distinct actions after overlapping runs, got %d", len(actions.byID))
	}
	if len(portals.byID) != 1 {
		t.Fatalf("expected 1 distinct portal (all records reference p1), got %d", len(portals.byID))
	}
}
