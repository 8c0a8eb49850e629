// Package ingest drives the paginated feed fetch described in component
// 4.4: newest-first pages, normalized and persisted atomically, until a
// lookback floor is reached.
package ingest

import (
	"context"
	"log"
	"time"

	"timelapse/internal/app/normalize"
	"timelapse/internal/app/ports"
	"timelapse/internal/domain/world"

	"github.com/google/uuid"
)

// UseCase drives one ingestion run end to end: fetch, normalize, persist,
// repeat until the lookback floor or a feed error stops the loop.
type UseCase struct {
	Feed          ports.FeedClient
	Portals       ports.PortalRepository
	Actions       ports.ActionRepository
	TxManager     ports.TxManager
	Metrics       ports.IngestMetrics
	Now           func() time.Time
	Politeness    time.Duration
	Sleep         func(time.Duration)
	StopRequested func() bool
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if req.StartAtMs < 0 || req.StopBeforeMs < 0 {
		return Response{}, ErrInvalidRequest
	}

	runID := uuid.New().String()

	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	sleep := u.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	cursor := req.StartAtMs
	if cursor <= 0 {
		cursor = nowFn().UnixMilli()
	}

	log.Printf("ingest run %s: starting at cursor=%d stop_before=%d", runID, cursor, req.StopBeforeMs)

	var resp Response
	for {
		if u.StopRequested != nil && u.StopRequested() {
			log.Printf("ingest run %s: stop requested after %d pages", runID, resp.PagesFetched)
			break
		}

		page, err := u.Feed.FetchHistory(ctx, cursor)
		if err != nil {
			log.Printf("ingest run %s: feed error at cursor=%d: %v", runID, cursor, err)
			if u.Metrics != nil {
				u.Metrics.RecordFeedError()
			}
			resp.StoppedOnError = true
			break
		}
		resp.PagesFetched++
		if u.Metrics != nil {
			u.Metrics.RecordPageFetched()
		}

		if len(page.Records) == 0 {
			break
		}

		portals, actions := normalizePage(page.Records)

		if err := u.TxManager.RunInTx(ctx, func(ctx context.Context) error {
			if len(portals) > 0 {
				if err := u.Portals.SaveAll(ctx, portals); err != nil {
					return err
				}
			}
			if len(actions) > 0 {
				if err := u.Actions.SaveAll(ctx, actions); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return resp, err
		}

		resp.PortalsSaved += len(portals)
		resp.ActionsSaved += len(actions)
		if u.Metrics != nil {
			u.Metrics.RecordPortalsSaved(len(portals))
			u.Metrics.RecordActionsSaved(len(actions))
		}

		if !page.HasMore || page.MinTimestampMs <= 0 {
			break
		}
		if page.MinTimestampMs < req.StopBeforeMs {
			break
		}
		cursor = page.MinTimestampMs - 1

		if u.Politeness > 0 {
			sleep(u.Politeness)
		}
	}
	log.Printf("ingest run %s: finished, pages=%d portals=%d actions=%d stopped_on_error=%v",
		runID, resp.PagesFetched, resp.PortalsSaved, resp.ActionsSaved, resp.StoppedOnError)
	return resp, nil
}

// normalizePage normalizes every record in a page, deduplicating portals
// by id within the page: the feed can mention the same portal in several
// records, and SaveAll should not be handed duplicate primary keys.
func normalizePage(records []ports.RawRecord) ([]world.Portal, []world.Action) {
	seenPortal := make(map[string]bool)
	portals := make([]world.Portal, 0, len(records))
	actions := make([]world.Action, 0, len(records))

	for _, rec := range records {
		result, dropped := normalize.Normalize(rec)
		if dropped {
			continue
		}
		actions = append(actions, result.Action)
		for _, p := range result.Portals {
			if p.ID == "" || seenPortal[p.ID] {
				continue
			}
			seenPortal[p.ID] = true
			portals = append(portals, p)
		}
	}
	return portals, actions
}
