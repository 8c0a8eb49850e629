package memory

import (
	"context"
	"sort"

	"timelapse/internal/domain/world"
)

type ActionRepo struct {
	store *Store
}

func NewActionRepo(store *Store) ActionRepo {
	return ActionRepo{store: store}
}

func (r ActionRepo) SaveAll(_ context.Context, actions []world.Action) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, a := range actions {
		if _, exists := r.store.actions[a.ID]; exists {
			continue
		}
		r.store.actions[a.ID] = a
	}
	return nil
}

func (r ActionRepo) ListOrderedByTime(_ context.Context, fromMs, toMs int64) ([]world.Action, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]world.Action, 0, len(r.store.actions))
	for _, a := range r.store.actions {
		if fromMs > 0 && a.TimestampMs < fromMs {
			continue
		}
		if toMs > 0 && a.TimestampMs > toMs {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TimestampMs != out[j].TimestampMs {
			return out[i].TimestampMs < out[j].TimestampMs
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r ActionRepo) Count(_ context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.actions)), nil
}
