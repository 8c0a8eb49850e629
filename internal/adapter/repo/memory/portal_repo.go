package memory

import (
	"context"
	"sort"

	"timelapse/internal/domain/world"
)

type PortalRepo struct {
	store *Store
}

func NewPortalRepo(store *Store) PortalRepo {
	return PortalRepo{store: store}
}

func (r PortalRepo) SaveAll(_ context.Context, portals []world.Portal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range portals {
		if _, exists := r.store.portals[p.ID]; exists {
			continue
		}
		r.store.portals[p.ID] = p
	}
	return nil
}

func (r PortalRepo) ListAll(_ context.Context) ([]world.Portal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]world.Portal, 0, len(r.store.portals))
	for _, p := range r.store.portals {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
