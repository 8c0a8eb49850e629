package memory

import (
	"sync"

	"timelapse/internal/domain/world"
)

// Store is the shared backing map for the in-memory port implementations
// used by tests and by a non-Postgres deployment mode. A single RWMutex
// protects both relations; TxManager.RunInTx holds the write lock for the
// duration of the callback, mirroring a GORM transaction's isolation.
type Store struct {
	mu      sync.RWMutex
	portals map[string]world.Portal
	actions map[string]world.Action
}

func NewStore() *Store {
	return &Store{
		portals: make(map[string]world.Portal),
		actions: make(map[string]world.Action),
	}
}
