// apps/go-server/internal/store/memory.go
//
// In-memory session store for live match-3 games.
// Games are never persisted: state is lost when the process restarts.
//
// Characteristics:
//   - Stores *game.Game objects keyed by ID in a map.
//   - The map is guarded by an RWMutex; each entry has its own mutex so that
//     one swap/cascade per game runs at a time while other games proceed.
//   - Get returns a snapshot, never the live game, so readers cannot race a cascade.
//   - Every Save/Get/Update stamps the entry; IdleSince lists games nobody has
//     touched since a cutoff so the server can Delete them.

package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robalobadob/match3/apps/go-server/internal/game"
)

// ErrNotFound is returned for unknown game IDs.
var ErrNotFound = errors.New("game not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save adds or replaces a game.
	Save(ctx context.Context, g *game.Game) error

	// Get returns a snapshot of the game with the given ID.
	Get(ctx context.Context, id string) (game.Snapshot, error)

	// Update runs fn with exclusive access to the live game.
	// fn's error is returned unchanged.
	Update(ctx context.Context, id string, fn func(g *game.Game) error) error

	// Delete forgets a game. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// IdleSince returns the IDs of games last accessed before cutoff.
	IdleSince(ctx context.Context, cutoff time.Time) ([]string, error)
}

// entry serialises access to one game.
type entry struct {
	mu      sync.Mutex
	g       *game.Game
	touched atomic.Int64 // unix nanos of last access
}

func (e *entry) touch() { e.touched.Store(time.Now().UnixNano()) }

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex      // guards games map
	games map[string]*entry // keyed by Game.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]*entry)}
}

func (m *memory) Save(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := &entry{g: g}
	e.touch()
	m.games[g.ID] = e
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (game.Snapshot, error) {
	e, err := m.lookup(id)
	if err != nil {
		return game.Snapshot{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	return e.g.Snapshot(), nil
}

func (m *memory) Update(ctx context.Context, id string, fn func(g *game.Game) error) error {
	e, err := m.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	e.touch()
	return fn(e.g)
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}

func (m *memory) IdleSince(ctx context.Context, cutoff time.Time) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	limit := cutoff.UnixNano()
	var ids []string
	for id, e := range m.games {
		if e.touched.Load() < limit {
			ids = append(ids, id)
		}
	}
	return ids, ctx.Err()
}

func (m *memory) lookup(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.games[id]; ok {
		return e, nil
	}
	return nil, ErrNotFound
}
