package store

import (
	"context"
	"sync"

	"github.com/park285/chess-room/internal/game"
)

type memRecord struct {
	mu sync.Mutex
	g  *game.Game
}

// Memory keeps records in process with one mutex per record.
type Memory struct {
	mu      sync.RWMutex
	records map[string]*memRecord
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]*memRecord)}
}

func (m *Memory) Create(_ context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[g.ID]; ok {
		return ErrExists
	}
	m.records[g.ID] = &memRecord{g: g.Clone()}
	return nil
}

func (m *Memory) lookup(id string) (*memRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	return rec, ok
}

func (m *Memory) Get(_ context.Context, id string) (*game.Game, error) {
	rec, ok := m.lookup(id)
	if !ok {
		return nil, ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.g.Clone(), nil
}

func (m *Memory) Update(ctx context.Context, id string, fn MutateFunc) (*game.Game, error) {
	rec, ok := m.lookup(id)
	if !ok {
		return nil, ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	work := rec.g.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	rec.g = work
	return work.Clone(), nil
}

func (m *Memory) Close() error { return nil }
