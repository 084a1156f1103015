// Package store persists game records and serialises every
// read-modify-write on a single record.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/park285/chess-room/internal/game"
)

var (
	ErrNotFound = errors.New("game record not found")
	ErrExists   = errors.New("game record already exists")
	// ErrBusy is returned when optimistic retries ran out under contention.
	ErrBusy = errors.New("game record busy")
)

// MutateFunc edits a private copy of the record. Returning an error
// discards every change it made.
type MutateFunc func(g *game.Game) error

type Store interface {
	Create(ctx context.Context, g *game.Game) error
	Get(ctx context.Context, id string) (*game.Game, error)
	// Update runs fn under exclusive access to the record and persists the
	// copy only when fn returns nil. fn errors are returned unchanged.
	Update(ctx context.Context, id string, fn MutateFunc) (*game.Game, error)
	Close() error
}

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	Backend     string
	RedisURL    string
	DatabaseURL string
	SQLitePath  string
	RecordTTL   time.Duration
}

// Open builds the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendRedis:
		return NewRedis(ctx, cfg.RedisURL, cfg.RecordTTL)
	case BackendPostgres:
		return NewPostgres(ctx, cfg.DatabaseURL)
	case BackendSQLite:
		return NewSQLite(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
}

func encode(g *game.Game) ([]byte, error) {
	raw, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encode game %s: %w", g.ID, err)
	}
	return raw, nil
}

func decode(raw []byte) (*game.Game, error) {
	var g game.Game
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}
	if g.Reservations == nil {
		g.Reservations = map[game.Color]game.Reservation{}
	}
	if g.History == nil {
		g.History = []game.MoveEntry{}
	}
	return &g, nil
}
