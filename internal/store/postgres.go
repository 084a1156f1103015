package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/chess-room/internal/game"
)

// Postgres keeps records as JSONB rows and locks a row with SELECT ... FOR
// UPDATE for the duration of an update.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	db, err := OpenPostgresDB(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, "postgres"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// OpenPostgresDB opens and pings a pooled lib/pq handle.
func OpenPostgresDB(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return db, nil
}

func (p *Postgres) Create(ctx context.Context, g *game.Game) error {
	raw, err := encode(g)
	if err != nil {
		return err
	}
	res, err := p.db.ExecContext(ctx,
		`INSERT INTO games (id, record, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`,
		g.ID, string(raw), string(g.Status), g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres create %s: %w", g.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrExists
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, id string) (*game.Game, error) {
	var raw []byte
	err := p.db.QueryRowContext(ctx, `SELECT record FROM games WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres get %s: %w", id, err)
	}
	return decode(raw)
}

func (p *Postgres) Update(ctx context.Context, id string, fn MutateFunc) (*game.Game, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("postgres begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw []byte
	err = tx.QueryRowContext(ctx, `SELECT record FROM games WHERE id = $1 FOR UPDATE`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres lock %s: %w", id, err)
	}
	cur, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if err := fn(cur); err != nil {
		return nil, err
	}
	newRaw, err := encode(cur)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE games SET record = $2, status = $3, updated_at = $4 WHERE id = $1`,
		id, string(newRaw), string(cur.Status), cur.UpdatedAt); err != nil {
		return nil, fmt.Errorf("postgres update %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("postgres commit %s: %w", id, err)
	}
	return cur, nil
}

func (p *Postgres) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}
