package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/park285/chess-room/internal/game"
)

// SQLite serialises updates on one connection with immediate transactions.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("SQLITE_PATH is required for sqlite store")
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := Migrate(db, "sqlite3"); err != nil {
		_ = db.Close()
		return nil, err
	}
	// One writer connection serialises every read-modify-write.
	db.SetMaxOpenConns(1)
	return &SQLite{db: db}, nil
}

func (s *SQLite) Create(ctx context.Context, g *game.Game) error {
	raw, err := encode(g)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO games (id, record, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		g.ID, string(raw), string(g.Status), g.CreatedAt.UnixNano(), g.UpdatedAt.UnixNano())
	if isUniqueViolation(err) {
		return ErrExists
	}
	if err != nil {
		return fmt.Errorf("sqlite create %s: %w", g.ID, err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (*game.Game, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM games WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get %s: %w", id, err)
	}
	return decode([]byte(raw))
}

func (s *SQLite) Update(ctx context.Context, id string, fn MutateFunc) (*game.Game, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	err = tx.QueryRowContext(ctx, `SELECT record FROM games WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite read %s: %w", id, err)
	}
	cur, err := decode([]byte(raw))
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
		`UPDATE games SET record = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(newRaw), string(cur.Status), cur.UpdatedAt.UnixNano(), id); err != nil {
		return nil, fmt.Errorf("sqlite update %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite commit %s: %w", id, err)
	}
	return cur, nil
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
