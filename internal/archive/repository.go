// Package archive keeps a permanent row for every finished game.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/park285/chess-room/internal/game"
	"github.com/park285/chess-room/internal/store"
)

// Recorder is what the room manager needs from an archive.
type Recorder interface {
	SaveResult(ctx context.Context, g *game.Game) error
}

type Repository struct {
	db *sql.DB
}

func NewRepository(ctx context.Context, databaseURL string) (*Repository, error) {
	db, err := store.OpenPostgresDB(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(db, "postgres"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveResult upserts the archive row for a terminal game. Non-terminal
// games are ignored.
func (r *Repository) SaveResult(ctx context.Context, g *game.Game) error {
	if r == nil || r.db == nil || g == nil || !g.Status.Terminal() {
		return nil
	}
	sans := SANMoves(g)
	pgn := BuildPGN(g, sans)
	history, err := json.Marshal(g.History)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	duration := g.UpdatedAt.Sub(g.CreatedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	q := `INSERT INTO finished_games (
        game_id, result, status, white_session, black_session,
        move_count, history, pgn, final_fen, started_at, ended_at, duration_ms
      ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
      ) ON CONFLICT (game_id) DO UPDATE SET
        result=EXCLUDED.result,
        status=EXCLUDED.status,
        white_session=EXCLUDED.white_session,
        black_session=EXCLUDED.black_session,
        move_count=EXCLUDED.move_count,
        history=EXCLUDED.history,
        pgn=EXCLUDED.pgn,
        final_fen=EXCLUDED.final_fen,
        started_at=EXCLUDED.started_at,
        ended_at=EXCLUDED.ended_at,
        duration_ms=EXCLUDED.duration_ms`

	_, err = r.db.ExecContext(ctx, q,
		g.ID, g.Result(), string(g.Status), g.PlayerWhite, g.PlayerBlack,
		len(g.History), string(history), pgn, g.Position,
		g.CreatedAt, g.UpdatedAt, duration,
	)
	if err != nil {
		return fmt.Errorf("archive %s: %w", g.ID, err)
	}
	return nil
}
