// Package room coordinates every operation on a game record: each one runs
// inside a single exclusive store update so concurrent callers observe a
// linear history per game.
package room

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/park285/chess-room/internal/archive"
	"github.com/park285/chess-room/internal/game"
	"github.com/park285/chess-room/internal/obslog"
	"github.com/park285/chess-room/internal/rules"
	"github.com/park285/chess-room/internal/store"
)

const createAttempts = 5

type Manager struct {
	store   store.Store
	rules   rules.Rules
	archive archive.Recorder
	now     func() time.Time
}

type Option func(*Manager)

// WithArchive records finished games through r.
func WithArchive(r archive.Recorder) Option {
	return func(m *Manager) { m.archive = r }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func NewManager(s store.Store, r rules.Rules, opts ...Option) *Manager {
	m := &Manager{store: s, rules: r, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Now is the manager's clock.
func (m *Manager) Now() time.Time { return m.now() }

// MoveResult is what a successful move reports back to the mover.
type MoveResult struct {
	Check      bool
	Captured   string
	Promotion  bool
	GameOver   bool
	GameStatus game.Status
	Game       *game.Game
}

func (m *Manager) CreateGame(ctx context.Context) (*game.Game, error) {
	for attempt := 1; attempt <= createAttempts; attempt++ {
		id, err := game.NewID()
		if err != nil {
			return nil, fmt.Errorf("generate game id: %w", err)
		}
		g := game.New(id, m.now())
		err = m.store.Create(ctx, g)
		if errors.Is(err, store.ErrExists) {
			obslog.L().Debug("game_id_collision", zap.String("game_id", id), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create game: %w", err)
		}
		obslog.L().Info("game_create", zap.String("game_id", id))
		return g, nil
	}
	return nil, fmt.Errorf("create game: no free id after %d attempts", createAttempts)
}

func (m *Manager) GetGame(ctx context.Context, id string) (*game.Game, error) {
	if !game.ValidID(id) {
		return nil, game.ErrGameNotFound
	}
	g, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return g, nil
}

// ResolveIdentity classifies identity within the game, counting spectators.
func (m *Manager) ResolveIdentity(ctx context.Context, id, identity string) (game.Resolution, *game.Game, error) {
	var res game.Resolution
	g, err := m.update(ctx, id, func(g *game.Game) error {
		res = g.Resolve(identity, m.now())
		return nil
	})
	if err != nil {
		return game.Resolution{}, nil, err
	}
	return res, g, nil
}

// ReserveColor returns the seconds left on the caller's reservation.
func (m *Manager) ReserveColor(ctx context.Context, id, identity, color string) (int, error) {
	c, ok := game.ParseColor(color)
	if !ok {
		return 0, game.ErrInvalidColor
	}
	var expiresIn int
	_, err := m.update(ctx, id, func(g *game.Game) error {
		var err error
		expiresIn, err = g.Reserve(identity, c, m.now())
		return err
	})
	if err != nil {
		return 0, err
	}
	obslog.L().Info("color_reserve",
		zap.String("game_id", id),
		zap.String("session", shortID(identity)),
		zap.String("color", string(c)),
		zap.Int("expires_in", expiresIn),
	)
	return expiresIn, nil
}

func (m *Manager) CancelReservation(ctx context.Context, id, identity string) (bool, error) {
	var cancelled bool
	_, err := m.update(ctx, id, func(g *game.Game) error {
		cancelled = g.CancelReservation(identity, m.now())
		return nil
	})
	if err != nil {
		return false, err
	}
	if cancelled {
		obslog.L().Info("color_reservation_cancel", zap.String("game_id", id), zap.String("session", shortID(identity)))
	}
	return cancelled, nil
}

// AvailableColors purges stale reservations before answering and persists
// the purge.
func (m *Manager) AvailableColors(ctx context.Context, id string) ([]game.Color, error) {
	var out []game.Color
	_, err := m.update(ctx, id, func(g *game.Game) error {
		now := m.now()
		g.ExpireStale(now)
		out = g.AvailableAt(now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Commit turns the caller's reservation into a seat. started reports the
// waiting to active transition.
func (m *Manager) Commit(ctx context.Context, id, identity string) (game.Color, bool, error) {
	var (
		color   game.Color
		started bool
	)
	_, err := m.update(ctx, id, func(g *game.Game) error {
		var err error
		color, started, err = g.Commit(identity, m.now())
		return err
	})
	if err != nil {
		return "", false, err
	}
	obslog.L().Info("color_commit",
		zap.String("game_id", id),
		zap.String("session", shortID(identity)),
		zap.String("color", string(color)),
		zap.Bool("game_started", started),
	)
	return color, started, nil
}

func (m *Manager) ChooseColor(ctx context.Context, id, identity, color string) (game.Color, error) {
	c, ok := game.ParseColor(color)
	if !ok {
		return "", game.ErrInvalidColor
	}
	_, err := m.update(ctx, id, func(g *game.Game) error {
		return g.ChooseColor(identity, c, m.now())
	})
	if err != nil {
		return "", err
	}
	obslog.L().Info("color_choose", zap.String("game_id", id), zap.String("session", shortID(identity)), zap.String("color", string(c)))
	return c, nil
}

func (m *Manager) MarkReady(ctx context.Context, id, identity string) (bool, error) {
	var started bool
	_, err := m.update(ctx, id, func(g *game.Game) error {
		var err error
		started, err = g.MarkReady(identity, m.now())
		return err
	})
	if err != nil {
		return false, err
	}
	obslog.L().Info("player_ready", zap.String("game_id", id), zap.String("session", shortID(identity)), zap.Bool("game_started", started))
	return started, nil
}

// AttemptMove authorizes, validates and applies one move atomically. The
// rules collaborator runs inside the critical section.
func (m *Manager) AttemptMove(ctx context.Context, id, identity string, mv rules.MoveRequest) (*MoveResult, error) {
	mv.From = strings.TrimSpace(mv.From)
	mv.To = strings.TrimSpace(mv.To)
	if mv.From == "" || mv.To == "" {
		return nil, game.ErrInvalidMove
	}

	var info rules.MoveInfo
	g, err := m.update(ctx, id, func(g *game.Game) error {
		if err := g.AuthorizeMove(identity); err != nil {
			return err
		}
		v, err := m.rules.ValidateMove(ctx, g.Position, mv)
		if err != nil {
			return game.Wrap(game.CodeRulesUnavailable, err, "rules service unavailable")
		}
		if !v.Valid {
			return game.Errorf(game.CodeIllegalMove, "%s", v.Reason)
		}
		st, err := m.rules.Status(ctx, v.NewPosition)
		if err != nil {
			return game.Wrap(game.CodeRulesUnavailable, err, "rules service unavailable")
		}
		g.RecordMove(mv.From, mv.To, mv.Promotion, v.NewPosition, game.PositionStatus{
			Turn:      st.Turn,
			InCheck:   st.InCheck,
			Checkmate: st.InCheckmate,
			Stalemate: st.InStalemate,
			GameOver:  st.GameOver,
		}, m.now())
		info = v.Info
		return nil
	})
	if err != nil {
		obslog.L().Debug("move_reject",
			zap.String("game_id", id),
			zap.String("session", shortID(identity)),
			zap.String("move", mv.UCI()),
			zap.String("code", string(game.CodeOf(err))),
		)
		return nil, err
	}

	res := &MoveResult{
		Check:      info.Check,
		Captured:   info.Captured,
		Promotion:  info.Promotion,
		GameOver:   g.Status.Terminal(),
		GameStatus: g.Status,
		Game:       g,
	}
	obslog.L().Info("move_apply",
		zap.String("game_id", id),
		zap.String("move", mv.UCI()),
		zap.String("turn", g.Turn),
		zap.String("status", string(g.Status)),
		zap.Int("ply", len(g.History)),
	)
	m.persistIfFinal(ctx, g)
	return res, nil
}

func (m *Manager) Abandon(ctx context.Context, id string) (*game.Game, error) {
	g, err := m.update(ctx, id, func(g *game.Game) error {
		return g.Abandon(m.now())
	})
	if err != nil {
		return nil, err
	}
	obslog.L().Info("game_abandon", zap.String("game_id", id))
	m.persistIfFinal(ctx, g)
	return g, nil
}

func (m *Manager) update(ctx context.Context, id string, fn store.MutateFunc) (*game.Game, error) {
	if !game.ValidID(id) {
		return nil, game.ErrGameNotFound
	}
	g, err := m.store.Update(ctx, id, fn)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return g, nil
}

// persistIfFinal archives terminal games. Failures are logged only.
func (m *Manager) persistIfFinal(ctx context.Context, g *game.Game) {
	if m.archive == nil || g == nil || !g.Status.Terminal() {
		return
	}
	if err := m.archive.SaveResult(ctx, g); err != nil {
		obslog.L().Warn("archive_save_error", zap.String("game_id", g.ID), zap.Error(err))
		return
	}
	obslog.L().Info("archive_save", zap.String("game_id", g.ID), zap.String("result", g.Result()))
}

func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return game.ErrGameNotFound
	case errors.Is(err, store.ErrBusy):
		return game.Wrap(game.CodeStoreBusy, err, "game is busy, try again")
	}
	if _, ok := game.AsError(err); ok {
		return err
	}
	return game.Wrap(game.CodeStoreBusy, err, "storage failure")
}

func shortID(identity string) string {
	if len(identity) > 8 {
		return identity[:8]
	}
	return identity
}
