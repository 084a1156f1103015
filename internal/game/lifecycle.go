package game

import "time"

// tryStart moves a waiting game to active once both seats are committed and
// ready. It reports whether the transition happened.
func (g *Game) tryStart() bool {
	if g.Status != StatusWaiting {
		return false
	}
	if g.PlayerWhite == "" || g.PlayerBlack == "" || !g.ReadyWhite || !g.ReadyBlack {
		return false
	}
	g.Status = StatusActive
	return true
}

// MarkReady flags identity's color as ready and reports whether the game
// started as a result.
func (g *Game) MarkReady(identity string, now time.Time) (bool, error) {
	c, ok := g.ColorOf(identity)
	if !ok {
		return false, ErrNotAPlayer
	}
	if g.ReadyOf(c) {
		if !g.tryStart() {
			return false, nil
		}
		g.touch(now)
		return true, nil
	}
	g.setReady(c)
	started := g.tryStart()
	g.touch(now)
	return started, nil
}

// ChooseColor assigns c to identity directly, without a reservation.
// It is only allowed before either seat is taken and does not mark ready.
func (g *Game) ChooseColor(identity string, c Color, now time.Time) error {
	if c != White && c != Black {
		return ErrInvalidColor
	}
	g.ExpireStale(now)
	if _, ok := g.ColorOf(identity); ok {
		return ErrAlreadyPlayer
	}
	if g.PlayerOf(c) != "" {
		return ErrSlotTaken
	}
	if g.CommittedCount() > 0 {
		return ErrColorsChosen
	}
	if r, ok := g.Reservations[c]; ok && r.SessionID != identity {
		return ErrColorUnavailable
	}
	for rc, r := range g.Reservations {
		if r.SessionID == identity {
			delete(g.Reservations, rc)
		}
	}
	g.setPlayer(c, identity)
	g.touch(now)
	return nil
}

// Abandon ends a waiting or active game.
func (g *Game) Abandon(now time.Time) error {
	if g.Status.Terminal() {
		return ErrGameNotActive
	}
	g.Status = StatusAbandoned
	g.touch(now)
	return nil
}
