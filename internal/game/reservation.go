package game

import "time"

// ExpireStale drops every reservation whose window has closed.
// It reports whether anything was removed.
func (g *Game) ExpireStale(now time.Time) bool {
	changed := false
	for c, r := range g.Reservations {
		if r.expired(now) {
			delete(g.Reservations, c)
			changed = true
		}
	}
	if changed {
		g.touch(now)
	}
	return changed
}

// AvailableAt lists colors with no committed player and no live reservation
// at now. It does not mutate g.
func (g *Game) AvailableAt(now time.Time) []Color {
	out := make([]Color, 0, 2)
	for _, c := range Colors {
		if g.PlayerOf(c) != "" {
			continue
		}
		if r, ok := g.Reservations[c]; ok && !r.expired(now) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ReservationExpiresIn returns whole seconds left on the reservation for c,
// 0 when there is none.
func (g *Game) ReservationExpiresIn(c Color, now time.Time) int {
	r, ok := g.Reservations[c]
	if !ok {
		return 0
	}
	left := ReservationTimeout - now.Sub(r.Timestamp)
	if left <= 0 {
		return 0
	}
	return int(left / time.Second)
}

// ReservedBy returns the color identity holds a live reservation on.
func (g *Game) ReservedBy(identity string, now time.Time) (Color, bool) {
	if identity == "" {
		return "", false
	}
	for _, c := range Colors {
		if r, ok := g.Reservations[c]; ok && r.SessionID == identity && !r.expired(now) {
			return c, true
		}
	}
	return "", false
}

// Reserve claims c for identity and returns the seconds until the claim
// lapses. Any other reservation held by identity is released.
func (g *Game) Reserve(identity string, c Color, now time.Time) (int, error) {
	if c != White && c != Black {
		return 0, ErrInvalidColor
	}
	g.ExpireStale(now)
	if _, ok := g.ColorOf(identity); ok {
		return 0, ErrAlreadyPlayer
	}
	if g.PlayerOf(c) != "" {
		return 0, ErrColorUnavailable
	}
	if r, ok := g.Reservations[c]; ok && r.SessionID != identity {
		return 0, ErrColorUnavailable
	}
	if r, ok := g.Reservations[c]; ok && r.SessionID == identity {
		// Re-reserving keeps the original window.
		return g.ReservationExpiresIn(c, now), nil
	}
	if other := c.Opposite(); g.Reservations[other].SessionID == identity {
		delete(g.Reservations, other)
	}
	g.Reservations[c] = Reservation{SessionID: identity, Timestamp: now.UTC()}
	g.touch(now)
	return g.ReservationExpiresIn(c, now), nil
}

// CancelReservation removes identity's reservation, if any.
func (g *Game) CancelReservation(identity string, now time.Time) bool {
	if identity == "" {
		return false
	}
	removed := false
	for c, r := range g.Reservations {
		if r.SessionID == identity {
			delete(g.Reservations, c)
			removed = true
		}
	}
	if removed {
		g.touch(now)
	}
	return removed
}

// Commit turns identity's live reservation into the player slot for that
// color, marks it ready and evaluates the start transition. It reports the
// assigned color and whether the game started.
func (g *Game) Commit(identity string, now time.Time) (Color, bool, error) {
	g.ExpireStale(now)
	if _, ok := g.ColorOf(identity); ok {
		return "", false, ErrAlreadyPlayer
	}
	c, ok := g.ReservedBy(identity, now)
	if !ok {
		return "", false, ErrNoReservation
	}
	if g.PlayerOf(c) != "" {
		return "", false, ErrSlotTaken
	}
	delete(g.Reservations, c)
	g.setPlayer(c, identity)
	g.setReady(c)
	started := g.tryStart()
	g.touch(now)
	return c, started, nil
}
