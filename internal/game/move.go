package game

import (
	"strings"
	"time"
)

// PositionStatus is the part of a rules status query the record keeps.
type PositionStatus struct {
	Turn      string
	InCheck   bool
	Checkmate bool
	Stalemate bool
	GameOver  bool
}

// AuthorizeMove checks that identity may move right now. The turn check
// runs before the status check.
func (g *Game) AuthorizeMove(identity string) error {
	if identity == "" || g.PlayerOf(ColorFromTurn(g.Turn)) != identity {
		return ErrWrongTurn
	}
	if g.Status != StatusActive {
		return ErrGameNotActive
	}
	return nil
}

// RecordMove applies an accepted move: new position, flipped turn, history
// entry, last move and the status derived from st. A turn reported by st
// overrides the flip.
func (g *Game) RecordMove(from, to, promotion, newFEN string, st PositionStatus, now time.Time) {
	from, to = strings.ToLower(strings.TrimSpace(from)), strings.ToLower(strings.TrimSpace(to))
	next := ColorFromTurn(g.Turn).Opposite().Letter()

	g.Position = newFEN
	g.Turn = next
	g.History = append(g.History, MoveEntry{
		From:      from,
		To:        to,
		Promotion: promotion,
		FEN:       newFEN,
		Turn:      next,
	})
	g.LastMove = from + "-" + to

	switch {
	case st.Checkmate:
		g.Status = StatusCheckmate
	case st.Stalemate:
		g.Status = StatusStalemate
	case st.GameOver:
		g.Status = StatusDraw
	}
	g.InCheck = st.InCheck
	if st.Turn == "w" || st.Turn == "b" {
		g.Turn = st.Turn
	}
	g.touch(now)
}
