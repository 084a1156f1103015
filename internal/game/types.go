package game

import (
	"strings"
	"time"
)

// StartingFEN is the position every new game begins from.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ReservationTimeout is the fixed lifetime of a color claim.
const ReservationTimeout = 180 * time.Second

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Colors lists both colors in display order.
var Colors = []Color{White, Black}

func ParseColor(s string) (Color, bool) {
	switch Color(strings.ToLower(strings.TrimSpace(s))) {
	case White:
		return White, true
	case Black:
		return Black, true
	default:
		return "", false
	}
}

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

// Letter is the FEN side-to-move letter.
func (c Color) Letter() string {
	if c == Black {
		return "b"
	}
	return "w"
}

func ColorFromTurn(turn string) Color {
	if turn == "b" {
		return Black
	}
	return White
}

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusCheckmate Status = "checkmate"
	StatusStalemate Status = "stalemate"
	StatusDraw      Status = "draw"
	StatusAbandoned Status = "abandoned"
)

func (s Status) Terminal() bool {
	switch s {
	case StatusCheckmate, StatusStalemate, StatusDraw, StatusAbandoned:
		return true
	default:
		return false
	}
}

type MoveEntry struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
	FEN       string `json:"fen"`
	Turn      string `json:"turn"`
}

type Reservation struct {
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (r Reservation) expired(now time.Time) bool {
	return now.Sub(r.Timestamp) >= ReservationTimeout
}

// Game is the stored record for one room.
type Game struct {
	ID             string                `json:"id"`
	Position       string                `json:"fen"`
	Status         Status                `json:"status"`
	Turn           string                `json:"turn"`
	InCheck        bool                  `json:"in_check"`
	History        []MoveEntry           `json:"move_history"`
	LastMove       string                `json:"last_move,omitempty"`
	PlayerWhite    string                `json:"player_white,omitempty"`
	PlayerBlack    string                `json:"player_black,omitempty"`
	ReadyWhite     bool                  `json:"white_ready"`
	ReadyBlack     bool                  `json:"black_ready"`
	Reservations   map[Color]Reservation `json:"color_reservations"`
	SpectatorCount int                   `json:"spectator_count"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

func New(id string, now time.Time) *Game {
	now = now.UTC()
	return &Game{
		ID:           id,
		Position:     StartingFEN,
		Status:       StatusWaiting,
		Turn:         "w",
		History:      []MoveEntry{},
		Reservations: map[Color]Reservation{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Clone returns a deep copy that shares nothing with g.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	c := *g
	c.History = append([]MoveEntry(nil), g.History...)
	if c.History == nil {
		c.History = []MoveEntry{}
	}
	c.Reservations = make(map[Color]Reservation, len(g.Reservations))
	for k, v := range g.Reservations {
		c.Reservations[k] = v
	}
	return &c
}

// touch advances UpdatedAt strictly, even within one clock tick.
func (g *Game) touch(now time.Time) {
	now = now.UTC()
	if !now.After(g.UpdatedAt) {
		now = g.UpdatedAt.Add(time.Nanosecond)
	}
	g.UpdatedAt = now
}

func (g *Game) PlayerOf(c Color) string {
	if c == Black {
		return g.PlayerBlack
	}
	return g.PlayerWhite
}

func (g *Game) setPlayer(c Color, identity string) {
	if c == Black {
		g.PlayerBlack = identity
	} else {
		g.PlayerWhite = identity
	}
}

func (g *Game) ReadyOf(c Color) bool {
	if c == Black {
		return g.ReadyBlack
	}
	return g.ReadyWhite
}

func (g *Game) setReady(c Color) {
	if c == Black {
		g.ReadyBlack = true
	} else {
		g.ReadyWhite = true
	}
}

// ColorOf returns the committed color of identity.
func (g *Game) ColorOf(identity string) (Color, bool) {
	if identity == "" {
		return "", false
	}
	switch identity {
	case g.PlayerWhite:
		return White, true
	case g.PlayerBlack:
		return Black, true
	}
	return "", false
}

func (g *Game) CommittedCount() int {
	n := 0
	if g.PlayerWhite != "" {
		n++
	}
	if g.PlayerBlack != "" {
		n++
	}
	return n
}

// Result is the outcome token of a terminal game, "" otherwise.
func (g *Game) Result() string {
	switch g.Status {
	case StatusCheckmate:
		// The side to move is the side that was mated.
		if g.Turn == "w" {
			return "black_win"
		}
		return "white_win"
	case StatusStalemate, StatusDraw:
		return "draw"
	case StatusAbandoned:
		return "abandoned"
	default:
		return ""
	}
}
