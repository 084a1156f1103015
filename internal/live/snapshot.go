package live

import (
	"time"

	"github.com/park285/chess-room/internal/game"
	"github.com/park285/chess-room/pkg/roomdto"
)

// BuildSnapshot renders g as seen at now. It never mutates g: stale
// reservations are filtered, not purged.
func BuildSnapshot(g *game.Game, now time.Time) roomdto.Snapshot {
	avail := g.AvailableAt(now)
	colors := make([]string, 0, len(avail))
	for _, c := range avail {
		colors = append(colors, string(c))
	}
	return roomdto.Snapshot{
		FEN:                       g.Position,
		Status:                    string(g.Status),
		Turn:                      g.Turn,
		WhiteReady:                g.ReadyWhite,
		BlackReady:                g.ReadyBlack,
		Spectators:                g.SpectatorCount,
		InCheck:                   g.InCheck,
		LastMove:                  g.LastMove,
		GameOver:                  g.Status.Terminal(),
		Result:                    g.Result(),
		AvailableColors:           colors,
		WhiteReservationExpiresIn: g.ReservationExpiresIn(game.White, now),
		BlackReservationExpiresIn: g.ReservationExpiresIn(game.Black, now),
		HasWhitePlayer:            g.PlayerWhite != "",
		HasBlackPlayer:            g.PlayerBlack != "",
		UpdatedAt:                 g.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
