package archive

import (
	"fmt"
	"strings"
	"time"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/chess-room/internal/game"
)

// SANMoves replays the history from the initial position and returns each
// move in SAN. Once a move cannot be replayed, the rest fall back to
// coordinate form.
func SANMoves(g *game.Game) []string {
	out := make([]string, 0, len(g.History))
	replay := nchess.NewGame()
	ok := true
	for _, h := range g.History {
		uci := strings.ToLower(h.From + h.To + h.Promotion)
		if ok {
			pos := replay.Position()
			mv, err := nchess.UCINotation{}.Decode(pos, uci)
			if err == nil {
				san := nchess.AlgebraicNotation{}.Encode(pos, mv)
				if err = replay.Move(mv, nil); err == nil {
					out = append(out, san)
					continue
				}
			}
			ok = false
		}
		out = append(out, uci)
	}
	return out
}

func pgnResult(g *game.Game) string {
	switch g.Result() {
	case "white_win":
		return "1-0"
	case "black_win":
		return "0-1"
	case "draw":
		return "1/2-1/2"
	default:
		return "*"
	}
}

// BuildPGN renders a PGN document for g with the given SAN list.
func BuildPGN(g *game.Game, sans []string) string {
	var b strings.Builder
	date := g.UpdatedAt
	if date.IsZero() {
		date = time.Now()
	}
	result := pgnResult(g)

	b.WriteString("[Event \"Chess Room\"]\n")
	fmt.Fprintf(&b, "[Site \"game %s\"]\n", sanitizePGN(g.ID))
	fmt.Fprintf(&b, "[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day())
	fmt.Fprintf(&b, "[White \"%s\"]\n", playerLabel(g.PlayerWhite))
	fmt.Fprintf(&b, "[Black \"%s\"]\n", playerLabel(g.PlayerBlack))
	fmt.Fprintf(&b, "[Termination \"%s\"]\n", sanitizePGN(string(g.Status)))
	fmt.Fprintf(&b, "[Result \"%s\"]\n\n", result)

	for i := 0; i < len(sans); i += 2 {
		fmt.Fprintf(&b, "%d. %s", i/2+1, strings.TrimSpace(sans[i]))
		if i+1 < len(sans) {
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(sans[i+1]))
		}
		b.WriteString(" ")
	}
	b.WriteString(result)
	return b.String()
}

// playerLabel shortens a session token so the PGN does not carry it whole.
func playerLabel(session string) string {
	session = sanitizePGN(session)
	if session == "" {
		return "?"
	}
	if len(session) > 8 {
		return session[:8]
	}
	return session
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
