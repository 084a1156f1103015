package rules

import (
	"context"
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// Native evaluates positions in process with corentings/chess.
type Native struct{}

func NewNative() *Native { return &Native{} }

func (n *Native) ValidateMove(_ context.Context, fen string, mv MoveRequest) (Validation, error) {
	from := strings.ToLower(strings.TrimSpace(mv.From))
	to := strings.ToLower(strings.TrimSpace(mv.To))
	if !isSquare(from) {
		return invalid(fen, fmt.Sprintf("Invalid square notation: %s", mv.From)), nil
	}
	if !isSquare(to) {
		return invalid(fen, fmt.Sprintf("Invalid square notation: %s", mv.To)), nil
	}
	promo := strings.ToLower(strings.TrimSpace(mv.Promotion))
	if promo != "" && (len(promo) != 1 || !strings.Contains("qrbn", promo)) {
		return invalid(fen, fmt.Sprintf("Invalid promotion piece: %s", mv.Promotion)), nil
	}

	g, err := loadGame(fen)
	if err != nil {
		return invalid(fen, fmt.Sprintf("Invalid FEN: %v", err)), nil
	}
	before := g.Position().Board()
	mover := before.Piece(squareOf(from))

	if err := g.PushNotationMove(from+to+promo, nchess.UCINotation{}, nil); err != nil {
		return invalid(fen, "Illegal move"), nil
	}
	moves := g.Moves()
	last := moves[len(moves)-1]

	newFEN := g.FEN()
	method := g.Method()
	over := g.Outcome() != nchess.NoOutcome

	info := MoveInfo{
		Check:     last.HasTag(nchess.Check) || method == nchess.Checkmate,
		Checkmate: method == nchess.Checkmate,
		Stalemate: method == nchess.Stalemate,
		Draw:      over && method != nchess.Checkmate,
		Captured:  capturedType(before, mover, from, to),
		Promotion: promo != "",
	}
	return Validation{Valid: true, NewPosition: newFEN, Info: info}, nil
}

func (n *Native) Status(_ context.Context, fen string) (Status, error) {
	g, err := loadGame(fen)
	if err != nil {
		return closedStatus(fen), nil
	}
	method := g.Method()
	over := g.Outcome() != nchess.NoOutcome

	st := Status{
		Turn:                 turnLetter(g.Position().Turn()),
		InCheckmate:          method == nchess.Checkmate,
		InStalemate:          method == nchess.Stalemate,
		InsufficientMaterial: method == nchess.InsufficientMaterial,
		GameOver:             over,
		InDraw:               over && method != nchess.Checkmate,
	}
	st.InCheck = st.InCheckmate || sideToMoveAttacked(fen)
	for _, d := range g.EligibleDraws() {
		if d == nchess.ThreefoldRepetition {
			st.InThreefoldRepetition = true
		}
	}
	return st, nil
}

func loadGame(fen string) (*nchess.Game, error) {
	opt, err := nchess.FEN(strings.TrimSpace(fen))
	if err != nil {
		return nil, err
	}
	return nchess.NewGame(opt), nil
}

func isSquare(s string) bool {
	return len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}

func squareOf(s string) nchess.Square {
	return nchess.NewSquare(nchess.File(s[0]-'a'), nchess.Rank(s[1]-'1'))
}

func capturedType(before *nchess.Board, mover nchess.Piece, from, to string) string {
	if target := before.Piece(squareOf(to)); target != nchess.NoPiece {
		return strings.ToLower(target.Type().String())
	}
	// A pawn changing file onto an empty square took en passant.
	if mover.Type() == nchess.Pawn && from[0] != to[0] {
		return "p"
	}
	return ""
}

func turnLetter(c nchess.Color) string {
	if c == nchess.Black {
		return "b"
	}
	return "w"
}

// sideToMoveAttacked reports whether the king of the side to move is
// attacked, probing the same placement with the other side to move.
func sideToMoveAttacked(fen string) bool {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return false
	}
	king := nchess.WhiteKing
	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		king = nchess.BlackKing
		fields[1] = "w"
	}
	fields[3] = "-"
	g, err := loadGame(strings.Join(fields, " "))
	if err != nil {
		return false
	}
	var kingSq nchess.Square
	found := false
	for sq, p := range g.Position().Board().SquareMap() {
		if p == king {
			kingSq, found = sq, true
			break
		}
	}
	if !found {
		return false
	}
	for _, mv := range g.ValidMoves() {
		if mv.S2() == kingSq {
			return true
		}
	}
	return false
}
