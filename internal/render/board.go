// Package render draws a game position as a PNG board image.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"

	nchess "github.com/corentings/chess/v2"
	xdraw "golang.org/x/image/draw"
)

const (
	squareSize  = 72
	boardPixels = squareSize * 8
	MinSize     = 128
	MaxSize     = 1024
)

var (
	lightSquare  = color.RGBA{233, 207, 163, 255}
	darkSquare   = color.RGBA{187, 136, 96, 255}
	lastMoveFill = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	checkFill    = color.NRGBA{R: 230, G: 60, B: 60, A: 150}
)

type Options struct {
	// Size is the output edge in pixels; 0 keeps the native size.
	Size int
	// Flip draws the board from black's side.
	Flip bool
	// LastMove is "e2-e4" style; empty draws no highlight.
	LastMove string
	InCheck  bool
}

// BoardPNG renders fen to a square PNG.
func BoardPNG(ctx context.Context, fen string, opts Options) ([]byte, error) {
	fenOpt, err := nchess.FEN(strings.TrimSpace(fen))
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	pos := nchess.NewGame(fenOpt).Position()
	board := pos.Board()

	img := image.NewRGBA(image.Rect(0, 0, boardPixels, boardPixels))
	drawSquares(img, opts.Flip)
	if from, to, ok := parseLastMove(opts.LastMove); ok {
		drawSquareOverlay(img, from, opts.Flip, lastMoveFill)
		drawSquareOverlay(img, to, opts.Flip, lastMoveFill)
	}
	if opts.InCheck {
		if sq, ok := kingSquare(board, pos.Turn()); ok {
			drawSquareOverlay(img, sq, opts.Flip, checkFill)
		}
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := drawPieces(img, board, opts.Flip); err != nil {
		return nil, err
	}

	var out image.Image = img
	if opts.Size > 0 && opts.Size != boardPixels {
		size := clampSize(opts.Size)
		scaled := image.NewRGBA(image.Rect(0, 0, size, size))
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		out = scaled
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func clampSize(n int) int {
	if n < MinSize {
		return MinSize
	}
	if n > MaxSize {
		return MaxSize
	}
	return n
}

func squareRect(sq nchess.Square, flip bool) image.Rectangle {
	col, row := int(sq.File()), 7-int(sq.Rank())
	if flip {
		col, row = 7-col, 7-row
	}
	x, y := col*squareSize, row*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func squareColor(sq nchess.Square) color.Color {
	if (int(sq.File())+int(sq.Rank()))%2 == 0 {
		return darkSquare
	}
	return lightSquare
}

func drawSquares(dst imagedraw.Image, flip bool) {
	for f := 0; f < 8; f++ {
		for r := 0; r < 8; r++ {
			sq := nchess.NewSquare(nchess.File(f), nchess.Rank(r))
			imagedraw.Draw(dst, squareRect(sq, flip), image.NewUniform(squareColor(sq)), image.Point{}, imagedraw.Src)
		}
	}
}

func drawSquareOverlay(dst imagedraw.Image, sq nchess.Square, flip bool, clr color.Color) {
	imagedraw.Draw(dst, squareRect(sq, flip), image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawPieces(dst imagedraw.Image, board *nchess.Board, flip bool) error {
	for sq, piece := range board.SquareMap() {
		if piece == nchess.NoPiece {
			continue
		}
		img, err := renderPieceImage(piece, squareSize)
		if err != nil {
			return err
		}
		imagedraw.Draw(dst, squareRect(sq, flip), img, image.Point{}, imagedraw.Over)
	}
	return nil
}

func kingSquare(board *nchess.Board, side nchess.Color) (nchess.Square, bool) {
	king := nchess.WhiteKing
	if side == nchess.Black {
		king = nchess.BlackKing
	}
	for sq, p := range board.SquareMap() {
		if p == king {
			return sq, true
		}
	}
	return 0, false
}

func parseLastMove(s string) (nchess.Square, nchess.Square, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 5 || s[2] != '-' {
		return 0, 0, false
	}
	from, ok1 := parseSquare(s[:2])
	to, ok2 := parseSquare(s[3:])
	return from, to, ok1 && ok2
}

func parseSquare(s string) (nchess.Square, bool) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, false
	}
	return nchess.NewSquare(nchess.File(s[0]-'a'), nchess.Rank(s[1]-'1')), true
}
