package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Silhouettes on a 45x45 canvas. %[1]s is the body fill, %[2]s the outline.
var pieceShapes = map[nchess.PieceType]string{
	nchess.Pawn: `<circle cx="22.5" cy="13" r="5" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>` +
		`<path d="M 17 21 L 28 21 L 31 32 L 14 32 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>` +
		`<rect x="11" y="32" width="23" height="5" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,
	nchess.Knight: `<path d="M 14 37 L 15 28 L 21 20 L 12 24 L 10 20 L 18 11 L 21 7 L 23 11 L 30 13 L 34 22 L 33 37 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>` +
		`<circle cx="21" cy="14" r="1.2" fill="%[2]s"/>`,
	nchess.Bishop: `<circle cx="22.5" cy="8" r="2.5" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>` +
		`<path d="M 22.5 11 L 30 20 L 27 30 L 18 30 L 15 20 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>` +
		`<rect x="10" y="32" width="25" height="5" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,
	nchess.Rook: `<path d="M 11 9 L 15 9 L 15 12 L 20 12 L 20 9 L 25 9 L 25 12 L 30 12 L 30 9 L 34 9 L 34 15 L 31 18 L 31 31 L 14 31 L 14 18 L 11 15 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>` +
		`<rect x="9" y="32" width="27" height="5" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,
	nchess.Queen: `<path d="M 9 30 L 6 13 L 14 24 L 15 10 L 19 23 L 22.5 9 L 26 23 L 30 10 L 31 24 L 39 13 L 36 30 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>` +
		`<rect x="9" y="31" width="27" height="6" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,
	nchess.King: `<path d="M 21 5 L 24 5 L 24 8 L 27 8 L 27 11 L 24 11 L 24 14 L 21 14 L 21 11 L 18 11 L 18 8 L 21 8 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>` +
		`<path d="M 11 31 L 7 21 L 15 16 L 22.5 22 L 30 16 L 38 21 L 34 31 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>` +
		`<rect x="10" y="32" width="25" height="5" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,
}

type pieceCacheKey struct {
	piece nchess.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

func pieceSVG(piece nchess.Piece) (string, error) {
	shape, ok := pieceShapes[piece.Type()]
	if !ok {
		return "", fmt.Errorf("no shape for piece %v", piece)
	}
	fill, stroke := "#ffffff", "#000000"
	if piece.Color() == nchess.Black {
		fill, stroke = "#202020", "#000000"
	}
	return `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45" width="45" height="45">` +
		fmt.Sprintf(shape, fill, stroke) + `</svg>`, nil
}

func renderPieceImage(piece nchess.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	src, err := pieceSVG(piece)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()

	return img, nil
}
