package archive

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/park285/chess-room/internal/game"
)

func foolsMate() *game.Game {
	g := game.New("12345678", time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))
	g.PlayerWhite, g.PlayerBlack = "white-session-token", "black-session-token"
	for _, mv := range [][2]string{{"f2", "f3"}, {"e7", "e5"}, {"g2", "g4"}, {"d8", "h4"}} {
		g.History = append(g.History, game.MoveEntry{From: mv[0], To: mv[1]})
	}
	g.Status = game.StatusCheckmate
	g.Turn = "w"
	g.UpdatedAt = g.CreatedAt.Add(time.Minute)
	return g
}

func TestSANMovesReplaysHistory(t *testing.T) {
	sans := SANMoves(foolsMate())
	if len(sans) != 4 {
		t.Fatalf("sans=%v", sans)
	}
	if sans[0] != "f3" || sans[1] != "e5" || sans[2] != "g4" || !strings.HasPrefix(sans[3], "Qh4") {
		t.Fatalf("unexpected sans %v", sans)
	}
}

func TestSANMovesFallsBackToCoordinates(t *testing.T) {
	g := foolsMate()
	g.History[1] = game.MoveEntry{From: "e7", To: "e3"}
	sans := SANMoves(g)
	if sans[0] != "f3" || sans[1] != "e7e3" || sans[3] != "d8h4" {
		t.Fatalf("unexpected fallback %v", sans)
	}
}

func TestBuildPGN(t *testing.T) {
	g := foolsMate()
	pgn := BuildPGN(g, SANMoves(g))
	for _, want := range []string{
		`[Result "0-1"]`,
		`[Date "2026.05.04"]`,
		`[White "white-se"]`,
		`[Termination "checkmate"]`,
		"1. f3 e5 2. g4 Qh4",
	} {
		if !strings.Contains(pgn, want) {
			t.Fatalf("pgn missing %q:\n%s", want, pgn)
		}
	}
	if !strings.HasSuffix(pgn, "0-1") {
		t.Fatalf("pgn should end with result:\n%s", pgn)
	}
}

func TestSaveResultPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	repo, err := NewRepository(context.Background(), dsn)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	g := foolsMate()
	if err := repo.SaveResult(context.Background(), g); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	if err := repo.SaveResult(context.Background(), g); err != nil {
		t.Fatalf("SaveResult upsert: %v", err)
	}
	var result string
	if err := repo.db.QueryRow(`SELECT result FROM finished_games WHERE game_id = $1`, g.ID).Scan(&result); err != nil {
		t.Fatalf("select: %v", err)
	}
	if result != "black_win" {
		t.Fatalf("result=%q", result)
	}
}
