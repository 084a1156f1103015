package rules

import (
	"context"
	"strings"
	"testing"
)

func TestNativeValidateOpeningMove(t *testing.T) {
	n := NewNative()
	v, err := n.ValidateMove(context.Background(), StartingFEN, MoveRequest{From: "e2", To: "e4"})
	if err != nil {
		t.Fatalf("ValidateMove: %v", err)
	}
	if !v.Valid {
		t.Fatalf("expected e2e4 valid, reason=%q", v.Reason)
	}
	if !strings.Contains(v.NewPosition, " b ") {
		t.Fatalf("expected black to move, fen=%q", v.NewPosition)
	}
	if !strings.HasPrefix(v.NewPosition, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR") {
		t.Fatalf("unexpected placement: %q", v.NewPosition)
	}
	if v.Info.Check || v.Info.Captured != "" || v.Info.Promotion {
		t.Fatalf("unexpected move info: %+v", v.Info)
	}
}

func TestNativeRejectsIllegalMove(t *testing.T) {
	n := NewNative()
	v, err := n.ValidateMove(context.Background(), StartingFEN, MoveRequest{From: "e2", To: "e5"})
	if err != nil {
		t.Fatalf("ValidateMove: %v", err)
	}
	if v.Valid {
		t.Fatalf("expected e2e5 rejected")
	}
	if v.Reason != "Illegal move" {
		t.Fatalf("reason=%q", v.Reason)
	}
	if v.NewPosition != StartingFEN {
		t.Fatalf("position changed on rejection: %q", v.NewPosition)
	}
}

func TestNativeRejectsMalformedInput(t *testing.T) {
	n := NewNative()
	ctx := context.Background()
	cases := []struct {
		name   string
		fen    string
		mv     MoveRequest
		reason string
	}{
		{"bad from", StartingFEN, MoveRequest{From: "z9", To: "e4"}, "Invalid square notation"},
		{"bad to", StartingFEN, MoveRequest{From: "e2", To: "e"}, "Invalid square notation"},
		{"bad promotion", StartingFEN, MoveRequest{From: "e2", To: "e4", Promotion: "k"}, "Invalid promotion piece"},
		{"bad fen", "not a fen", MoveRequest{From: "e2", To: "e4"}, "Invalid FEN"},
	}
	for _, tc := range cases {
		v, err := n.ValidateMove(ctx, tc.fen, tc.mv)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if v.Valid || !strings.HasPrefix(v.Reason, tc.reason) {
			t.Fatalf("%s: got valid=%v reason=%q", tc.name, v.Valid, v.Reason)
		}
	}
}

func TestNativeCaptureAndCheckmate(t *testing.T) {
	n := NewNative()
	ctx := context.Background()
	// Fool's mate, black to deliver Qh4#.
	fen := "rnbqkbnr/pppp1ppp/8/4p3/6P1/5P2/PPPPP2P/RNBQKBNR b KQkq - 0 2"
	v, err := n.ValidateMove(ctx, fen, MoveRequest{From: "d8", To: "h4"})
	if err != nil || !v.Valid {
		t.Fatalf("Qh4 should be legal: v=%+v err=%v", v, err)
	}
	if !v.Info.Checkmate || !v.Info.Check || v.Info.Draw {
		t.Fatalf("expected checkmate info, got %+v", v.Info)
	}

	st, err := n.Status(ctx, v.NewPosition)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.InCheckmate || !st.InCheck || !st.GameOver || st.InDraw || st.Turn != "w" {
		t.Fatalf("unexpected status %+v", st)
	}

	// exd5 capture.
	capFEN := "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2"
	v, err = n.ValidateMove(ctx, capFEN, MoveRequest{From: "e4", To: "d5"})
	if err != nil || !v.Valid {
		t.Fatalf("exd5 should be legal: v=%+v err=%v", v, err)
	}
	if v.Info.Captured != "p" {
		t.Fatalf("captured=%q", v.Info.Captured)
	}
}

func TestNativePromotionAndStalemate(t *testing.T) {
	n := NewNative()
	ctx := context.Background()

	promoFEN := "8/4P3/8/8/8/8/k7/4K3 w - - 0 1"
	v, err := n.ValidateMove(ctx, promoFEN, MoveRequest{From: "e7", To: "e8", Promotion: "q"})
	if err != nil || !v.Valid {
		t.Fatalf("e8=Q should be legal: v=%+v err=%v", v, err)
	}
	if !v.Info.Promotion {
		t.Fatalf("expected promotion flag")
	}
	if !strings.HasPrefix(v.NewPosition, "4Q3/") {
		t.Fatalf("queen missing on e8: %q", v.NewPosition)
	}

	st, err := n.Status(ctx, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.InStalemate || !st.GameOver || !st.InDraw || st.InCheck || st.Turn != "b" {
		t.Fatalf("unexpected stalemate status %+v", st)
	}
}

func TestNativeStatusCheckAndInvalid(t *testing.T) {
	n := NewNative()
	ctx := context.Background()

	st, err := n.Status(ctx, "rnbqkbnr/ppppp1pp/8/5p1Q/4P3/8/PPPP1PPP/RNB1KBNR b KQkq - 1 2")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.InCheck || st.GameOver {
		t.Fatalf("expected plain check, got %+v", st)
	}

	st, err = n.Status(ctx, "garbage")
	if err != nil {
		t.Fatalf("Status invalid: %v", err)
	}
	if st != (Status{}) {
		t.Fatalf("invalid fen should fail closed with no turn, got %+v", st)
	}
}
