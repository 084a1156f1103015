package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

const bridgeHelperEnv = "CHESSROOM_BRIDGE_HELPER"

// TestBridgeHelperProcess is the fake bridge executable. It only does work
// when re-executed by the tests below.
func TestBridgeHelperProcess(t *testing.T) {
	mode := os.Getenv(bridgeHelperEnv)
	if mode == "" {
		return
	}
	switch mode {
	case "garbage":
		fmt.Println("node: warning something")
		fmt.Println("not json at all")
		os.Exit(0)
	case "crash":
		fmt.Fprintln(os.Stderr, "boom")
		os.Exit(3)
	case "hang":
		time.Sleep(10 * time.Second)
		os.Exit(0)
	}

	var req wireRequest
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		os.Exit(2)
	}
	n := NewNative()
	var out any
	switch req.Op {
	case "validate":
		v, _ := n.ValidateMove(context.Background(), req.FEN, MoveRequest{From: req.From, To: req.To, Promotion: req.Promotion})
		out = fromValidation(v)
	default:
		out, _ = n.Status(context.Background(), req.FEN)
	}
	fmt.Println("debug line before payload")
	_ = json.NewEncoder(os.Stdout).Encode(out)
	os.Exit(0)
}

func newHelperBridge(t *testing.T, mode string, timeout time.Duration) *Bridge {
	t.Helper()
	t.Setenv(bridgeHelperEnv, mode)
	b, err := NewBridge(os.Args[0]+" -test.run=^TestBridgeHelperProcess$", timeout)
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	return b
}

func TestBridgeValidateAndStatus(t *testing.T) {
	b := newHelperBridge(t, "rules", 10*time.Second)
	ctx := context.Background()

	v, err := b.ValidateMove(ctx, StartingFEN, MoveRequest{From: "e2", To: "e4"})
	if err != nil {
		t.Fatalf("ValidateMove: %v", err)
	}
	if !v.Valid || !strings.Contains(v.NewPosition, " b ") {
		t.Fatalf("unexpected validation %+v", v)
	}

	v, err = b.ValidateMove(ctx, StartingFEN, MoveRequest{From: "e2", To: "e5"})
	if err != nil {
		t.Fatalf("ValidateMove illegal: %v", err)
	}
	if v.Valid || v.Reason == "" || v.NewPosition != StartingFEN {
		t.Fatalf("expected rejection with reason, got %+v", v)
	}

	st, err := b.Status(ctx, StartingFEN)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Turn != "w" || st.GameOver {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestBridgeFailsClosedOnGarbage(t *testing.T) {
	b := newHelperBridge(t, "garbage", 10*time.Second)
	v, err := b.ValidateMove(context.Background(), StartingFEN, MoveRequest{From: "e2", To: "e4"})
	if err != nil {
		t.Fatalf("garbage output should not be an error: %v", err)
	}
	if v.Valid || v.Reason != "Invalid output from validation script" {
		t.Fatalf("unexpected validation %+v", v)
	}
}

func TestBridgeGarbageStatusKeepsSideToMove(t *testing.T) {
	b := newHelperBridge(t, "garbage", 10*time.Second)
	ctx := context.Background()

	afterE4 := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	st, err := b.Status(ctx, afterE4)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Turn != "b" || st.GameOver {
		t.Fatalf("garbage status should fall back to the position's side to move, got %+v", st)
	}

	st, err = b.Status(ctx, "not a fen")
	if err != nil {
		t.Fatalf("Status bad fen: %v", err)
	}
	if st.Turn != "" {
		t.Fatalf("unreadable position should leave turn empty, got %q", st.Turn)
	}
}

func TestBridgeUnavailable(t *testing.T) {
	b := newHelperBridge(t, "crash", 10*time.Second)
	if _, err := b.ValidateMove(context.Background(), StartingFEN, MoveRequest{From: "e2", To: "e4"}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("crash: expected ErrUnavailable, got %v", err)
	}

	b = newHelperBridge(t, "hang", 200*time.Millisecond)
	if _, err := b.Status(context.Background(), StartingFEN); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("hang: expected ErrUnavailable, got %v", err)
	}
}

func TestNewBridgeRequiresCommand(t *testing.T) {
	if _, err := NewBridge("   ", time.Second); err == nil {
		t.Fatalf("expected error for empty command")
	}
	if _, err := NewBridge("definitely-not-a-real-binary-xyz", time.Second); err == nil {
		t.Fatalf("expected error for missing executable")
	}
}

func TestWireValidationAcceptsChessJSShape(t *testing.T) {
	raw := `{"valid":true,"new_fen":"x","move_info":{"check":false,"captured":"P","promotion":"q"}}`
	var w wireValidation
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	v := w.toValidation("old")
	if !v.Valid || v.Info.Captured != "p" || !v.Info.Promotion {
		t.Fatalf("unexpected %+v", v)
	}

	raw = `{"valid":true,"new_fen":"x","move_info":{"captured":null,"promotion":null}}`
	w = wireValidation{}
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	v = w.toValidation("old")
	if v.Info.Captured != "" || v.Info.Promotion {
		t.Fatalf("nulls should zero out, got %+v", v.Info)
	}
}
