package main

import (
	"strings"
	"testing"

	"github.com/park285/chess-room/internal/msgcat"
	"github.com/park285/chess-room/pkg/roomdto"
)

func TestStreamURL(t *testing.T) {
	cases := map[string]string{
		"http://localhost:8080":   "ws://localhost:8080/games/12345678/ws",
		"https://chess.example/":  "wss://chess.example/games/12345678/ws",
		"ws://10.0.0.1:9000/room": "ws://10.0.0.1:9000/room/games/12345678/ws",
	}
	for in, want := range cases {
		got, err := streamURL(in, "12345678")
		if err != nil || got != want {
			t.Fatalf("streamURL(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := streamURL("ftp://x", "1"); err == nil {
		t.Fatalf("ftp should be rejected")
	}
}

func TestDescribe(t *testing.T) {
	cat := msgcat.MustDefault()

	line, done := describe(cat, roomdto.StreamMessage{ConnectionClosed: true})
	if !done || line != "Connection closed." {
		t.Fatalf("closed = %q, %v", line, done)
	}

	line, done = describe(cat, roomdto.StreamMessage{Error: "Server error"})
	if done || line != "error: Server error" {
		t.Fatalf("error = %q, %v", line, done)
	}

	snap := &roomdto.Snapshot{Status: "active", Turn: "b", LastMove: "e2-e4"}
	line, done = describe(cat, roomdto.StreamMessage{Snapshot: snap})
	if done || !strings.Contains(line, "turn=b") || !strings.Contains(line, "last=e2-e4") {
		t.Fatalf("snapshot = %q, %v", line, done)
	}

	if line, done = describe(nil, roomdto.StreamMessage{}); line != "" || done {
		t.Fatalf("empty message = %q, %v", line, done)
	}
}
