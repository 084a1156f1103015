package msgcat

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedErrors(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Error("WrongTurn", "", "x"); got != "Not your turn." {
		t.Fatalf("WrongTurn=%q", got)
	}
	if got := c.Error("IllegalMove", "Illegal move", "x"); got != "Illegal move" {
		t.Fatalf("IllegalMove with detail=%q", got)
	}
	if got := c.Error("NoSuchCode", "", "fallback"); got != "fallback" {
		t.Fatalf("unknown code=%q", got)
	}
}

func TestRenderTemplate(t *testing.T) {
	c := MustDefault()
	got, err := c.Render("game.reserved", map[string]any{"Color": "white", "Seconds": 180})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "white reserved for 180 seconds." {
		t.Fatalf("got %q", got)
	}
	if _, err := c.Render("game.reserved", map[string]any{"Color": "white"}); err == nil {
		t.Fatalf("missing template key should error")
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("errors:\n  WrongTurn: \"Wait for your turn.\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Error("WrongTurn", "", ""); got != "Wait for your turn." {
		t.Fatalf("override not applied: %q", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("errors:\n  WrongTurn: \"dup\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("duplicate override keys should fail")
	}
}

func TestNilCatalogFallback(t *testing.T) {
	var c *Catalog
	if got := c.Error("WrongTurn", "", "fb"); got != "fb" {
		t.Fatalf("nil catalog=%q", got)
	}
}
