package obslog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/park285/chess-room/internal/config"
)

func TestLIsUsableBeforeInit(t *testing.T) {
	Set(nil)
	L().Info("before_init")
}

func TestInitWritesFile(t *testing.T) {
	t.Cleanup(func() {
		_ = Close()
		Set(nil)
	})
	path := filepath.Join(t.TempDir(), "nested", "room.log")
	err := Init(config.LogConfig{Level: "debug", Format: "json", ToFile: true, File: path})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	L().Info("game_create")
	_ = L().Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(raw)
	if !strings.Contains(line, `"msg":"game_create"`) || !strings.Contains(line, `"service":"chess-room"`) {
		t.Fatalf("log file missing event: %s", raw)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"WARNING": zapcore.WarnLevel,
		"debug":   zapcore.DebugLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
