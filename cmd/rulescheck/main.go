package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/chess-room/internal/config"
	"github.com/park285/chess-room/internal/obslog"
	"github.com/park285/chess-room/internal/rules"
)

func main() {
	fen := flag.String("fen", rules.StartingFEN, "position to check")
	move := flag.String("move", "e2e4", "move in coordinate form, e.g. e7e8q")
	serve := flag.String("serve", "", "serve the native rules over HTTP on this address instead")
	flag.Parse()

	logCfg, err := config.LoadLog()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.Init(logCfg); err != nil {
		log.Fatalf("logger init error: %v", err)
	}

	if *serve != "" {
		timeout := 5 * time.Second
		obslog.L().Info("rules_serve", zap.String("addr", *serve))
		if err := fasthttp.ListenAndServe(*serve, rules.Handler(rules.NewNative(), timeout)); err != nil {
			log.Fatalf("serve error: %v", err)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	impl, err := rules.New(rules.Config{
		Backend:       cfg.Rules.Backend,
		BridgeCommand: cfg.Rules.BridgeCommand,
		RemoteURL:     cfg.Rules.RemoteURL,
		Timeout:       cfg.Rules.Timeout,
	})
	if err != nil {
		log.Fatalf("rules init error: %v", err)
	}

	mv, ok := parseMove(*move)
	if !ok {
		log.Fatalf("bad move %q", *move)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Rules.Timeout+time.Second)
	defer cancel()

	v, err := impl.ValidateMove(ctx, *fen, mv)
	if err != nil {
		log.Fatalf("validate error: %v", err)
	}
	out := map[string]any{"backend": cfg.Rules.Backend, "validation": v}
	if v.Valid {
		st, err := impl.Status(ctx, v.NewPosition)
		if err != nil {
			log.Fatalf("status error: %v", err)
		}
		out["status"] = st
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

func parseMove(s string) (rules.MoveRequest, bool) {
	if len(s) != 4 && len(s) != 5 {
		return rules.MoveRequest{}, false
	}
	mv := rules.MoveRequest{From: s[:2], To: s[2:4]}
	if len(s) == 5 {
		mv.Promotion = s[4:]
	}
	return mv, true
}
