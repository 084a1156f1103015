package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/chess-room/internal/msgcat"
	"github.com/park285/chess-room/pkg/roomdto"
)

func main() {
	base := flag.String("url", "http://localhost:8080", "chess-room base URL")
	game := flag.String("game", "", "game id to watch")
	window := flag.Duration("for", 30*time.Second, "how long to watch")
	flag.Parse()

	if *game == "" {
		log.Fatal("-game is required")
	}
	wsURL, err := streamURL(*base, *game)
	if err != nil {
		log.Fatalf("bad url: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *window)
	defer cancel()

	dialCtx, dcancel := context.WithTimeout(ctx, 10*time.Second)
	conn, _, err := websocket.Dial(dialCtx, wsURL, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	dcancel()
	if err != nil {
		log.Fatalf("ws connect error: %v", err)
	}
	defer conn.CloseNow()
	log.Printf("watching %s", wsURL)
	cat := msgcat.MustDefault()

	for {
		var msg roomdto.StreamMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if errors.Is(err, context.DeadlineExceeded) || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				log.Printf("stream ended")
				return
			}
			log.Printf("read error: %v", err)
			return
		}
		line, done := describe(cat, msg)
		if line != "" {
			fmt.Println(line)
		}
		if done {
			return
		}
	}
}

// describe renders one stream message as a terminal line and reports whether
// the server has ended the stream.
func describe(cat *msgcat.Catalog, msg roomdto.StreamMessage) (string, bool) {
	switch {
	case msg.ConnectionClosed:
		return cat.Text("live.closed", nil, "Connection closed."), true
	case msg.Error != "":
		return "error: " + msg.Error, false
	case msg.IsSnapshot():
		s := msg.Snapshot
		return fmt.Sprintf("%s status=%s turn=%s last=%s check=%v spectators=%d available=%v result=%s",
			s.UpdatedAt, s.Status, s.Turn, s.LastMove, s.InCheck, s.Spectators, s.AvailableColors, s.Result), false
	}
	return "", false
}

func streamURL(base, game string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path += "/games/" + url.PathEscape(game) + "/ws"
	return u.String(), nil
}
