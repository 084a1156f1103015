package live

import (
	"context"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/chess-room/pkg/roomdto"
)

const wsWriteTimeout = 5 * time.Second

// WSSink sends each event as one JSON text message.
type WSSink struct {
	conn *websocket.Conn
}

func NewWSSink(conn *websocket.Conn) *WSSink { return &WSSink{conn: conn} }

func (s *WSSink) Send(ctx context.Context, msg roomdto.StreamMessage) error {
	wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(wctx, s.conn, msg)
}
