package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/park285/chess-room/internal/live"
	"github.com/park285/chess-room/internal/obslog"
)

// eventsSSE streams snapshots as text/event-stream until the publisher
// stops or the client leaves.
func (s *Server) eventsSSE(w http.ResponseWriter, r *http.Request) {
	id := gameID(r)
	if _, err := s.mgr.GetGame(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	sink, err := live.NewSSESink(w)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.pub.Run(r.Context(), id, sink)
}

func (s *Server) eventsWS(w http.ResponseWriter, r *http.Request) {
	id := gameID(r)
	if _, err := s.mgr.GetGame(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  originPatterns(s.cfg.CORSOrigins),
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		obslog.L().Warn("live_ws_accept_error", zap.String("game_id", id), zap.Error(err))
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())
	reason := s.pub.Run(ctx, id, live.NewWSSink(conn))
	if reason != live.CloseClientGone {
		_ = conn.Close(websocket.StatusNormalClosure, string(reason))
	}
}

// originPatterns turns CORS origins into the host patterns websocket.Accept
// matches against. With none, Accept only admits same-host origins.
func originPatterns(origins []string) []string {
	explicit := explicitOrigins(origins)
	out := make([]string, 0, len(explicit))
	for _, o := range explicit {
		if i := strings.Index(o, "://"); i >= 0 {
			o = o[i+3:]
		}
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
