package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/park285/chess-room/internal/game"
	"github.com/park285/chess-room/internal/live"
	"github.com/park285/chess-room/internal/render"
	"github.com/park285/chess-room/internal/rules"
	"github.com/park285/chess-room/pkg/roomdto"
)

func gameID(r *http.Request) string { return chi.URLParam(r, "id") }

func colorStrings(cs []game.Color) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, string(c))
	}
	return out
}

func (s *Server) createGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.mgr.CreateGame(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, roomdto.CreateResponse{
		Status:  "ok",
		GameID:  g.ID,
		Message: s.cat.Text("game.created", map[string]any{"ID": g.ID}, ""),
	})
}

func (s *Server) joinGame(w http.ResponseWriter, r *http.Request) {
	res, g, err := s.mgr.ResolveIdentity(r.Context(), gameID(r), SessionFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roomdto.JoinResponse{
		Status:          "ok",
		GameID:          g.ID,
		Role:            string(res.Role),
		PlayerColor:     string(res.Color),
		CanChooseColor:  res.Role == game.RoleJoiner || res.Role == game.RoleReserved,
		IsSpectator:     res.Role == game.RoleSpectator,
		AvailableColors: colorStrings(res.Available),
		ExpiresIn:       res.ExpiresIn,
		Game:            live.BuildSnapshot(g, s.mgr.Now()),
	})
}

func (s *Server) availableColors(w http.ResponseWriter, r *http.Request) {
	colors, err := s.mgr.AvailableColors(r.Context(), gameID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roomdto.ColorsResponse{Status: "ok", AvailableColors: colorStrings(colors)})
}

func (s *Server) readColor(w http.ResponseWriter, r *http.Request) (string, error) {
	var req roomdto.ColorRequest
	if err := decodeBody(w, r, &req, game.CodeInvalidColor); err != nil {
		return "", err
	}
	if req.Color == "" {
		req.Color = r.URL.Query().Get("color")
	}
	return strings.TrimSpace(req.Color), nil
}

func (s *Server) reserveColor(w http.ResponseWriter, r *http.Request) {
	color, err := s.readColor(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	left, err := s.mgr.ReserveColor(r.Context(), gameID(r), SessionFromContext(r.Context()), color)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, _ := game.ParseColor(color)
	writeJSON(w, http.StatusOK, roomdto.ReserveResponse{
		Status:    "ok",
		Color:     string(c),
		ExpiresIn: left,
		Message:   s.cat.Text("game.reserved", map[string]any{"Color": string(c), "Seconds": left}, ""),
	})
}

func (s *Server) cancelReservation(w http.ResponseWriter, r *http.Request) {
	ok, err := s.mgr.CancelReservation(r.Context(), gameID(r), SessionFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roomdto.CancelResponse{Status: "ok", Cancelled: ok})
}

func (s *Server) commitColor(w http.ResponseWriter, r *http.Request) {
	c, started, err := s.mgr.Commit(r.Context(), gameID(r), SessionFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	key := "game.committed"
	if started {
		key = "game.started"
	}
	writeJSON(w, http.StatusOK, roomdto.CommitResponse{
		Status:      "ok",
		Color:       string(c),
		GameStarted: started,
		Message:     s.cat.Text(key, map[string]any{"Color": string(c)}, ""),
	})
}

func (s *Server) chooseColor(w http.ResponseWriter, r *http.Request) {
	color, err := s.readColor(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.mgr.ChooseColor(r.Context(), gameID(r), SessionFromContext(r.Context()), color)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roomdto.ChooseResponse{
		Status:  "ok",
		Color:   string(c),
		Message: s.cat.Text("game.committed", map[string]any{"Color": string(c)}, ""),
	})
}

func (s *Server) markReady(w http.ResponseWriter, r *http.Request) {
	started, err := s.mgr.MarkReady(r.Context(), gameID(r), SessionFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	key := "game.ready"
	if started {
		key = "game.started"
	}
	writeJSON(w, http.StatusOK, roomdto.ReadyResponse{
		Status:      "ok",
		GameStarted: started,
		Message:     s.cat.Text(key, nil, ""),
	})
}

func (s *Server) makeMove(w http.ResponseWriter, r *http.Request) {
	var req roomdto.MoveRequest
	if err := decodeBody(w, r, &req, game.CodeInvalidMove); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.mgr.AttemptMove(r.Context(), gameID(r), SessionFromContext(r.Context()), rules.MoveRequest{
		From:      req.From,
		To:        req.To,
		Promotion: req.Promotion,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roomdto.MoveResponse{
		Status: "ok",
		MoveInfo: roomdto.MoveInfo{
			Check:      res.Check,
			Captured:   res.Captured,
			Promotion:  res.Promotion,
			GameOver:   res.GameOver,
			GameStatus: string(res.GameStatus),
		},
	})
}

func (s *Server) abandon(w http.ResponseWriter, r *http.Request) {
	g, err := s.mgr.Abandon(r.Context(), gameID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "game_status": string(g.Status)})
}

func (s *Server) boardImage(w http.ResponseWriter, r *http.Request) {
	g, err := s.mgr.GetGame(r.Context(), gameID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	size, _ := strconv.Atoi(q.Get("size"))
	flip := q.Get("flip") == "1" || strings.EqualFold(q.Get("flip"), "true")
	data, err := render.BoardPNG(r.Context(), g.Position, render.Options{
		Size:     size,
		Flip:     flip,
		LastMove: g.LastMove,
		InCheck:  g.InCheck,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
