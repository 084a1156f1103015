// Package httpapi exposes the room manager and live streams over HTTP.
package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/park285/chess-room/internal/config"
	"github.com/park285/chess-room/internal/live"
	"github.com/park285/chess-room/internal/msgcat"
	"github.com/park285/chess-room/internal/room"
)

type Server struct {
	mgr *room.Manager
	pub *live.Publisher
	cat *msgcat.Catalog
	cfg config.ServerConfig
}

func NewServer(mgr *room.Manager, pub *live.Publisher, cat *msgcat.Catalog, cfg config.ServerConfig) *Server {
	if cat == nil {
		cat = msgcat.MustDefault()
	}
	return &Server{mgr: mgr, pub: pub, cat: cat, cfg: cfg}
}

// Router builds the full handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(AccessLog)

	r.Get("/healthz", s.health)

	r.Route("/games", func(r chi.Router) {
		r.Use(SessionMiddleware(s.cfg.SessionCookie, s.cfg.SecureCookie))
		r.Post("/", s.createGame)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.joinGame)
			r.Get("/colors", s.availableColors)
			r.Post("/reserve", s.reserveColor)
			r.Post("/cancel", s.cancelReservation)
			r.Post("/commit", s.commitColor)
			r.Post("/choose", s.chooseColor)
			r.Post("/ready", s.markReady)
			r.Post("/move", s.makeMove)
			r.Get("/events", s.eventsSSE)
			r.Get("/ws", s.eventsWS)
			r.Get("/board.png", s.boardImage)
			r.With(AdminTokenMiddleware(s.cfg.AdminToken)).Post("/abandon", s.abandon)
		})
	})

	return cors.New(corsOptions(s.cfg.CORSOrigins)).Handler(r)
}

// corsOptions admits explicit origins only, since credentials are allowed.
// Wildcard entries are dropped and an empty list denies every cross-origin
// request; rs/cors would otherwise treat it as allow-all.
func corsOptions(origins []string) cors.Options {
	opts := cors.Options{
		AllowedOrigins:   explicitOrigins(origins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowOriginFunc = func(string) bool { return false }
	}
	return opts
}

func explicitOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" || strings.Contains(o, "*") {
			continue
		}
		out = append(out, strings.TrimSuffix(o, "/"))
	}
	return out
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
