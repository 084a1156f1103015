// Package live streams game snapshots to subscribers. Each subscriber gets
// its own polling loop; a snapshot is sent only when the record's
// updated_at stamp moves.
package live

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/park285/chess-room/internal/backoff"
	"github.com/park285/chess-room/internal/game"
	"github.com/park285/chess-room/internal/obslog"
	"github.com/park285/chess-room/internal/store"
	"github.com/park285/chess-room/pkg/roomdto"
)

const serverErrorText = "Server error"

// Source reads a game for display. Implementations must report a missing
// game with store.ErrNotFound or game.ErrGameNotFound.
type Source interface {
	Get(ctx context.Context, id string) (*game.Game, error)
}

// Sink delivers one event to one subscriber.
type Sink interface {
	Send(ctx context.Context, msg roomdto.StreamMessage) error
}

type Config struct {
	Interval    time.Duration
	MaxTicks    int
	MaxErrors   int
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Interval:    500 * time.Millisecond,
		MaxTicks:    1200,
		MaxErrors:   5,
		BackoffBase: time.Second,
		BackoffMax:  8 * time.Second,
	}
}

// CloseReason says why a stream ended.
type CloseReason string

const (
	CloseMaxTicks   CloseReason = "max_ticks"
	CloseMaxErrors  CloseReason = "max_errors"
	CloseNotFound   CloseReason = "not_found"
	CloseClientGone CloseReason = "client_gone"
)

type Publisher struct {
	src       Source
	cfg       Config
	now       func() time.Time
	errorText string
}

type PublisherOption func(*Publisher)

func WithPublisherClock(now func() time.Time) PublisherOption {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

// WithErrorText replaces the text of transient error events.
func WithErrorText(text string) PublisherOption {
	return func(p *Publisher) {
		if text != "" {
			p.errorText = text
		}
	}
}

func NewPublisher(src Source, cfg Config, opts ...PublisherOption) *Publisher {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.MaxTicks <= 0 {
		cfg.MaxTicks = def.MaxTicks
	}
	if cfg.MaxErrors <= 0 {
		cfg.MaxErrors = def.MaxErrors
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = def.BackoffBase
	}
	if cfg.BackoffMax < cfg.BackoffBase {
		cfg.BackoffMax = cfg.BackoffBase
	}
	p := &Publisher{src: src, cfg: cfg, now: time.Now, errorText: serverErrorText}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// loopState is everything one subscriber loop carries between ticks.
type loopState struct {
	ticks             int
	consecutiveErrors int
	lastSeen          time.Time
	seen              bool
}

func (s *loopState) fail(cfg Config) time.Duration {
	s.consecutiveErrors++
	return backoff.Policy{Base: cfg.BackoffBase, Max: cfg.BackoffMax}.Delay(s.consecutiveErrors)
}

func (s *loopState) recover() {
	s.consecutiveErrors = 0
}

// Run drives one subscriber until a bound is hit, the game disappears or
// ctx ends. A final connection_closed event is sent in every case except
// ctx cancellation.
func (p *Publisher) Run(ctx context.Context, gameID string, sink Sink) CloseReason {
	var st loopState
	reason := p.loop(ctx, gameID, sink, &st)
	if reason != CloseClientGone {
		_ = sink.Send(ctx, roomdto.StreamMessage{ConnectionClosed: true})
	}
	obslog.L().Info("live_stream_close",
		zap.String("game_id", gameID),
		zap.String("reason", string(reason)),
		zap.Int("ticks", st.ticks),
		zap.Int("consecutive_errors", st.consecutiveErrors),
	)
	return reason
}

func (p *Publisher) loop(ctx context.Context, gameID string, sink Sink, st *loopState) CloseReason {
	for st.ticks < p.cfg.MaxTicks {
		if ctx.Err() != nil {
			return CloseClientGone
		}
		wait := p.cfg.Interval

		g, err := p.src.Get(ctx, gameID)
		switch {
		case err == nil:
			if !st.seen || !g.UpdatedAt.Equal(st.lastSeen) {
				snap := BuildSnapshot(g, p.now())
				if sendErr := sink.Send(ctx, roomdto.StreamMessage{Snapshot: &snap}); sendErr != nil {
					if ctx.Err() != nil {
						return CloseClientGone
					}
					obslog.L().Debug("live_send_error", zap.String("game_id", gameID), zap.Error(sendErr))
					wait = st.fail(p.cfg)
					break
				}
				st.seen, st.lastSeen = true, g.UpdatedAt
			}
			st.recover()
		case isNotFound(err):
			return CloseNotFound
		case ctx.Err() != nil:
			return CloseClientGone
		default:
			obslog.L().Warn("live_read_error", zap.String("game_id", gameID), zap.Error(err))
			_ = sink.Send(ctx, roomdto.StreamMessage{Error: p.errorText})
			wait = st.fail(p.cfg)
		}

		if st.consecutiveErrors >= p.cfg.MaxErrors {
			return CloseMaxErrors
		}
		st.ticks++
		if err := backoff.Sleep(ctx, wait); err != nil {
			return CloseClientGone
		}
	}
	return CloseMaxTicks
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound) || errors.Is(err, game.ErrGameNotFound)
}
