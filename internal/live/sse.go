package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/park285/chess-room/pkg/roomdto"
)

var ErrStreamingUnsupported = errors.New("response writer does not support streaming")

// SetSSEHeaders applies headers that keep event streams stable across proxies.
func SetSSEHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	h.Set("X-Content-Type-Options", "nosniff")
}

// SSESink writes each event as one "data:" frame and flushes it.
type SSESink struct {
	w http.ResponseWriter
	f http.Flusher
}

func NewSSESink(w http.ResponseWriter) (*SSESink, error) {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	SetSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	f.Flush()
	return &SSESink{w: w, f: f}, nil
}

func (s *SSESink) Send(_ context.Context, msg roomdto.StreamMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}
