// Package backoff holds the wait policy shared by the store, rules and live
// retry loops.
package backoff

import (
	"context"
	"math"
	"time"
)

// Policy doubles the wait from Base on every attempt, capped at Max.
// A zero Max means no cap.
type Policy struct {
	Base time.Duration
	Max  time.Duration
}

// Delay returns the wait after the given failed attempt, counted from 1.
func (p Policy) Delay(attempt int) time.Duration {
	if p.Base <= 0 {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}
	d := p.Base
	for i := 1; i < attempt; i++ {
		if p.Max > 0 && d >= p.Max {
			break
		}
		if d > math.MaxInt64/2 {
			break
		}
		d *= 2
	}
	if p.Max > 0 && d > p.Max {
		d = p.Max
	}
	return d
}

// Sleep blocks for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
