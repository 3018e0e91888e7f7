package bot

import (
	"context"
	"math/rand/v2"
	"time"
)

// Humanizer pauses for a random duration in [Min, Max] so replies do not land instantly
type Humanizer struct {
	Min time.Duration
	Max time.Duration
}

// Delay picks the next pause. A zero Max disables the pause.
func (h Humanizer) Delay() time.Duration {
	if h.Max <= 0 {
		return 0
	}
	lo, hi := h.Min, h.Max
	if lo < 0 {
		lo = 0
	}
	if hi < lo {
		hi = lo
	}
	if span := hi - lo; span > 0 {
		return lo + rand.N(span+1)
	}
	return lo
}

// Wait sleeps for Delay or until ctx is done, returning ctx.Err in the latter case
func (h Humanizer) Wait(ctx context.Context) error {
	d := h.Delay()
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
