package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// DefaultWindow is the length of a Twitter rate limit window. It is also the
// wait used when a rate limited response carries no usable reset header.
const DefaultWindow = 15 * time.Minute

// Window is the rate limit state reported by the X-Rate-Limit-* headers.
type Window struct {
	Limit     int
	Remaining int
	Reset     time.Time

	// Known is false when the response carried none of the headers.
	Known bool
}

// Exhausted reports whether the window has no requests left.
func (w Window) Exhausted() bool {
	return w.Known && w.Remaining <= 0 && !w.Reset.IsZero()
}

// ParseWindow reads the rate limit headers of a response.
func ParseWindow(h http.Header) (w Window, err error) {
	if s := h.Get("X-Rate-Limit-Limit"); s != "" {
		if w.Limit, err = strconv.Atoi(s); err != nil {
			return w, err
		}
		w.Known = true
	}
	if s := h.Get("X-Rate-Limit-Remaining"); s != "" {
		if w.Remaining, err = strconv.Atoi(s); err != nil {
			return w, err
		}
		w.Known = true
	}
	if s := h.Get("X-Rate-Limit-Reset"); s != "" {
		sec, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return w, err
		}
		w.Reset = time.Unix(sec, 0)
		w.Known = true
	}
	return w, nil
}

// UntilReset returns how long to wait from now until the window resets.
// A missing reset falls back to DefaultWindow; a reset in the past gives a
// one second grace period.
func UntilReset(w Window, now time.Time) time.Duration {
	if w.Reset.IsZero() {
		return DefaultWindow
	}
	d := w.Reset.Sub(now)
	if d <= 0 {
		return time.Second
	}
	// Reset is second-granular.
	return d + time.Second
}

// NewPacer returns a limiter spreading requests evenly over per.
func NewPacer(requests int, per time.Duration) *rate.Limiter {
	if requests <= 0 || per <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(per/time.Duration(requests)), 1)
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
