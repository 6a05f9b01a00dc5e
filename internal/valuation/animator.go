package valuation

import (
	"context"
	"math"
	"time"
)

const defaultFrameInterval = 16 * time.Millisecond

// Animator renders a count-up from zero to the predicted price over a fixed
// duration. Each frame interpolates linearly on elapsed time and is formatted
// as currency, so intermediate values read the same as the final one.
type Animator struct {
	duration time.Duration
	interval time.Duration
}

// NewAnimator creates an animator. A non-positive duration renders a single
// final frame.
func NewAnimator(duration time.Duration) *Animator {
	return &Animator{duration: duration, interval: defaultFrameInterval}
}

// WithFrameInterval overrides the frame interval.
func (a *Animator) WithFrameInterval(interval time.Duration) *Animator {
	if interval > 0 {
		a.interval = interval
	}
	return a
}

// Animate counts up from 0 to end, calling render with each formatted frame.
// The final frame is always rendered exactly, even when ctx is cancelled
// mid-animation or the frame ticker skips.
func (a *Animator) Animate(ctx context.Context, end float64, render func(string)) {
	final := FormatINR(int64(math.Floor(end)))
	if a.duration <= 0 {
		render(final)
		return
	}

	start := time.Now()
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			render(final)
			return
		case now := <-ticker.C:
			progress := float64(now.Sub(start)) / float64(a.duration)
			if progress >= 1 {
				render(final)
				return
			}
			render(FormatINR(int64(math.Floor(progress * end))))
		}
	}
}
