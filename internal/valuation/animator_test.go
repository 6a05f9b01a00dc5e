package valuation

import (
	"context"
	"testing"
	"time"
)

func TestAnimateSettlesOnFinalValue(t *testing.T) {
	a := NewAnimator(40 * time.Millisecond).WithFrameInterval(5 * time.Millisecond)

	var frames []string
	a.Animate(context.Background(), 500000, func(s string) {
		frames = append(frames, s)
	})

	if len(frames) == 0 {
		t.Fatal("no frames rendered")
	}
	if last := frames[len(frames)-1]; last != "₹5,00,000" {
		t.Fatalf("final frame %q, want ₹5,00,000", last)
	}
}

func TestAnimateFramesAreMonotonic(t *testing.T) {
	a := NewAnimator(40 * time.Millisecond).WithFrameInterval(5 * time.Millisecond)

	var prev int64 = -1
	a.Animate(context.Background(), 500000, func(s string) {
		v := parseINR(t, s)
		if v < prev {
			t.Fatalf("frame went backwards: %d after %d", v, prev)
		}
		prev = v
	})
}

func TestAnimateZeroDurationRendersOnce(t *testing.T) {
	a := NewAnimator(0)
	count := 0
	var got string
	a.Animate(context.Background(), 500000, func(s string) {
		count++
		got = s
	})
	if count != 1 || got != "₹5,00,000" {
		t.Fatalf("expected single final frame, got %d frames, last %q", count, got)
	}
}

func TestAnimateCancelledContextStillRendersFinal(t *testing.T) {
	a := NewAnimator(time.Hour).WithFrameInterval(5 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got string
	a.Animate(ctx, 500000, func(s string) { got = s })
	if got != "₹5,00,000" {
		t.Fatalf("expected final frame on cancel, got %q", got)
	}
}

func parseINR(t *testing.T, s string) int64 {
	t.Helper()
	var v int64
	for _, r := range s {
		if r >= '0' && r <= '9' {
			v = v*10 + int64(r-'0')
		}
	}
	return v
}
