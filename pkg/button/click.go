package button

import (
	"context"
	"time"
)

// clickTick is the poll period inside a multi-click sequence, deliberately
// finer than typical button intervals so short gaps between clicks are not
// missed.
const clickTick = time.Millisecond

// ClickedOnce reports a full press-and-release click.
//
// It returns false immediately unless a press edge is pending on b. With a
// zero timeout it then blocks until the release edge arrives. With a
// positive timeout the release edge must arrive before the deadline; a
// release edge after the deadline is consumed and dropped, never reported
// late.
func ClickedOnce(ctx context.Context, b Button, timeout time.Duration) bool {
	if !b.ToPressed(ctx) {
		return false
	}
	if timeout > 0 {
		return until(ctx, b.ToReleased, timeout, b.Interval())
	}
	for !b.ToReleased(ctx) {
		if !sleep(ctx, b.Interval()) {
			return false
		}
	}
	return true
}

// Clicked reports times consecutive clicks completed before one shared
// deadline.
//
// The deadline covers the whole sequence from the initial press edge and is
// never reset between clicks: the remaining budget shrinks as earlier
// clicks spend it. times < 1 or a timeout under one millisecond never
// match.
func Clicked(ctx context.Context, b Button, timeout time.Duration, times int) bool {
	if times < 1 || timeout < time.Millisecond {
		return false
	}
	if !b.ToPressed(ctx) {
		return false
	}
	deadline := time.Now().Add(timeout)

	for i := 0; i < times-1; i++ {
		if !waitEdge(ctx, b.ToReleased, deadline) {
			return false
		}
		if !waitEdge(ctx, b.ToPressed, deadline) {
			return false
		}
	}
	return waitEdge(ctx, b.ToReleased, deadline)
}

// waitEdge polls an edge query until it fires or the deadline passes. The
// result is true only when the edge fired with budget still left; an edge
// that lands together with the deadline is dropped.
func waitEdge(ctx context.Context, edge func(context.Context) bool, deadline time.Time) bool {
	for !edge(ctx) && time.Now().Before(deadline) {
		if !sleep(ctx, clickTick) {
			return false
		}
	}
	return time.Now().Before(deadline)
}

// until polls cond at interval for at most timeout. Once the deadline
// passes the answer is false no matter how soon cond would have fired.
func until(ctx context.Context, cond func(context.Context) bool, timeout, interval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond(ctx) {
			return true
		}
		if !sleep(ctx, interval) {
			return false
		}
	}
	return false
}
