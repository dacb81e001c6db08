// Package debounce provides change detection over a digital line: a
// transient detector, a saturating count filter, and a stable-change
// detector built from the two.
//
// Every filter comes in a blocking form, which sleeps unconditionally, and
// a context form, which suspends cancellably and reports ctx.Err() when
// aborted. The blocking forms suit firmware-style call sites with no
// context to thread; everything else should use the context forms.
package debounce

import (
	"context"
	"time"

	"github.com/Chen-HR/tactile/pkg/digital"
)

// step advances the count filter by one sample. A sample matching the
// target extends a non-negative run upward; a contradicting sample flips
// the counter to the opposite unit magnitude instead of merely stepping it
// back, so saturation always takes threshold consecutive agreeing samples.
func step(c int, match bool) int {
	if match {
		if c >= 0 {
			return c + 1
		}
		return 1
	}
	if c <= 0 {
		return c - 1
	}
	return -1
}

// Changed reports a transient change from level from to level to.
//
// It returns false immediately if the line does not currently read from.
// Otherwise it polls at interval until the line leaves from, then takes up
// to threshold further samples and returns true the first time to is
// observed. A true result carries no stability guarantee: a single bounce
// onto to satisfies it.
func Changed(line digital.Line, from, to digital.Signal, threshold int, interval time.Duration) bool {
	if line.Read() != from {
		return false
	}
	for line.Read() == from {
		time.Sleep(interval)
	}
	for i := 0; i < threshold; i++ {
		if line.Read() == to {
			return true
		}
		time.Sleep(interval)
	}
	return false
}

// ChangedContext is Changed with cancellable suspends.
func ChangedContext(ctx context.Context, line digital.Line, from, to digital.Signal, threshold int, interval time.Duration) (bool, error) {
	if line.Read() != from {
		return false, nil
	}
	for line.Read() == from {
		if err := sleep(ctx, interval); err != nil {
			return false, err
		}
	}
	for i := 0; i < threshold; i++ {
		if line.Read() == to {
			return true, nil
		}
		if err := sleep(ctx, interval); err != nil {
			return false, err
		}
	}
	return false, nil
}

// Count runs the saturating count filter against target.
//
// The counter starts at zero, moves per step for every sample and the loop
// exits exactly when it reaches +threshold or -threshold; the result
// reports whether it saturated on the target side. One interval is slept
// after every sample, the saturating one included. On a line that never
// holds a level for threshold consecutive samples the loop runs
// indefinitely; CountContext is the externally boundable form.
func Count(line digital.Line, target digital.Signal, threshold int, interval time.Duration) bool {
	c := 0
	for -threshold < c && c < threshold {
		c = step(c, line.Read() == target)
		time.Sleep(interval)
	}
	return c >= threshold
}

// CountContext is Count with cancellable suspends.
func CountContext(ctx context.Context, line digital.Line, target digital.Signal, threshold int, interval time.Duration) (bool, error) {
	c := 0
	for -threshold < c && c < threshold {
		c = step(c, line.Read() == target)
		if err := sleep(ctx, interval); err != nil {
			return false, err
		}
	}
	return c >= threshold, nil
}

// Stable reports a debounced change from level from to level to.
//
// If the line does not read from it sleeps one interval and returns false;
// the extra interval paces callers that retry it in a tight loop. Once the
// line leaves from the verdict is delegated to Count, so a true result
// means the line settled on to for threshold consecutive samples.
func Stable(line digital.Line, from, to digital.Signal, threshold int, interval time.Duration) bool {
	if line.Read() != from {
		time.Sleep(interval)
		return false
	}
	for line.Read() == from {
		time.Sleep(interval)
	}
	return Count(line, to, threshold, interval)
}

// StableContext is Stable with cancellable suspends.
func StableContext(ctx context.Context, line digital.Line, from, to digital.Signal, threshold int, interval time.Duration) (bool, error) {
	if line.Read() != from {
		if err := sleep(ctx, interval); err != nil {
			return false, err
		}
		return false, nil
	}
	for line.Read() == from {
		if err := sleep(ctx, interval); err != nil {
			return false, err
		}
	}
	return CountContext(ctx, line, to, threshold, interval)
}

// sleep suspends for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
