package button

import (
	"context"
	"time"

	"github.com/Chen-HR/tactile/pkg/debounce"
	"github.com/Chen-HR/tactile/pkg/digital"
)

// Filtered wraps every query in the count filter: a state is reported only
// once threshold consecutive samples agree, which rides out contact bounce
// at the cost of threshold*interval of latency per query.
type Filtered struct {
	input
	events
	threshold int
}

// NewFiltered creates a count-filtered button. released is the line level
// of the button at rest; threshold is the number of consecutive agreeing
// samples a verdict needs.
func NewFiltered(line digital.Line, released digital.Signal, threshold int, interval time.Duration) (*Filtered, error) {
	in, err := newInput(line, released, interval)
	if err != nil {
		return nil, err
	}
	if threshold <= 0 {
		return nil, ErrThreshold
	}
	b := &Filtered{input: in, threshold: threshold}
	b.events.owner = b
	return b, nil
}

// State scans threshold consecutive samples. A scan that agrees on a
// single level maps through the polarity; anything mixed is Bouncing.
func (b *Filtered) State(ctx context.Context) State {
	highs := 0
	for i := 0; i < b.threshold; i++ {
		if b.line.Read() == digital.High {
			highs++
		}
		if !sleep(ctx, b.interval) {
			return Bouncing
		}
	}
	switch highs {
	case b.threshold:
		return b.stateOf(digital.High)
	case 0:
		return b.stateOf(digital.Low)
	default:
		return Bouncing
	}
}

// Released runs the count filter against the released level.
func (b *Filtered) Released(ctx context.Context) bool {
	ok, _ := debounce.CountContext(ctx, b.line, b.released, b.threshold, b.interval)
	return ok
}

// Pressed runs the count filter against the pressed level.
func (b *Filtered) Pressed(ctx context.Context) bool {
	ok, _ := debounce.CountContext(ctx, b.line, b.pressed, b.threshold, b.interval)
	return ok
}

// ToReleased reports a stable pressed->released change.
func (b *Filtered) ToReleased(ctx context.Context) bool {
	ok, _ := debounce.StableContext(ctx, b.line, b.pressed, b.released, b.threshold, b.interval)
	return ok
}

// ToPressed reports a stable released->pressed change.
func (b *Filtered) ToPressed(ctx context.Context) bool {
	ok, _ := debounce.StableContext(ctx, b.line, b.released, b.pressed, b.threshold, b.interval)
	return ok
}
