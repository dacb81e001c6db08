package button

import (
	"context"
	"time"

	"github.com/Chen-HR/tactile/pkg/digital"
)

// Immediate reads the line directly: every query is one sample taken after
// a short settle delay. The cheapest strategy, suited to clean lines and to
// callers that filter on their own.
type Immediate struct {
	input
	events
}

// NewImmediate creates an immediate-read button. released is the line
// level of the button at rest.
func NewImmediate(line digital.Line, released digital.Signal, interval time.Duration) (*Immediate, error) {
	in, err := newInput(line, released, interval)
	if err != nil {
		return nil, err
	}
	b := &Immediate{input: in}
	b.events.owner = b
	return b, nil
}

// State samples the line once after the settle delay.
func (b *Immediate) State(ctx context.Context) State {
	if !sleep(ctx, settleDelay) {
		return Bouncing
	}
	return b.stateOf(b.line.Read())
}

func (b *Immediate) Released(ctx context.Context) bool { return b.State(ctx) == Released }

func (b *Immediate) Pressed(ctx context.Context) bool { return b.State(ctx) == Pressed }

// ToReleased reports a press->release transition across one interval: the
// line must sample pressed now and released one interval later.
func (b *Immediate) ToReleased(ctx context.Context) bool {
	if !b.Pressed(ctx) {
		return false
	}
	if !sleep(ctx, b.interval) {
		return false
	}
	return b.Released(ctx)
}

// ToPressed reports a release->press transition across one interval.
func (b *Immediate) ToPressed(ctx context.Context) bool {
	if !b.Released(ctx) {
		return false
	}
	if !sleep(ctx, b.interval) {
		return false
	}
	return b.Pressed(ctx)
}
