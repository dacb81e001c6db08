package button

import (
	"context"
	"sync"
	"time"

	"github.com/Chen-HR/tactile/pkg/digital"
)

// Tracking caches the last resolved state and reports edges by differencing
// fresh reads against the cache. Queries cost a single raw read and no
// settle delay; the cache is what makes an edge fire only once.
type Tracking struct {
	input
	events

	mu   sync.Mutex
	last State
}

// NewTracking creates a state-diff button. The cache starts at Bouncing,
// so the first edge query resolves it with a fresh read before comparing.
func NewTracking(line digital.Line, released digital.Signal, interval time.Duration) (*Tracking, error) {
	in, err := newInput(line, released, interval)
	if err != nil {
		return nil, err
	}
	b := &Tracking{input: in, last: Bouncing}
	b.events.owner = b
	return b, nil
}

// State reads the line once and refreshes the cache.
func (b *Tracking) State(_ context.Context) State {
	s := b.stateOf(b.line.Read())
	b.mu.Lock()
	b.last = s
	b.mu.Unlock()
	return s
}

func (b *Tracking) Released(ctx context.Context) bool { return b.State(ctx) == Released }

func (b *Tracking) Pressed(ctx context.Context) bool { return b.State(ctx) == Pressed }

// ToReleased resolves a Bouncing cache with a fresh read, then looks for
// the pressed->released transition across one interval. The inner Released
// call refreshes the cache, which is what consumes the edge.
func (b *Tracking) ToReleased(ctx context.Context) bool {
	if b.cached() == Bouncing {
		b.State(ctx)
	}
	if b.cached() == Pressed {
		if !sleep(ctx, b.interval) {
			return false
		}
		return b.Released(ctx)
	}
	return false
}

// ToPressed is the released->pressed counterpart of ToReleased.
func (b *Tracking) ToPressed(ctx context.Context) bool {
	if b.cached() == Bouncing {
		b.State(ctx)
	}
	if b.cached() == Released {
		if !sleep(ctx, b.interval) {
			return false
		}
		return b.Pressed(ctx)
	}
	return false
}

func (b *Tracking) cached() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}
