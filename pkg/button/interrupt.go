package button

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Chen-HR/tactile/pkg/digital"
	"github.com/Chen-HR/tactile/pkg/hwtimer"
	"github.com/Chen-HR/tactile/pkg/listen"
)

// Interrupt tracks state from pin edges instead of polling the line.
//
// The interrupt callback does exactly one thing: raise the IRQ flag. A
// consumer task turns a raised flag into a debounce window (record the old
// state, mark the button Bouncing, arm the one-shot timer), and the timer
// fire resolves the window with a single sample. An ambiguous sample
// re-arms the window, so a line that never reads a defined level keeps the
// button Bouncing indefinitely.
//
// A resolved transition raises the matching edge pulse. Pulses are
// time-boxed: readable for twice the interval, then cleared even if never
// consumed. The consumer agent and the timer callback are serialized by the
// instance mutex, never by anything shared between instances.
type Interrupt struct {
	input
	events

	watcher digital.Watcher
	pool    *hwtimer.Pool

	irq digital.Flag

	mu      sync.Mutex
	last    State
	current State
	timer   *hwtimer.Timer
	unwatch func()

	toReleased pulse
	toPressed  pulse

	consumer *listen.Pair
}

// NewInterrupt creates an interrupt-driven button on w. released is the
// line level of the button at rest. The debounce timer is taken from pool
// (nil means the shared hwtimer pool); an exhausted pool fails the
// construction. Until the first real transition the button reports
// Released and no edges.
func NewInterrupt(w digital.Watcher, released digital.Signal, interval time.Duration, pool *hwtimer.Pool) (*Interrupt, error) {
	if w == nil {
		return nil, ErrNilLine
	}
	in, err := newInput(w, released, interval)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		pool = hwtimer.Default()
	}
	t, err := pool.Acquire()
	if err != nil {
		return nil, fmt.Errorf("button: debounce timer: %w", err)
	}

	b := &Interrupt{
		input:   in,
		watcher: w,
		pool:    pool,
		last:    Released,
		current: Released,
		timer:   t,
	}
	b.events.owner = b

	consumer, err := listen.NewPair(
		listen.BlockingListener(b.irq.Take),
		func(context.Context) { b.agent() },
		interval,
		listen.Inline,
	)
	if err != nil {
		t.Release()
		return nil, err
	}
	b.consumer = consumer
	return b, nil
}

// State reports the machine's current state; Bouncing while a debounce
// window is open.
func (b *Interrupt) State(_ context.Context) State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *Interrupt) Released(ctx context.Context) bool { return b.State(ctx) == Released }

func (b *Interrupt) Pressed(ctx context.Context) bool { return b.State(ctx) == Pressed }

// ToReleased consumes the press->release edge pulse if one is up.
func (b *Interrupt) ToReleased(_ context.Context) bool { return b.toReleased.take() }

// ToPressed consumes the release->press edge pulse if one is up.
func (b *Interrupt) ToPressed(_ context.Context) bool { return b.toPressed.take() }

// Activate registers the interrupt, re-acquires the debounce timer if a
// previous Deactivate released it, and starts the consumer and registered
// handlers. Slot exhaustion, of timers or of the line's watcher, is
// surfaced as an error. Activating an active button is a no-op.
func (b *Interrupt) Activate() error {
	b.mu.Lock()
	if b.unwatch != nil {
		b.mu.Unlock()
		return nil
	}
	if b.timer == nil {
		t, err := b.pool.Acquire()
		if err != nil {
			b.mu.Unlock()
			return fmt.Errorf("button: debounce timer: %w", err)
		}
		b.timer = t
	}
	cancel, err := b.watcher.Watch(digital.Both, b.irq.Set)
	if err != nil {
		b.mu.Unlock()
		return fmt.Errorf("button: watch line: %w", err)
	}
	b.unwatch = cancel
	b.mu.Unlock()

	b.consumer.Activate()
	return b.events.Activate()
}

// Deactivate detaches the interrupt first, so no new flag can arrive, then
// releases the debounce timer and stops the consumer and registered
// handlers.
func (b *Interrupt) Deactivate() {
	b.mu.Lock()
	unwatch := b.unwatch
	b.unwatch = nil
	timer := b.timer
	b.timer = nil
	b.mu.Unlock()

	if unwatch != nil {
		unwatch()
	}
	if timer != nil {
		timer.Release()
	}
	b.consumer.Deactivate()
	b.events.Deactivate()
}

// agent consumes one raised IRQ flag: it opens a debounce window. Re-arming
// the timer cancels a window still pending from an earlier edge, so a burst
// of bounces collapses into the window after the last one.
func (b *Interrupt) agent() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = b.current
	b.current = Bouncing
	b.armLocked()
}

func (b *Interrupt) armLocked() {
	if b.timer == nil {
		return
	}
	b.timer.Arm(b.interval, false, b.onTimer)
}

// onTimer closes the debounce window with one sample. The released or
// pressed level resolves the state; anything else re-arms the window and
// leaves the button Bouncing.
func (b *Interrupt) onTimer() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.line.Read() {
	case b.released:
		b.current = Released
	case b.pressed:
		b.current = Pressed
	default:
		b.armLocked()
		return
	}

	if b.current == Released && b.last != Released {
		b.toReleased.fire(2 * b.interval)
	}
	if b.current == Pressed && b.last != Pressed {
		b.toPressed.fire(2 * b.interval)
	}
}

// pulse is an edge flag with a bounded lifetime: fire raises it and
// schedules a clear after the hold, take consumes it early. The generation
// counter lets a newer fire supersede the pending clear of an older one.
type pulse struct {
	mu  sync.Mutex
	gen uint64
	up  bool
}

func (p *pulse) fire(hold time.Duration) {
	p.mu.Lock()
	p.gen++
	g := p.gen
	p.up = true
	p.mu.Unlock()

	time.AfterFunc(hold, func() {
		p.mu.Lock()
		if p.gen == g {
			p.up = false
		}
		p.mu.Unlock()
	})
}

func (p *pulse) take() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	was := p.up
	p.up = false
	return was
}
