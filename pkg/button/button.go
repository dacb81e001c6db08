// Package button turns a raw digital line into debounced button state and
// edge events.
//
// Four strategies implement the one Button interface: Immediate reads the
// line with a settle delay, Filtered wraps reads in the count filter,
// Tracking diffs fresh reads against a cached state, and Interrupt drives a
// small state machine from pin edges and a one-shot debounce timer. All
// four share the handler-binding engine, so callers can register pressed,
// released and click handlers without caring which strategy is underneath.
package button

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Chen-HR/tactile/pkg/digital"
	"github.com/Chen-HR/tactile/pkg/listen"
)

// State is the debounced condition of a button.
type State int

const (
	// Bouncing means the line has not settled on either level.
	Bouncing State = iota
	Released
	Pressed
)

func (s State) String() string {
	switch s {
	case Bouncing:
		return "bouncing"
	case Released:
		return "released"
	case Pressed:
		return "pressed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Button is a debounced push button.
//
// State, Released and Pressed suspend for strategy-dependent sampling.
// ToReleased and ToPressed are edge queries: after a transition they report
// true exactly once, then false until the next transition.
//
// A button must be activated for its registered handlers to run, and
// deactivated before it is discarded; Deactivate releases interrupt and
// timer registrations.
type Button interface {
	State(ctx context.Context) State
	Released(ctx context.Context) bool
	Pressed(ctx context.Context) bool
	ToReleased(ctx context.Context) bool
	ToPressed(ctx context.Context) bool

	// Interval is the sampling period of the strategy, also used as the
	// poll period for registered handlers and click detection.
	Interval() time.Duration

	OnPressed(h listen.Handler)
	OnReleased(h listen.Handler)
	OnClickedOnce(timeout time.Duration, h listen.Handler)
	OnClicked(timeout time.Duration, times int, h listen.Handler)

	Activate() error
	Deactivate()
}

var (
	_ Button = (*Immediate)(nil)
	_ Button = (*Filtered)(nil)
	_ Button = (*Tracking)(nil)
	_ Button = (*Interrupt)(nil)
)

var (
	ErrNilLine       = errors.New("button: nil line")
	ErrInvalidSignal = errors.New("button: released level must be high or low")
	ErrInterval      = errors.New("button: interval must be positive")
	ErrThreshold     = errors.New("button: threshold must be positive")
)

// settleDelay is the pause before an immediate-strategy sample, long enough
// to step over the worst of contact ring on the lines this was tuned
// against.
const settleDelay = time.Millisecond

// input holds what every strategy owns: the line, the polarity and the
// sampling interval. The pressed level is derived from the released one, so
// a non-inverse pair cannot be represented.
type input struct {
	line     digital.Line
	released digital.Signal
	pressed  digital.Signal
	interval time.Duration
}

func newInput(line digital.Line, released digital.Signal, interval time.Duration) (input, error) {
	if line == nil {
		return input{}, ErrNilLine
	}
	if !released.Valid() {
		return input{}, ErrInvalidSignal
	}
	if interval <= 0 {
		return input{}, ErrInterval
	}
	return input{
		line:     line,
		released: released,
		pressed:  released.Inverse(),
		interval: interval,
	}, nil
}

// Interval returns the sampling period.
func (in input) Interval() time.Duration { return in.interval }

func (in input) stateOf(level digital.Signal) State {
	switch level {
	case in.released:
		return Released
	case in.pressed:
		return Pressed
	default:
		return Bouncing
	}
}

// sleep suspends for d or until ctx is done, reporting whether the full
// interval elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// events is the handler-binding engine shared by the strategies. Each
// registration couples an edge or click listener on the owning button to
// the caller's handler in a fire-and-forget pair polled at the button
// interval.
type events struct {
	owner Button

	mu    sync.Mutex
	pairs []*listen.Pair
}

func (e *events) bind(l listen.Listener, h listen.Handler, period time.Duration) {
	p, err := listen.NewPair(l, h, period, listen.Spawn)
	if err != nil {
		panic(err) // a nil handler is a programming error
	}
	e.mu.Lock()
	e.pairs = append(e.pairs, p)
	e.mu.Unlock()
}

// OnPressed registers h to run after each release->press transition.
func (e *events) OnPressed(h listen.Handler) {
	e.bind(func(ctx context.Context) bool { return e.owner.ToPressed(ctx) }, h, e.owner.Interval())
}

// OnReleased registers h to run after each press->release transition.
func (e *events) OnReleased(h listen.Handler) {
	e.bind(func(ctx context.Context) bool { return e.owner.ToReleased(ctx) }, h, e.owner.Interval())
}

// OnClickedOnce registers h to run after each full click; see ClickedOnce
// for the timeout semantics.
func (e *events) OnClickedOnce(timeout time.Duration, h listen.Handler) {
	e.bind(func(ctx context.Context) bool { return ClickedOnce(ctx, e.owner, timeout) }, h, e.owner.Interval())
}

// OnClicked registers h to run after each run of times clicks completed
// within timeout; see Clicked.
func (e *events) OnClicked(timeout time.Duration, times int, h listen.Handler) {
	e.bind(func(ctx context.Context) bool { return Clicked(ctx, e.owner, timeout, times) }, h, e.owner.Interval())
}

// Activate starts every registered pair. Pairs registered after activation
// start on the next Activate.
func (e *events) Activate() error {
	for _, p := range e.snapshot() {
		p.Activate()
	}
	return nil
}

// Deactivate stops every registered pair.
func (e *events) Deactivate() {
	for _, p := range e.snapshot() {
		p.Deactivate()
	}
}

func (e *events) snapshot() []*listen.Pair {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*listen.Pair(nil), e.pairs...)
}
