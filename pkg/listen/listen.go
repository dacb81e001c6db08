// Package listen couples boolean listeners to handlers with a periodic
// poll loop. It is the event plumbing the button strategies hang their
// callbacks on, but it carries no button knowledge: any predicate can drive
// any action.
package listen

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"
)

// Listener is a zero-input predicate polled by a Pair. It may suspend; it
// should return promptly once ctx is done.
type Listener func(ctx context.Context) bool

// Handler is a zero-input action invoked when its listener reports true.
type Handler func(ctx context.Context)

// BlockingListener adapts a predicate that cannot observe cancellation.
func BlockingListener(f func() bool) Listener {
	return func(context.Context) bool { return f() }
}

// BlockingHandler adapts an action that cannot observe cancellation.
func BlockingHandler(f func()) Handler {
	return func(context.Context) { f() }
}

// Dispatch selects how a Pair runs its handler.
type Dispatch int

const (
	// Inline runs the handler in the poll goroutine. Polling pauses until
	// the handler returns, so executions never overlap.
	Inline Dispatch = iota
	// Spawn fires a goroutine per event. Executions may overlap when
	// events outpace the handler; handlers must tolerate that.
	Spawn
	// Thread is Spawn with the goroutine pinned to an OS thread for the
	// duration of the handler. Threads are far scarcer than goroutines;
	// reserve this for handlers that need thread affinity.
	Thread
)

var (
	ErrNilListener = errors.New("listen: nil listener")
	ErrNilHandler  = errors.New("listen: nil handler")
	ErrPeriod      = errors.New("listen: period must be positive")
)

// Pair owns one listener/handler coupling and its poll loop.
//
// The loop suspends period, evaluates the listener and dispatches the
// handler on true, until deactivated. Activate and Deactivate are
// idempotent, and a deactivated Pair may be activated again.
type Pair struct {
	listener Listener
	handler  Handler
	period   time.Duration
	dispatch Dispatch

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPair validates and couples a listener to a handler.
func NewPair(l Listener, h Handler, period time.Duration, dispatch Dispatch) (*Pair, error) {
	if l == nil {
		return nil, ErrNilListener
	}
	if h == nil {
		return nil, ErrNilHandler
	}
	if period <= 0 {
		return nil, ErrPeriod
	}
	return &Pair{listener: l, handler: h, period: period, dispatch: dispatch}, nil
}

// Activate starts the poll loop. Activating an active pair is a no-op.
func (p *Pair) Activate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel, p.done = cancel, done
	go p.run(ctx, done)
}

// Deactivate stops the loop and waits for the poll goroutine to exit; the
// loop finishes its current suspend first. Handlers already dispatched via
// Spawn or Thread are not waited for.
func (p *Pair) Deactivate() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Active reports whether the poll loop is running.
func (p *Pair) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Pair) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	t := time.NewTimer(p.period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		if p.listener(ctx) && ctx.Err() == nil {
			switch p.dispatch {
			case Inline:
				p.handler(ctx)
			case Spawn:
				go p.handler(ctx)
			case Thread:
				go func() {
					runtime.LockOSThread()
					defer runtime.UnlockOSThread()
					p.handler(ctx)
				}()
			}
		}
		t.Reset(p.period)
	}
}
