// Package hwtimer rations timers the way a microcontroller rations its
// hardware ones: a fixed arena of slots, acquired and released explicitly,
// each driving a one-shot or periodic callback.
//
// The arena exists so code written against scarce-timer platforms keeps the
// same failure mode everywhere: when the pool is empty, Acquire fails with
// ErrNoSlot instead of silently over-allocating.
package hwtimer

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultSlots is the capacity of the shared pool, matching the four
// general-purpose hardware timers of the usual small-MCU target.
const DefaultSlots = 4

// ErrNoSlot is returned by Acquire when every slot is taken.
var ErrNoSlot = errors.New("hwtimer: no timer slot available")

// Pool is a fixed-capacity timer arena. The zero value is unusable; create
// pools with NewPool or use the shared Default pool.
type Pool struct {
	mu   sync.Mutex
	free []int
}

// NewPool creates an arena with n slots.
func NewPool(n int) *Pool {
	p := &Pool{free: make([]int, 0, n)}
	for id := n - 1; id >= 0; id-- {
		p.free = append(p.free, id)
	}
	return p
}

var defaultPool = NewPool(DefaultSlots)

// Default returns the shared process-wide arena.
func Default() *Pool { return defaultPool }

// Acquire takes a slot from the arena. The caller owns the returned Timer
// until it calls Release.
func (p *Pool) Acquire() (*Timer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.free) == 0 {
		return nil, ErrNoSlot
	}
	id := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	return &Timer{pool: p, id: id}, nil
}

// Free reports how many slots remain available.
func (p *Pool) Free() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

func (p *Pool) release(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, id)
}

// Timer is one slot of an arena, armed or idle. Arm and Disarm may be
// called from any goroutine, including another timer's callback; the
// callback itself runs in its own goroutine.
type Timer struct {
	pool *Pool
	id   int

	mu       sync.Mutex
	t        *time.Timer
	released bool
}

// ID returns the slot number, stable for the lifetime of the acquisition.
func (t *Timer) ID() int { return t.id }

// Arm schedules fn to run after d, cancelling any pending fire first. A
// periodic timer re-fires every d until disarmed. A callback already in
// flight is not waited for. Arming a released timer is a programming error
// and panics.
func (t *Timer) Arm(d time.Duration, periodic bool, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released {
		panic(fmt.Sprintf("hwtimer: timer %d armed after release", t.id))
	}
	t.stopLocked()

	var tt *time.Timer
	tt = time.AfterFunc(d, func() {
		fn()
		if !periodic {
			return
		}
		t.mu.Lock()
		// Re-schedule only while this arming is still the current one.
		if !t.released && t.t == tt {
			tt.Reset(d)
		}
		t.mu.Unlock()
	})
	t.t = tt
}

// Disarm cancels any pending fire. It does not wait for a callback already
// in flight. Disarming an idle or released timer is a no-op.
func (t *Timer) Disarm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Timer) stopLocked() {
	if t.t != nil {
		t.t.Stop()
		t.t = nil
	}
}

// Release disarms the timer and returns its slot to the arena. Further use
// of the Timer is invalid; Release itself is idempotent.
func (t *Timer) Release() {
	t.mu.Lock()
	if t.released {
		t.mu.Unlock()
		return
	}
	t.released = true
	t.stopLocked()
	t.mu.Unlock()

	t.pool.release(t.id)
}
