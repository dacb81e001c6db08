package digital

import "sync/atomic"

// Flag is an edge flag shared between an interrupt callback and a polling
// task. Set is safe from interrupt context. Take consumes the flag
// atomically, so one raised edge is observed at most once no matter how
// often it is polled.
//
// The zero value is a cleared flag ready for use.
type Flag struct {
	v atomic.Bool
}

// Set raises the flag.
func (f *Flag) Set() { f.v.Store(true) }

// Take lowers the flag and reports whether it was raised.
func (f *Flag) Take() bool { return f.v.CompareAndSwap(true, false) }

// Peek reports the flag without lowering it.
func (f *Flag) Peek() bool { return f.v.Load() }

// Clear lowers the flag without reading it.
func (f *Flag) Clear() { f.v.Store(false) }
