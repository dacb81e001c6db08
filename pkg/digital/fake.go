package digital

import (
	"sync"
	"sync/atomic"
)

// Value is a Line whose level is set by whoever drives it, typically a test
// or a simulation. Reads and writes may come from different goroutines.
type Value struct {
	v atomic.Int32
}

// NewValue creates a Value holding the given level.
func NewValue(level Signal) *Value {
	v := &Value{}
	v.Set(level)
	return v
}

// Set stores a new level.
func (v *Value) Set(level Signal) { v.v.Store(int32(level)) }

func (v *Value) Read() Signal { return Signal(v.v.Load()) }

// Script is a Line that replays a fixed sequence of levels, one per Read,
// and repeats the final level once the sequence is exhausted. It counts the
// reads it serves so tests can assert how many samples an algorithm
// consumed.
type Script struct {
	mu     sync.Mutex
	levels []Signal
	n      int
}

// NewScript creates a Script over the given sequence. An empty script
// reads Low forever.
func NewScript(levels ...Signal) *Script {
	return &Script{levels: levels}
}

func (s *Script) Read() Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.levels) == 0 {
		s.n++
		return Low
	}
	i := s.n
	if i >= len(s.levels) {
		i = len(s.levels) - 1
	}
	s.n++
	return s.levels[i]
}

// Reads reports how many times Read was called.
func (s *Script) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

var (
	_ Line = (*Value)(nil)
	_ Line = (*Script)(nil)
)
