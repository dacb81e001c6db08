package debounce

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chen-HR/tactile/pkg/digital"
)

func TestStep(t *testing.T) {
	tests := []struct {
		name  string
		c     int
		match bool
		want  int
	}{
		{name: "start of run", c: 0, match: true, want: 1},
		{name: "extend run", c: 2, match: true, want: 3},
		{name: "contradiction flips positive run", c: 3, match: false, want: -1},
		{name: "extend negative run", c: -1, match: false, want: -2},
		{name: "contradiction flips negative run", c: -2, match: true, want: 1},
		{name: "start of negative run", c: 0, match: false, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, step(tt.c, tt.match))
		})
	}
}

// TestStepTrajectory feeds a sample sequence through the counter and checks
// the whole path, not just the final value: a single contradicting sample
// must restart the run at opposite unit magnitude.
func TestStepTrajectory(t *testing.T) {
	samples := []bool{true, true, false, true, true, true}
	want := []int{1, 2, -1, 1, 2, 3}

	c := 0
	got := make([]int, 0, len(samples))
	for _, m := range samples {
		c = step(c, m)
		got = append(got, c)
	}
	assert.Equal(t, want, got)
}

func TestCount(t *testing.T) {
	tests := []struct {
		name      string
		levels    []digital.Signal
		target    digital.Signal
		threshold int
		want      bool
		wantReads int
	}{
		{
			name:      "clean run saturates",
			levels:    []digital.Signal{digital.High, digital.High, digital.High},
			target:    digital.High,
			threshold: 3,
			want:      true,
			wantReads: 3,
		},
		{
			name:      "noise restarts the run",
			levels:    []digital.Signal{digital.High, digital.High, digital.Low, digital.High, digital.High, digital.High},
			target:    digital.High,
			threshold: 3,
			want:      true,
			wantReads: 6,
		},
		{
			name:      "saturates on the opposite side",
			levels:    []digital.Signal{digital.Low, digital.Low, digital.Low},
			target:    digital.High,
			threshold: 3,
			want:      false,
			wantReads: 3,
		},
		{
			name:      "recovers from a negative run",
			levels:    []digital.Signal{digital.Low, digital.Low, digital.High, digital.High, digital.High},
			target:    digital.High,
			threshold: 3,
			want:      true,
			wantReads: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := digital.NewScript(tt.levels...)
			got := Count(line, tt.target, tt.threshold, 0)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantReads, line.Reads(), "samples consumed")
		})
	}
}

func TestChanged(t *testing.T) {
	tests := []struct {
		name      string
		levels    []digital.Signal
		from, to  digital.Signal
		threshold int
		want      bool
		wantReads int
	}{
		{
			name:      "not at start level",
			levels:    []digital.Signal{digital.High},
			from:      digital.Low,
			to:        digital.High,
			threshold: 3,
			want:      false,
			wantReads: 1,
		},
		{
			name:      "immediate transition",
			levels:    []digital.Signal{digital.Low, digital.High},
			from:      digital.Low,
			to:        digital.High,
			threshold: 3,
			want:      true,
			wantReads: 3,
		},
		{
			name:      "single bounce satisfies the window",
			levels:    []digital.Signal{digital.Low, digital.High, digital.Low, digital.High},
			from:      digital.Low,
			to:        digital.High,
			threshold: 3,
			want:      true,
			wantReads: 4,
		},
		{
			name:      "window closes without the target",
			levels:    []digital.Signal{digital.Low, digital.High, digital.Low, digital.Low, digital.Low},
			from:      digital.Low,
			to:        digital.High,
			threshold: 3,
			want:      false,
			wantReads: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := digital.NewScript(tt.levels...)
			got := Changed(line, tt.from, tt.to, tt.threshold, 0)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantReads, line.Reads(), "samples consumed")
		})
	}
}

func TestStable(t *testing.T) {
	t.Run("full change", func(t *testing.T) {
		line := digital.NewScript(digital.Low, digital.High, digital.High, digital.High)
		got := Stable(line, digital.Low, digital.High, 3, 0)
		assert.True(t, got)
		assert.Equal(t, 5, line.Reads())
	})

	t.Run("settles back to start", func(t *testing.T) {
		line := digital.NewScript(digital.Low, digital.High, digital.Low, digital.Low)
		got := Stable(line, digital.Low, digital.High, 2, 0)
		assert.False(t, got)
		assert.Equal(t, 4, line.Reads())
	})

	t.Run("wrong start paces the caller", func(t *testing.T) {
		line := digital.NewValue(digital.High)
		interval := 10 * time.Millisecond

		start := time.Now()
		got := Stable(line, digital.Low, digital.High, 3, interval)
		elapsed := time.Since(start)

		assert.False(t, got)
		assert.GreaterOrEqual(t, elapsed, interval, "must sleep one interval before reporting false")
	})
}

func TestChangedContextCancelled(t *testing.T) {
	// The line never leaves the start level, so only the deadline can end
	// the wait.
	line := digital.NewValue(digital.Low)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	got, err := ChangedContext(ctx, line, digital.Low, digital.High, 3, time.Millisecond)
	assert.False(t, got)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCountContext(t *testing.T) {
	t.Run("saturates", func(t *testing.T) {
		line := digital.NewScript(digital.High, digital.High, digital.High)
		got, err := CountContext(context.Background(), line, digital.High, 3, 0)
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("never settles until cancelled", func(t *testing.T) {
		level := digital.Low
		line := digital.LineFunc(func() digital.Signal {
			level = level.Inverse()
			return level
		})
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		got, err := CountContext(ctx, line, digital.High, 3, time.Millisecond)
		assert.False(t, got)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestStableContextCancelled(t *testing.T) {
	line := digital.NewValue(digital.High)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := StableContext(ctx, line, digital.Low, digital.High, 3, time.Millisecond)
	assert.False(t, got)
	assert.ErrorIs(t, err, context.Canceled)
}
