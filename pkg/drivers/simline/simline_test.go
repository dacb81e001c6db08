package simline

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chen-HR/tactile/pkg/button"
	"github.com/Chen-HR/tactile/pkg/config"
	"github.com/Chen-HR/tactile/pkg/digital"
	"github.com/Chen-HR/tactile/pkg/hwtimer"
)

func testConfig() *config.SimConfig {
	return &config.SimConfig{Bounces: 4, Spacing: time.Millisecond}
}

func TestNew(t *testing.T) {
	l, err := New(digital.High, testConfig())
	require.NoError(t, err)
	assert.Equal(t, digital.High, l.Read(), "line idles at the released level")

	l, err = New(digital.Low, nil)
	require.NoError(t, err, "nil config falls back to defaults")
	assert.Equal(t, digital.Low, l.Read())

	_, err = New(digital.Signal(3), testConfig())
	assert.Error(t, err)
}

func TestPressSettles(t *testing.T) {
	l, err := New(digital.High, testConfig())
	require.NoError(t, err)

	l.Press()
	assert.Equal(t, digital.Low, l.Read())

	l.Release()
	assert.Equal(t, digital.High, l.Read())
}

func TestPressChatterEdges(t *testing.T) {
	// With 4 bounces a High-to-Low transition flips the level five times:
	// Low, High, Low, High, then the final settle on Low.
	tests := []struct {
		name string
		edge digital.Edge
		want int64
	}{
		{name: "both", edge: digital.Both, want: 5},
		{name: "falling", edge: digital.Falling, want: 3},
		{name: "rising", edge: digital.Rising, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(digital.High, testConfig())
			require.NoError(t, err)

			var edges atomic.Int64
			cancel, err := l.Watch(tt.edge, func() { edges.Add(1) })
			require.NoError(t, err)
			defer cancel()

			l.Press()
			assert.Equal(t, tt.want, edges.Load())
		})
	}
}

func TestPressWhenAlreadyPressed(t *testing.T) {
	l, err := New(digital.High, testConfig())
	require.NoError(t, err)

	var edges atomic.Int64
	cancel, err := l.Watch(digital.Both, func() { edges.Add(1) })
	require.NoError(t, err)
	defer cancel()

	l.Press()
	fired := edges.Load()

	l.Press()
	assert.Equal(t, fired, edges.Load(), "settled transitions fire nothing")
}

func TestWatchSingleSlot(t *testing.T) {
	l, err := New(digital.High, testConfig())
	require.NoError(t, err)

	cancel, err := l.Watch(digital.Both, func() {})
	require.NoError(t, err)

	_, err = l.Watch(digital.Both, func() {})
	assert.ErrorIs(t, err, digital.ErrWatcherBusy)

	cancel()
	cancel2, err := l.Watch(digital.Both, func() {})
	require.NoError(t, err, "cancel frees the slot")
	cancel2()
}

func TestStaleCancelKeepsNewWatcher(t *testing.T) {
	l, err := New(digital.High, testConfig())
	require.NoError(t, err)

	cancel1, err := l.Watch(digital.Both, func() {})
	require.NoError(t, err)
	cancel1()

	var edges atomic.Int64
	_, err = l.Watch(digital.Both, func() { edges.Add(1) })
	require.NoError(t, err)

	cancel1() // stale, must not detach the second watcher
	l.Press()
	assert.Positive(t, edges.Load())
}

func TestTap(t *testing.T) {
	l, err := New(digital.High, testConfig())
	require.NoError(t, err)

	var edges atomic.Int64
	cancel, err := l.Watch(digital.Both, func() { edges.Add(1) })
	require.NoError(t, err)
	defer cancel()

	start := time.Now()
	l.Tap(20 * time.Millisecond)

	assert.Equal(t, digital.High, l.Read())
	assert.Equal(t, int64(10), edges.Load(), "a tap chatters both transitions")
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestFilteredButtonRidesOutChatter(t *testing.T) {
	l, err := New(digital.High, &config.SimConfig{Bounces: 6, Spacing: time.Millisecond})
	require.NoError(t, err)

	b, err := button.NewFiltered(l, digital.High, 5, 2*time.Millisecond)
	require.NoError(t, err)

	var presses, releases atomic.Int64
	b.OnPressed(func(context.Context) { presses.Add(1) })
	b.OnReleased(func(context.Context) { releases.Add(1) })

	require.NoError(t, b.Activate())
	defer b.Deactivate()

	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, presses.Load(), "an idle line fires nothing")

	l.Press()
	require.Eventually(t, func() bool { return presses.Load() == 1 },
		2*time.Second, time.Millisecond)
	assert.Zero(t, releases.Load())

	l.Release()
	require.Eventually(t, func() bool { return releases.Load() == 1 },
		2*time.Second, time.Millisecond)

	// Chatter never registered as extra transitions.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(1), presses.Load())
	assert.Equal(t, int64(1), releases.Load())
}

func TestInterruptButtonOverSimLine(t *testing.T) {
	l, err := New(digital.High, testConfig())
	require.NoError(t, err)

	b, err := button.NewInterrupt(l, digital.High, 25*time.Millisecond, hwtimer.NewPool(2))
	require.NoError(t, err)

	require.NoError(t, b.Activate())
	defer b.Deactivate()

	ctx := context.Background()
	assert.Equal(t, button.Released, b.State(ctx))

	l.Press()
	require.Eventually(t, func() bool { return b.ToPressed(ctx) },
		2*time.Second, time.Millisecond)
	assert.Equal(t, button.Pressed, b.State(ctx))

	l.Release()
	require.Eventually(t, func() bool { return b.ToReleased(ctx) },
		2*time.Second, time.Millisecond)
	assert.Equal(t, button.Released, b.State(ctx))
}
