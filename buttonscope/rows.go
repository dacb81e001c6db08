package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/Chen-HR/tactile/pkg/button"
	"github.com/Chen-HR/tactile/pkg/config"
	"github.com/Chen-HR/tactile/pkg/digital"
	"github.com/Chen-HR/tactile/pkg/drivers/simline"
)

// tapHold is how long the Tap control keeps the simulated contact closed.
const tapHold = 120 * time.Millisecond

// buttonRow is one bench row: a simulated line, a button of the configured
// strategy counting press and release edges, and a second state-diff button
// counting completed clicks. Two buttons can share one line because only the
// interrupt strategy claims the line's watcher slot.
type buttonRow struct {
	line *simline.Line

	edges  button.Button
	clicks button.Button

	stateLabel   *widget.Label
	pressLabel   *widget.Label
	releaseLabel *widget.Label
	clickLabel   *widget.Label

	presses    atomic.Int64
	releases   atomic.Int64
	clickCount atomic.Int64

	box fyne.CanvasObject
}

func newButtonRow(bc *config.ButtonConfig, sim *config.SimConfig) (*buttonRow, error) {
	released, err := digital.ParseSignal(bc.Released)
	if err != nil {
		return nil, err
	}
	line, err := simline.New(released, sim)
	if err != nil {
		return nil, err
	}

	edges, err := makeButton(line, released, bc)
	if err != nil {
		return nil, err
	}
	clicks, err := button.NewTracking(line, released, bc.Interval)
	if err != nil {
		edges.Deactivate()
		return nil, err
	}

	r := &buttonRow{
		line:         line,
		edges:        edges,
		clicks:       clicks,
		stateLabel:   widget.NewLabel("released"),
		pressLabel:   widget.NewLabel("presses: 0"),
		releaseLabel: widget.NewLabel("releases: 0"),
		clickLabel:   widget.NewLabel("clicks: 0"),
	}

	edges.OnPressed(func(context.Context) {
		n := r.presses.Add(1)
		fyne.Do(func() {
			r.stateLabel.SetText("pressed")
			r.pressLabel.SetText(fmt.Sprintf("presses: %d", n))
		})
	})
	edges.OnReleased(func(context.Context) {
		n := r.releases.Add(1)
		fyne.Do(func() {
			r.stateLabel.SetText("released")
			r.releaseLabel.SetText(fmt.Sprintf("releases: %d", n))
		})
	})
	// A zero timeout counts every completed press-and-release, however long
	// the hold.
	clicks.OnClickedOnce(0, func(context.Context) {
		n := r.clickCount.Add(1)
		fyne.Do(func() {
			r.clickLabel.SetText(fmt.Sprintf("clicks: %d", n))
		})
	})

	// Resolve the state caches while the line is quiet.
	edges.State(context.Background())
	clicks.State(context.Background())

	if err := edges.Activate(); err != nil {
		edges.Deactivate()
		return nil, err
	}
	if err := clicks.Activate(); err != nil {
		r.stop()
		return nil, err
	}

	tapBtn := widget.NewButton("Tap", func() {
		go r.line.Tap(tapHold)
	})
	holdChk := widget.NewCheck("Hold", func(on bool) {
		if on {
			go r.line.Press()
		} else {
			go r.line.Release()
		}
	})

	r.box = container.NewHBox(
		widget.NewLabel(fmt.Sprintf("%s [%s]", bc.Name, bc.Strategy)),
		tapBtn,
		holdChk,
		r.stateLabel,
		r.pressLabel,
		r.releaseLabel,
		r.clickLabel,
	)
	return r, nil
}

// stop deactivates both buttons of the row.
func (r *buttonRow) stop() {
	r.clicks.Deactivate()
	r.edges.Deactivate()
}

// makeButton wraps line in the strategy described by bc.
func makeButton(line digital.Watcher, released digital.Signal, bc *config.ButtonConfig) (button.Button, error) {
	switch bc.Strategy {
	case "immediate":
		return button.NewImmediate(line, released, bc.Interval)
	case "filtered":
		return button.NewFiltered(line, released, bc.Threshold, bc.Interval)
	case "tracking":
		return button.NewTracking(line, released, bc.Interval)
	case "interrupt":
		return button.NewInterrupt(line, released, bc.Interval, nil)
	default:
		return nil, fmt.Errorf("unknown strategy %q", bc.Strategy)
	}
}
