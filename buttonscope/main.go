package main

import (
	"flag"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"github.com/Chen-HR/tactile/pkg/config"
)

func main() {
	var (
		configFlag  = flag.String("config", "config.yaml", "Configuration file path")
		bouncesFlag = flag.Int("bounces", -1, "Chatter edges per simulated transition (overrides config)")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override chatter if provided via command line
	if *bouncesFlag >= 0 {
		cfg.Sim.Bounces = *bouncesFlag
	}

	// Create Fyne application
	application := app.NewWithID("com.chen-hr.tactile")

	// Create main window
	window := application.NewWindow("Button Scope")
	window.Resize(fyne.NewSize(900, 400))
	window.CenterOnScreen()

	state := &appState{
		cfg:    cfg,
		window: window,
	}

	// Build one bench row per simulated button
	buttons := simButtons(cfg)
	rows := make([]fyne.CanvasObject, 0, len(buttons))
	for i := range buttons {
		row, err := newButtonRow(&buttons[i], &cfg.Sim)
		if err != nil {
			log.Fatalf("Failed to build row for %s: %v", buttons[i].Name, err)
		}
		state.rows = append(state.rows, row)
		rows = append(rows, row.box)
	}

	window.SetContent(container.NewVBox(rows...))
	window.SetOnClosed(state.shutdown)
	window.ShowAndRun()
}

// appState holds the application state.
type appState struct {
	cfg    *config.Config
	window fyne.Window
	rows   []*buttonRow
}

// shutdown deactivates every bench row before the window goes away.
func (s *appState) shutdown() {
	for _, r := range s.rows {
		r.stop()
	}
}

// simButtons returns the configured buttons that run on simulated lines. A
// configuration without any gets the default demo button, so the window is
// never empty.
func simButtons(cfg *config.Config) []config.ButtonConfig {
	var out []config.ButtonConfig
	for _, bc := range cfg.Buttons {
		if bc.Driver == "sim" {
			out = append(out, bc)
		}
	}
	if len(out) == 0 {
		out = config.Default().Buttons
	}
	return out
}
