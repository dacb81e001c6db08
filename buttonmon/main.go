// Command buttonmon watches the buttons described by a configuration file
// and publishes their press and release events to the log and, when a
// broker is configured, to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Chen-HR/tactile/pkg/button"
	"github.com/Chen-HR/tactile/pkg/config"
	"github.com/Chen-HR/tactile/pkg/digital"
	"github.com/Chen-HR/tactile/pkg/drivers/cdev"
	"github.com/Chen-HR/tactile/pkg/drivers/machinegpio"
	"github.com/Chen-HR/tactile/pkg/drivers/periphio"
	"github.com/Chen-HR/tactile/pkg/drivers/rpigpio"
	"github.com/Chen-HR/tactile/pkg/drivers/serialline"
	"github.com/Chen-HR/tactile/pkg/drivers/simline"
	"github.com/Chen-HR/tactile/pkg/notify"
)

func main() {
	var (
		configFlag   = flag.String("config", "config.yaml", "Configuration file path")
		generateFlag = flag.Bool("generate", false, "Write the default configuration file and exit")
		portsFlag    = flag.Bool("ports", false, "List serial ports and exit")
		verboseFlag  = flag.Bool("verbose", false, "Log at debug level regardless of configuration")
	)
	flag.Parse()

	if *portsFlag {
		ports, err := serialline.Ports()
		if err != nil {
			log.Fatalf("Failed to list serial ports: %v", err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *generateFlag {
		if err := cfg.Save(*configFlag); err != nil {
			log.Fatalf("Failed to write configuration: %v", err)
		}
		fmt.Printf("Wrote %s\n", *configFlag)
		return
	}

	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Bad log level %q: %v", cfg.Logging.Level, err)
	}
	if *verboseFlag {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if err := run(cfg, sigCh); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// run builds the monitoring rig described by cfg and blocks until a signal
// arrives on sig. Everything it builds is torn down before it returns:
// buttons in reverse order of construction, then the publishers.
func run(cfg *config.Config, sig <-chan os.Signal) error {
	publishers := []notify.Publisher{notify.NewLogPublisher(log.StandardLogger())}
	if cfg.MQTT.Broker != "" {
		mq, err := notify.NewMQTTPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Topic)
		if err != nil {
			return fmt.Errorf("connect %s: %w", cfg.MQTT.Broker, err)
		}
		publishers = append(publishers, mq)
		log.Infof("publishing to %s topic %s", cfg.MQTT.Broker, cfg.MQTT.Topic)
	}
	defer closePublishers(publishers)

	var rig []*monitored
	defer func() {
		for i := len(rig) - 1; i >= 0; i-- {
			rig[i].stop()
		}
	}()

	for i := range cfg.Buttons {
		bc := &cfg.Buttons[i]
		m, err := monitor(bc, &cfg.Sim, publishers)
		if err != nil {
			return fmt.Errorf("button %s: %w", bc.Name, err)
		}
		rig = append(rig, m)
		log.WithFields(log.Fields{
			"button":   bc.Name,
			"driver":   bc.Driver,
			"strategy": bc.Strategy,
		}).Info("monitoring")
	}

	s := <-sig
	log.Infof("received %v, shutting down", s)
	return nil
}

// monitored couples a live button to the cleanup for its line.
type monitored struct {
	name      string
	btn       button.Button
	closeLine func() error
}

// stop deactivates the button before releasing the line, so the interrupt
// watcher is detached while the line is still open.
func (m *monitored) stop() {
	m.btn.Deactivate()
	if m.closeLine != nil {
		if err := m.closeLine(); err != nil {
			log.WithError(err).Warnf("close line for %s", m.name)
		}
	}
}

// monitor opens the line for bc, wraps it in the configured strategy, binds
// the publishing handlers and activates the result.
func monitor(bc *config.ButtonConfig, sim *config.SimConfig, publishers []notify.Publisher) (*monitored, error) {
	line, closeLine, err := buildLine(bc, sim)
	if err != nil {
		return nil, err
	}

	b, err := buildButton(line, bc)
	if err != nil {
		if closeLine != nil {
			closeLine()
		}
		return nil, err
	}
	bind(b, bc.Name, publishers)

	if err := b.Activate(); err != nil {
		b.Deactivate()
		if closeLine != nil {
			closeLine()
		}
		return nil, err
	}
	return &monitored{name: bc.Name, btn: b, closeLine: closeLine}, nil
}

// buildLine opens the input line described by bc. The returned closer is nil
// for drivers with nothing to release.
func buildLine(bc *config.ButtonConfig, sim *config.SimConfig) (digital.Watcher, func() error, error) {
	pull, err := digital.ParsePull(bc.Pull)
	if err != nil {
		return nil, nil, err
	}

	switch bc.Driver {
	case "sim":
		released, err := digital.ParseSignal(bc.Released)
		if err != nil {
			return nil, nil, err
		}
		l, err := simline.New(released, sim)
		if err != nil {
			return nil, nil, err
		}
		return l, nil, nil

	case "cdev":
		chip := bc.Chip
		if chip == "" {
			chip = "gpiochip0"
		}
		l, err := cdev.New(chip, bc.Pin, pull)
		if err != nil {
			return nil, nil, err
		}
		return l, l.Close, nil

	case "periphio":
		l, err := periphio.New(fmt.Sprintf("GPIO%d", bc.Pin), pull)
		if err != nil {
			return nil, nil, err
		}
		return l, l.Close, nil

	case "rpigpio":
		l, err := rpigpio.New(bc.Pin, pull)
		if err != nil {
			return nil, nil, err
		}
		return l, nil, nil

	case "serial":
		bit, err := serialline.ParseBit(bc.Bit)
		if err != nil {
			return nil, nil, err
		}
		l, err := serialline.New(bc.Port, bit, 0)
		if err != nil {
			return nil, nil, err
		}
		return l, l.Close, nil

	case "machine":
		l, err := machinegpio.New(bc.Pin, pull)
		if err != nil {
			return nil, nil, err
		}
		return l, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown driver %q", bc.Driver)
	}
}

// buildButton wraps line in the strategy described by bc.
func buildButton(line digital.Watcher, bc *config.ButtonConfig) (button.Button, error) {
	released, err := digital.ParseSignal(bc.Released)
	if err != nil {
		return nil, err
	}

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

// bind registers handlers that publish the press and release edges of name.
func bind(b button.Button, name string, publishers []notify.Publisher) {
	b.OnPressed(func(context.Context) {
		publish(publishers, notify.Event{Button: name, Kind: notify.Pressed, Time: time.Now()})
	})
	b.OnReleased(func(context.Context) {
		publish(publishers, notify.Event{Button: name, Kind: notify.Released, Time: time.Now()})
	})
}

func publish(publishers []notify.Publisher, e notify.Event) {
	for _, p := range publishers {
		if err := p.Publish(e); err != nil {
			log.WithError(err).Warn("publish failed")
		}
	}
}

func closePublishers(publishers []notify.Publisher) {
	for _, p := range publishers {
		if err := p.Close(); err != nil {
			log.WithError(err).Warn("close publisher")
		}
	}
}
