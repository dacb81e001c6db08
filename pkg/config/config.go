package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Logging LoggingConfig  `yaml:"logging"`
	MQTT    MQTTConfig     `yaml:"mqtt"`
	Sim     SimConfig      `yaml:"sim"`
	Buttons []ButtonConfig `yaml:"buttons"`
}

// LoggingConfig contains log output configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // trace, debug, info, warn, error
}

// MQTTConfig contains the event broker configuration. An empty broker
// URL disables MQTT publishing entirely.
type MQTTConfig struct {
	Broker   string `yaml:"broker"` // e.g. "tcp://localhost:1883", empty = disabled
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
}

// SimConfig contains simulated line tuning shared by all sim buttons.
type SimConfig struct {
	Bounces int           `yaml:"bounces"` // chatter edges per transition
	Spacing time.Duration `yaml:"spacing"` // time between chatter edges
}

// ButtonConfig describes a single monitored button.
type ButtonConfig struct {
	Name      string        `yaml:"name"`
	Driver    string        `yaml:"driver"`   // cdev, periphio, rpigpio, serial, machine, sim
	Chip      string        `yaml:"chip"`     // cdev only, e.g. "gpiochip0"
	Pin       int           `yaml:"pin"`      // line offset (cdev) or BCM number
	Port      string        `yaml:"port"`     // serial only, e.g. "/dev/ttyUSB0"
	Bit       string        `yaml:"bit"`      // serial only: cts, dsr, ri, dcd
	Pull      string        `yaml:"pull"`     // up, down, none
	Released  string        `yaml:"released"` // line level of an idle button: high or low
	Strategy  string        `yaml:"strategy"` // immediate, filtered, tracking, interrupt
	Interval  time.Duration `yaml:"interval"`
	Threshold int           `yaml:"threshold"` // filtered strategy only
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		MQTT: MQTTConfig{
			Broker:   "", // disabled until pointed at a broker
			ClientID: "buttonmon",
			Topic:    "tactile/events",
		},
		Sim: SimConfig{
			Bounces: 8,
			Spacing: 2 * time.Millisecond,
		},
		Buttons: []ButtonConfig{
			{
				Name:      "demo",
				Driver:    "sim",
				Pull:      "up",
				Released:  "high",
				Strategy:  "interrupt",
				Interval:  20 * time.Millisecond,
				Threshold: 10,
			},
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// A config file that names its own buttons replaces the default set.
	cfg.Buttons = nil

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}

	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = def.MQTT.ClientID
	}
	if c.MQTT.Topic == "" {
		c.MQTT.Topic = def.MQTT.Topic
	}

	if c.Sim.Bounces == 0 {
		c.Sim.Bounces = def.Sim.Bounces
	}
	if c.Sim.Spacing == 0 {
		c.Sim.Spacing = def.Sim.Spacing
	}

	if len(c.Buttons) == 0 {
		c.Buttons = def.Buttons
	}
	for i := range c.Buttons {
		b := &c.Buttons[i]
		if b.Name == "" {
			b.Name = fmt.Sprintf("button-%d", i)
		}
		if b.Driver == "" {
			b.Driver = "sim"
		}
		if b.Pull == "" {
			b.Pull = "none"
		}
		if b.Released == "" {
			b.Released = "high"
		}
		if b.Strategy == "" {
			b.Strategy = "interrupt"
		}
		if b.Interval == 0 {
			b.Interval = 20 * time.Millisecond
		}
		if b.Threshold == 0 {
			b.Threshold = 10
		}
	}
}
