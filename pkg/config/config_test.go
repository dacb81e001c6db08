package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.MQTT.Broker)
	assert.Equal(t, "buttonmon", cfg.MQTT.ClientID)
	assert.Equal(t, "tactile/events", cfg.MQTT.Topic)
	assert.Equal(t, 8, cfg.Sim.Bounces)
	assert.Equal(t, 2*time.Millisecond, cfg.Sim.Spacing)
	require.Len(t, cfg.Buttons, 1)
	assert.Equal(t, "demo", cfg.Buttons[0].Name)
	assert.Equal(t, "sim", cfg.Buttons[0].Driver)
	assert.Equal(t, "interrupt", cfg.Buttons[0].Strategy)
	assert.Equal(t, 20*time.Millisecond, cfg.Buttons[0].Interval)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Len(t, cfg.Buttons, 1)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
logging:
  level: debug

mqtt:
  broker: "tcp://localhost:1883"
  client_id: "bench-rig"
  topic: "rig/buttons"

sim:
  bounces: 12
  spacing: 1ms

buttons:
  - name: "stop"
    driver: cdev
    chip: gpiochip0
    pin: 17
    pull: up
    released: high
    strategy: interrupt
    interval: 25ms
  - name: "start"
    driver: rpigpio
    pin: 22
    released: low
    strategy: filtered
    interval: 10ms
    threshold: 16
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, "bench-rig", cfg.MQTT.ClientID)
	assert.Equal(t, "rig/buttons", cfg.MQTT.Topic)
	assert.Equal(t, 12, cfg.Sim.Bounces)
	assert.Equal(t, time.Millisecond, cfg.Sim.Spacing)

	require.Len(t, cfg.Buttons, 2)
	assert.Equal(t, "stop", cfg.Buttons[0].Name)
	assert.Equal(t, "cdev", cfg.Buttons[0].Driver)
	assert.Equal(t, "gpiochip0", cfg.Buttons[0].Chip)
	assert.Equal(t, 17, cfg.Buttons[0].Pin)
	assert.Equal(t, 25*time.Millisecond, cfg.Buttons[0].Interval)
	assert.Equal(t, "start", cfg.Buttons[1].Name)
	assert.Equal(t, "filtered", cfg.Buttons[1].Strategy)
	assert.Equal(t, 16, cfg.Buttons[1].Threshold)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
buttons:
  - name: "bare"
    driver: sim
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// Should use defaults for missing fields
	assert.Equal(t, "info", cfg.Logging.Level)
	require.Len(t, cfg.Buttons, 1)
	assert.Equal(t, "bare", cfg.Buttons[0].Name)
	assert.Equal(t, "high", cfg.Buttons[0].Released)
	assert.Equal(t, "interrupt", cfg.Buttons[0].Strategy)
	assert.Equal(t, 20*time.Millisecond, cfg.Buttons[0].Interval)
	assert.Equal(t, 10, cfg.Buttons[0].Threshold)
}

func TestLoad_UnnamedButton(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
buttons:
  - driver: sim
  - driver: sim
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	require.Len(t, cfg.Buttons, 2)
	assert.Equal(t, "button-0", cfg.Buttons[0].Name)
	assert.Equal(t, "button-1", cfg.Buttons[1].Name)
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.MQTT.Broker = "tcp://broker.local:1883"
	cfg.Buttons[0].Interval = 15 * time.Millisecond

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	// Load it back and verify
	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "tcp://broker.local:1883", loaded.MQTT.Broker)
	require.Len(t, loaded.Buttons, 1)
	assert.Equal(t, 15*time.Millisecond, loaded.Buttons[0].Interval)
}

func TestConfig_FieldAccess(t *testing.T) {
	cfg := Default()

	// Test field access
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "up", cfg.Buttons[0].Pull)
	assert.Equal(t, "high", cfg.Buttons[0].Released)
	assert.Equal(t, 10, cfg.Buttons[0].Threshold)
}
