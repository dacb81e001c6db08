// Package notify publishes button events with abstraction for testing.
package notify

import (
	"encoding/json"
	"time"
)

// Kind identifies what happened to a button.
type Kind string

const (
	// Pressed means the line settled on the pressed level.
	Pressed Kind = "pressed"

	// Released means the line settled back on the released level.
	Released Kind = "released"

	// Clicked means a full press-release cycle (or several) completed.
	Clicked Kind = "clicked"
)

// Event represents a single button event.
type Event struct {
	Button string
	Kind   Kind
	Time   time.Time
	Count  int // clicks in the burst, 0 for plain edges
}

// Publisher publishes button events.
type Publisher interface {
	// Publish sends a button event.
	// Returns error if publishing fails (should not crash the process).
	Publish(event Event) error

	// Close releases the transport.
	Close() error
}

// Payload represents the published message structure.
type Payload struct {
	Button ButtonPayload `json:"button"`
}

// ButtonPayload contains the button event details.
type ButtonPayload struct {
	Timestamp string `json:"timestamp"`
	Name      string `json:"name"`
	Event     string `json:"event"`
	Count     int    `json:"count,omitempty"`
}

// FormatPayload creates the JSON payload for a button event.
func FormatPayload(event Event) ([]byte, error) {
	payload := Payload{
		Button: ButtonPayload{
			Timestamp: event.Time.UTC().Format(time.RFC3339),
			Name:      event.Button,
			Event:     string(event.Kind),
			Count:     event.Count,
		},
	}
	return json.Marshal(payload)
}
