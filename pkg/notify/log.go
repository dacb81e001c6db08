package notify

import (
	"github.com/sirupsen/logrus"
)

// LogPublisher writes button events to a structured log instead of a broker.
type LogPublisher struct {
	log logrus.FieldLogger
}

// NewLogPublisher creates a publisher that logs every event.
func NewLogPublisher(log logrus.FieldLogger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish logs the button event.
func (p *LogPublisher) Publish(event Event) error {
	entry := p.log.WithFields(logrus.Fields{
		"button": event.Button,
		"event":  string(event.Kind),
	})
	if event.Count > 0 {
		entry = entry.WithField("count", event.Count)
	}
	entry.Info("button event")
	return nil
}

// Close is a no-op for the log publisher.
func (p *LogPublisher) Close() error {
	return nil
}
