package notify

import (
	"sync"

	"github.com/sirupsen/logrus"

	"clipkeep/internal/domain"
	"clipkeep/internal/ports"
)

var _ ports.Notifier = (*Notifier)(nil)

var messages = map[domain.Event]string{
	domain.EventMonitoringPaused:   "clipboard monitoring paused",
	domain.EventMonitoringResumed:  "clipboard monitoring resumed",
	domain.EventMigrationSucceeded: "legacy history migrated",
	domain.EventMigrationFailed:    "legacy history could not be migrated",
}

// Notifier surfaces engine events through the log and to any subscribers
type Notifier struct {
	log *logrus.Entry

	mu          sync.Mutex
	subscribers []func(domain.Event)
}

// New creates a log-backed notifier
func New(log *logrus.Entry) *Notifier {
	return &Notifier{log: log.WithField("component", "notify")}
}

// Subscribe registers fn to receive every later event
func (n *Notifier) Subscribe(fn func(domain.Event)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subscribers = append(n.subscribers, fn)
}

// Notify implements ports.Notifier
func (n *Notifier) Notify(event domain.Event) {
	entry := n.log.WithField("event", event)
	if event == domain.EventMigrationFailed {
		entry.Warn(Message(event))
	} else {
		entry.Info(Message(event))
	}

	n.mu.Lock()
	subs := append([]func(domain.Event){}, n.subscribers...)
	n.mu.Unlock()
	for _, fn := range subs {
		fn(event)
	}
}

// Message returns the human readable text for an event
func Message(event domain.Event) string {
	if msg, ok := messages[event]; ok {
		return msg
	}
	return string(event)
}
