package confirm

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"clipkeep/internal/domain"
	"clipkeep/internal/ports"
)

// Policy decides how large-content prompts are answered without a UI
type Policy string

const (
	// PolicyDefer leaves the item pending until resolved through the CLI or MCP
	PolicyDefer  Policy = "defer"
	PolicyAccept Policy = "accept"
	PolicyReject Policy = "reject"
	// PolicyAsk prompts on the controlling terminal, see Prompter
	PolicyAsk Policy = "ask"
)

// ParsePolicy validates a policy name
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyDefer, PolicyAccept, PolicyReject, PolicyAsk:
		return p, nil
	}
	return "", fmt.Errorf("unknown confirm policy %q", s)
}

var _ ports.Confirmer = (*Confirmer)(nil)

// Confirmer answers every request according to a fixed policy.
// Answers are delivered on their own goroutine, after the request returns.
type Confirmer struct {
	policy Policy
	log    *logrus.Entry
}

// New creates a policy confirmer
func New(policy Policy, log *logrus.Entry) *Confirmer {
	return &Confirmer{
		policy: policy,
		log:    log.WithField("component", "confirm"),
	}
}

// RequestLargeContentConfirmation implements ports.Confirmer
func (c *Confirmer) RequestLargeContentConfirmation(item domain.PendingItem, onAccept, onReject func()) {
	entry := c.log.WithFields(logrus.Fields{
		"pending": item.ID,
		"kind":    item.Kind,
		"size":    item.Size,
		"policy":  c.policy,
	})

	switch c.policy {
	case PolicyAccept:
		entry.Info("accepting large content")
		go onAccept()
	case PolicyReject:
		entry.Info("rejecting large content")
		go onReject()
	default:
		entry.Info("large content pending until resolved")
	}
}
