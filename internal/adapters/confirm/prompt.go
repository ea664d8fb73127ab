package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"clipkeep/internal/domain"
	"clipkeep/internal/ports"
)

var _ ports.Confirmer = (*Prompter)(nil)

// Prompter asks about large content on a terminal. Questions are asked one
// at a time; requests made while a question is open wait their turn.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	log *logrus.Entry

	mu sync.Mutex
	wg sync.WaitGroup
}

// NewPrompter creates a prompter reading answers from in
func NewPrompter(in io.Reader, out io.Writer, log *logrus.Entry) *Prompter {
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
		log: log.WithField("component", "confirm"),
	}
}

// RequestLargeContentConfirmation implements ports.Confirmer. An unreadable
// answer leaves the item pending.
func (p *Prompter) RequestLargeContentConfirmation(item domain.PendingItem, onAccept, onReject func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.mu.Lock()
		defer p.mu.Unlock()

		accept, err := p.ask(item)
		if err != nil {
			p.log.WithError(err).WithField("pending", item.ID).Warn("no answer, item stays pending")
			return
		}
		if accept {
			onAccept()
		} else {
			onReject()
		}
	}()
}

// Wait blocks until every open question is answered
func (p *Prompter) Wait() {
	p.wg.Wait()
}

func (p *Prompter) ask(item domain.PendingItem) (bool, error) {
	if _, err := fmt.Fprintf(p.out, "Keep large %s %q (%s)? [y/N] ", item.Kind, item.Text, formatBytes(item.Size)); err != nil {
		return false, err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
