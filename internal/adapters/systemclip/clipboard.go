package systemclip

import (
	"context"
	"crypto/sha256"
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/atotto/clipboard"

	"clipkeep/internal/domain"
	"clipkeep/internal/ports"
)

// ErrUnsupported is returned when no clipboard utility is available
var ErrUnsupported = errors.New("system clipboard is not supported on this host")

var _ ports.Clipboard = (*Clipboard)(nil)

// Clipboard implements ports.Clipboard over the text clipboard exposed by
// atotto/clipboard. The host offers no generation counter, so one is kept
// here and bumped whenever the clipboard text changes.
type Clipboard struct {
	read  func() (string, error)
	write func(string) error

	mu       sync.Mutex
	count    int64
	lastHash [sha256.Size]byte
	primed   bool
}

// New creates a system clipboard adapter
func New() *Clipboard {
	return &Clipboard{
		read:  clipboard.ReadAll,
		write: clipboard.WriteAll,
	}
}

// Supported reports whether a clipboard utility was found
func Supported() bool {
	return !clipboard.Unsupported
}

// ChangeCount implements ports.Clipboard
func (c *Clipboard) ChangeCount(ctx context.Context) (int64, error) {
	text, err := c.read()
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.observe(text)
	return c.count, nil
}

// observe bumps the generation when text differs from the last reading.
// Callers hold c.mu.
func (c *Clipboard) observe(text string) {
	sum := sha256.Sum256([]byte(text))
	if !c.primed {
		c.primed = true
		c.lastHash = sum
		return
	}
	if sum != c.lastHash {
		c.lastHash = sum
		c.count++
	}
}

// Snapshot implements ports.Clipboard
func (c *Clipboard) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	text, err := c.read()
	if err != nil {
		return domain.Snapshot{}, err
	}
	return SnapshotFromText(text), nil
}

// Write implements ports.Clipboard. File items are written as a file URL.
func (c *Clipboard) Write(ctx context.Context, item domain.ClipboardItem) error {
	text := item.Text
	if item.IsFile() {
		text = (&url.URL{Scheme: "file", Path: item.FilePath}).String()
	}
	if err := c.write(text); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.observe(text)
	return nil
}

// FrontmostApp implements ports.Clipboard. The text clipboard carries no
// owner information.
func (c *Clipboard) FrontmostApp(ctx context.Context) string {
	return ""
}

// SnapshotFromText derives the representations a plain text clipboard can
// carry: a list of file URLs, a single URL, RTF source or plain text
func SnapshotFromText(text string) domain.Snapshot {
	s := domain.NewSnapshot()
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return s
	}

	if lines := fileURLLines(trimmed); len(lines) > 0 {
		s = s.WithStrings(domain.TypeFileURL, lines...)
	} else if domain.IsRemoteURL(trimmed) {
		s = s.WithStrings(domain.TypeURL, trimmed)
	}

	if strings.HasPrefix(trimmed, `{\rtf`) {
		s = s.WithData(domain.TypeRTF, []byte(text))
	}

	return s.WithStrings(domain.TypePlainText, text)
}

// fileURLLines returns the lines of text when every line is a file URL,
// the text/uri-list form file managers put on the clipboard
func fileURLLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "file://") {
			return nil
		}
		lines = append(lines, line)
	}
	return lines
}
