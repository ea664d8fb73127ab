package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"clipkeep/internal/adapters/filesystem"
	"clipkeep/internal/domain"
	"clipkeep/internal/logging"
	"clipkeep/internal/ports"
)

var errClipboardBusy = errors.New("clipboard busy")

// fakeClipboard is an in-memory clipboard with a generation counter
type fakeClipboard struct {
	mu            sync.Mutex
	count         int64
	snapshot      domain.Snapshot
	app           string
	failSnapshots int
	snapshotCalls int
	writes        []domain.ClipboardItem
	silentWrites  bool
}

func (c *fakeClipboard) ChangeCount(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count, nil
}

func (c *fakeClipboard) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshotCalls++
	if c.failSnapshots > 0 {
		c.failSnapshots--
		return domain.Snapshot{}, errClipboardBusy
	}
	return c.snapshot, nil
}

func (c *fakeClipboard) Write(ctx context.Context, item domain.ClipboardItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, item)
	if c.silentWrites {
		return nil
	}
	c.count++
	c.snapshot = domain.NewSnapshot().WithStrings(domain.TypePlainText, item.Text)
	return nil
}

func (c *fakeClipboard) FrontmostApp(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.app
}

// copyText simulates an external application replacing the clipboard
func (c *fakeClipboard) copyText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	c.snapshot = domain.NewSnapshot().WithStrings(domain.TypePlainText, text)
}

func (c *fakeClipboard) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotCalls
}

type fakeConfirmer struct {
	mu       sync.Mutex
	requests []domain.PendingItem
	accepts  []func()
	rejects  []func()
}

func (c *fakeConfirmer) RequestLargeContentConfirmation(item domain.PendingItem, onAccept, onReject func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, item)
	c.accepts = append(c.accepts, onAccept)
	c.rejects = append(c.rejects, onReject)
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []domain.Event
}

func (n *fakeNotifier) Notify(event domain.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *fakeNotifier) received() []domain.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Event(nil), n.events...)
}

// gatedFiles blocks image stores until release is closed
type gatedFiles struct {
	ports.FileStore
	entered chan struct{}
	release chan struct{}
}

func newGatedFiles(inner ports.FileStore) *gatedFiles {
	return &gatedFiles{FileStore: inner, entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedFiles) StoreImageBytes(data []byte) (string, error) {
	close(g.entered)
	<-g.release
	return g.FileStore.StoreImageBytes(data)
}

type exclusions map[string]bool

func (e exclusions) IsExcluded(app string) bool {
	return e[app]
}

// stepClock advances one second per reading so capture times strictly increase
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type testEnv struct {
	engine    *Engine
	clipboard *fakeClipboard
	store     *filesystem.ChunkStore
	files     *filesystem.FileStore
	confirmer *fakeConfirmer
	notifier  *fakeNotifier
	srcDir    string
}

func newTestEnv(t *testing.T, limits Limits) *testEnv {
	t.Helper()
	root := t.TempDir()
	log := logging.Discard()

	env := &testEnv{
		clipboard: &fakeClipboard{},
		store:     filesystem.NewChunkStore(filepath.Join(root, "history"), 10, log),
		files:     filesystem.NewFileStore(filepath.Join(root, "files"), filesystem.DuplicateBySize),
		confirmer: &fakeConfirmer{},
		notifier:  &fakeNotifier{},
		srcDir:    t.TempDir(),
	}
	env.engine = New(Deps{
		Clipboard:  env.clipboard,
		Store:      env.store,
		Files:      env.files,
		Exclusions: exclusions{"/usr/bin/keepassxc": true},
		Confirmer:  env.confirmer,
		Notifier:   env.notifier,
		Migrator:   filesystem.NewMigrator(env.store, env.files, log),
		Log:        log,
	}, Options{
		Limits:          limits,
		Monitor:         MonitorOptions{Interval: 5 * time.Millisecond, ReadAttempts: 3, RetryDelay: time.Millisecond},
		LegacyFile:      filepath.Join(root, "history.json"),
		StartMonitoring: true,
		CompactDelay:    time.Hour,
	})
	env.engine.pipeline.now = newStepClock().Now
	require.NoError(t, env.engine.Load(context.Background()))
	t.Cleanup(env.engine.Stop)
	return env
}

func (env *testEnv) submitText(t *testing.T, text string) domain.IngestResult {
	t.Helper()
	return env.engine.pipeline.Submit(context.Background(), textCandidate(text))
}

// writeSource creates an external file of size bytes
func (env *testEnv) writeSource(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(env.srcDir, name)
	data := make([]byte, size)
	for n := range data {
		data[n] = byte('a' + n%26)
	}
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func textCandidate(text string) Candidate {
	return Candidate{Classified: domain.Classified{Kind: domain.KindPlainText, Text: text}}
}

func fileCandidate(path string) Candidate {
	return Candidate{Classified: domain.Classified{Kind: domain.KindFile, Text: path, FilePath: path}}
}

func texts(items []domain.ClipboardItem) []string {
	out := make([]string, len(items))
	for n, item := range items {
		out[n] = item.Text
	}
	return out
}
