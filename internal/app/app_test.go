package app

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipkeep/internal/adapters/confirm"
	"clipkeep/internal/config"
	"clipkeep/internal/domain"
)

// memClipboard never changes unless written to
type memClipboard struct {
	mu    sync.Mutex
	count int64
	text  string
}

func (c *memClipboard) ChangeCount(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count, nil
}

func (c *memClipboard) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.NewSnapshot().WithStrings(domain.TypePlainText, c.text), nil
}

func (c *memClipboard) Write(ctx context.Context, item domain.ClipboardItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	c.text = item.Text
	return nil
}

func (c *memClipboard) FrontmostApp(ctx context.Context) string { return "" }

func testConfig(t *testing.T, indexed bool) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.SetHome(t.TempDir())
	cfg.Index.Enabled = &indexed
	return cfg
}

func TestOpen_PersistsAcrossRuntimes(t *testing.T) {
	cfg := testConfig(t, true)
	ctx := context.Background()

	rt, err := Open(ctx, cfg, Overrides{Clipboard: &memClipboard{}, LogOutput: io.Discard})
	require.NoError(t, err)
	assert.Empty(t, rt.Engine.History())

	result, err := rt.Engine.ImportItems(ctx, []domain.ClipboardItem{{ID: "a", Text: "kept"}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.NoError(t, rt.Close())

	assert.FileExists(t, cfg.Index.Path)

	rt, err = Open(ctx, cfg, Overrides{Clipboard: &memClipboard{}, LogOutput: io.Discard})
	require.NoError(t, err)
	defer rt.Close()

	found, err := rt.Engine.Search(ctx, "missing", "", 0)
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = rt.Engine.Search(ctx, "kept", "", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "a", found[0].ID)
}

func TestOpen_WithoutIndex(t *testing.T) {
	cfg := testConfig(t, false)

	rt, err := Open(context.Background(), cfg, Overrides{Clipboard: &memClipboard{}, LogOutput: io.Discard})
	require.NoError(t, err)
	require.NoError(t, rt.Close())

	assert.NoFileExists(t, cfg.Index.Path)
	assert.DirExists(t, filepath.Dir(cfg.HistoryDir()))
}

func TestOptions_FromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.History.MaxHistoryToSave = 50
	cfg.History.LargeFileAlertThreshold = 1 << 20

	opts := options(cfg)

	assert.Equal(t, 50, opts.Limits.MaxHistory)
	assert.Equal(t, int64(1<<20), opts.Limits.AlertThreshold)
	assert.Equal(t, cfg.Monitor.Interval, opts.Monitor.Interval)
	assert.True(t, opts.StartMonitoring)
	assert.Equal(t, "@every 15m", opts.JanitorSchedule)
}

func TestConfirmer_AskFallsBackWithoutTerminal(t *testing.T) {
	orig := isTerminal
	t.Cleanup(func() { isTerminal = orig })
	rt := &Runtime{Log: logrus.New()}
	rt.Log.SetOutput(io.Discard)
	log := logrus.NewEntry(rt.Log)

	isTerminal = func() bool { return false }
	assert.IsType(t, &confirm.Confirmer{}, rt.confirmer(confirm.PolicyAsk, log))

	isTerminal = func() bool { return true }
	assert.IsType(t, &confirm.Prompter{}, rt.confirmer(confirm.PolicyAsk, log))
	assert.IsType(t, &confirm.Confirmer{}, rt.confirmer(confirm.PolicyAccept, log))
}
