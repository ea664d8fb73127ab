// Package app assembles a ready-to-use history engine from configuration.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"clipkeep/internal/adapters/confirm"
	"clipkeep/internal/adapters/filesystem"
	"clipkeep/internal/adapters/notify"
	"clipkeep/internal/adapters/sqlite"
	"clipkeep/internal/adapters/systemclip"
	"clipkeep/internal/adapters/thumbnail"
	"clipkeep/internal/application"
	"clipkeep/internal/config"
	"clipkeep/internal/logging"
	"clipkeep/internal/ports"
)

// Runtime owns a loaded engine and the resources behind it
type Runtime struct {
	Config   *config.Config
	Engine   *application.Engine
	Notifier *notify.Notifier
	Log      *logrus.Logger

	logCloser io.Closer
}

// Overrides let callers replace adapters, mainly the system clipboard
type Overrides struct {
	Clipboard ports.Clipboard
	LogOutput io.Writer
}

// Open builds every adapter from cfg and loads history from disk.
// Close must be called to flush pending writes.
func Open(ctx context.Context, cfg *config.Config, o Overrides) (*Runtime, error) {
	log, closer, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	if o.LogOutput != nil {
		log.SetOutput(o.LogOutput)
	}

	rt := &Runtime{Config: cfg, Log: log, logCloser: closer}
	deps, err := rt.deps(o)
	if err != nil {
		closer.Close()
		return nil, err
	}

	rt.Engine = application.New(deps, options(cfg))
	if err := rt.Engine.Load(ctx); err != nil {
		rt.Engine.Stop()
		closer.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *Runtime) deps(o Overrides) (application.Deps, error) {
	cfg := rt.Config
	root := logrus.NewEntry(rt.Log)

	policy, err := confirm.ParsePolicy(cfg.History.ConfirmPolicy)
	if err != nil {
		return application.Deps{}, err
	}

	store := filesystem.NewChunkStore(cfg.HistoryDir(), cfg.Storage.ChunkSize, root)
	files := filesystem.NewFileStore(cfg.FilesDir(), filesystem.DuplicateMode(cfg.History.DuplicateDetection))
	rt.Notifier = notify.New(root)

	deps := application.Deps{
		Clipboard:  o.Clipboard,
		Store:      store,
		Files:      files,
		Exclusions: config.NewExclusionList(cfg.Monitor.ExcludedApps),
		Confirmer:  rt.confirmer(policy, root),
		Notifier:   rt.Notifier,
		Migrator:   filesystem.NewMigrator(store, files, root),
		Log:        root,
	}
	if deps.Clipboard == nil {
		if !systemclip.Supported() {
			rt.Log.Warn("no system clipboard available, capture will not see changes")
		}
		deps.Clipboard = systemclip.New()
	}

	if cfg.IndexEnabled() {
		deps.Index = sqlite.NewIndex()
	}

	thumbs, err := thumbnail.New(cfg.Thumbnails.Size, cfg.Thumbnails.CacheSize, cfg.Thumbnails.Workers, root)
	if err != nil {
		rt.Log.WithError(err).Warn("thumbnails disabled")
	} else {
		deps.Thumbnails = thumbs
	}
	return deps, nil
}

// isTerminal reports whether stdin can answer prompts
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (rt *Runtime) confirmer(policy confirm.Policy, log *logrus.Entry) ports.Confirmer {
	if policy != confirm.PolicyAsk {
		return confirm.New(policy, log)
	}
	if !isTerminal() {
		rt.Log.Warn("confirm policy ask needs a terminal, deferring instead")
		return confirm.New(confirm.PolicyDefer, log)
	}
	return confirm.NewPrompter(os.Stdin, os.Stderr, log)
}

func options(cfg *config.Config) application.Options {
	return application.Options{
		Limits: application.Limits{
			MaxHistory:     cfg.History.MaxHistoryToSave,
			MaxFileSize:    cfg.History.MaxFileSizeToSave,
			AlertThreshold: cfg.History.LargeFileAlertThreshold,
		},
		Monitor: application.MonitorOptions{
			Interval:     cfg.Monitor.Interval,
			ReadAttempts: cfg.Monitor.ReadAttempts,
			RetryDelay:   cfg.Monitor.RetryDelay,
		},
		LegacyFile:      cfg.History.LegacyFile,
		IndexPath:       cfg.Index.Path,
		StartMonitoring: cfg.StartMonitoring(),
		PendingTTL:      cfg.Janitor.PendingTTL,
		CompactDelay:    cfg.Janitor.CompactDelay,
		JanitorSchedule: cfg.Janitor.Schedule,
	}
}

// Close stops the engine, flushing pending compaction, and releases the log
func (rt *Runtime) Close() error {
	rt.Engine.Stop()
	return rt.logCloser.Close()
}
