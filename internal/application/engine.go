package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"clipkeep/internal/domain"
	"clipkeep/internal/ports"
)

// Options configure an Engine
type Options struct {
	Limits          Limits
	Monitor         MonitorOptions
	LegacyFile      string
	IndexPath       string
	StartMonitoring bool
	PendingTTL      time.Duration
	CompactDelay    time.Duration
	JanitorSchedule string
}

// Deps are the collaborators of an Engine. Index, Thumbnails, Migrator,
// Confirmer and Notifier are optional.
type Deps struct {
	Clipboard  ports.Clipboard
	Store      ports.HistoryStore
	Files      ports.FileStore
	Index      ports.QueryIndex
	Thumbnails ports.ThumbnailGenerator
	Exclusions ports.ExclusionList
	Confirmer  ports.Confirmer
	Notifier   ports.Notifier
	Migrator   ports.Migrator
	Log        *logrus.Entry
}

// Engine is the clipboard capture and history service. Its lifecycle is
// New, Load, Start, Stop.
type Engine struct {
	opts      Options
	clipboard ports.Clipboard
	store     ports.HistoryStore
	files     ports.FileStore
	index     ports.QueryIndex
	thumbs    ports.ThumbnailGenerator
	notifier  ports.Notifier
	migrator  ports.Migrator
	log       *logrus.Entry

	history   *History
	pipeline  *Pipeline
	monitor   *Monitor
	janitor   *Janitor
	compactor *Debouncer

	loaded   atomic.Bool
	cancel   context.CancelFunc
	bg       sync.WaitGroup
	stopOnce sync.Once
}

// Ensure Engine implements HistoryService
var _ ports.HistoryService = (*Engine)(nil)

// New wires an engine from its collaborators
func New(deps Deps, opts Options) *Engine {
	if opts.CompactDelay <= 0 {
		opts.CompactDelay = 2 * time.Second
	}
	if opts.PendingTTL <= 0 {
		opts.PendingTTL = 30 * time.Minute
	}
	if opts.JanitorSchedule == "" {
		opts.JanitorSchedule = "@every 15m"
	}

	e := &Engine{
		opts:      opts,
		clipboard: deps.Clipboard,
		store:     deps.Store,
		files:     deps.Files,
		index:     deps.Index,
		thumbs:    deps.Thumbnails,
		notifier:  deps.Notifier,
		migrator:  deps.Migrator,
		log:       deps.Log.WithField("component", "engine"),
		history:   NewHistory(),
	}

	e.pipeline = NewPipeline(PipelineDeps{
		History:    e.history,
		Store:      deps.Store,
		Files:      deps.Files,
		Exclusions: deps.Exclusions,
		Confirmer:  deps.Confirmer,
		Thumbnails: deps.Thumbnails,
		Log:        deps.Log,
	}, opts.Limits)
	e.pipeline.onAccepted = e.indexUpsert
	e.pipeline.onEvicted = e.evicted

	e.monitor = NewMonitor(deps.Clipboard, domain.NewClassifier(), deps.Exclusions, e.pipeline.Submit, opts.Monitor, deps.Log)
	e.compactor = NewDebouncer(opts.CompactDelay, func() { e.compact(context.Background()) })
	e.janitor = NewJanitor(opts.JanitorSchedule, []JanitorTask{
		{Name: "expire-pending", Run: e.expirePending},
		{Name: "sweep-orphans", Run: e.sweepOrphans},
		{Name: "compact", Run: e.compactIfPending},
	}, deps.Log)
	return e
}

// Pipeline exposes the ingestion pipeline
func (e *Engine) Pipeline() *Pipeline {
	return e.pipeline
}

// Load migrates any legacy history, reads the store into memory, syncs the
// query index and schedules thumbnails
func (e *Engine) Load(ctx context.Context) error {
	e.migrate(ctx)

	items, err := e.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	e.history.Replace(items)
	e.openIndex(items)
	e.loaded.Store(true)

	e.log.WithField("items", len(items)).Info("history loaded")
	e.generateThumbnails(ctx, items)
	return nil
}

func (e *Engine) migrate(ctx context.Context) {
	if e.migrator == nil || e.opts.LegacyFile == "" {
		return
	}
	stats, attempted, err := e.migrator.Migrate(ctx, e.opts.LegacyFile)
	if !attempted {
		return
	}
	if err != nil {
		e.log.WithError(err).Warn("legacy history migration failed")
		e.notify(domain.EventMigrationFailed)
		return
	}
	e.log.WithField("merged", stats.Merged).Info("legacy history migration succeeded")
	e.notify(domain.EventMigrationSucceeded)
}

func (e *Engine) openIndex(items []domain.ClipboardItem) {
	if e.index == nil {
		return
	}
	if err := e.index.Open(e.opts.IndexPath); err != nil {
		e.log.WithError(err).Warn("query index unavailable, searching in memory")
		e.index = nil
		return
	}
	if !e.index.NeedsFullRebuild(len(items)) {
		return
	}
	if err := e.index.Rebuild(items); err != nil {
		e.log.WithError(err).Warn("query index rebuild failed, searching in memory")
		e.index.Close()
		e.index = nil
	}
}

// Start begins polling and scheduled maintenance
func (e *Engine) Start(ctx context.Context) error {
	if !e.loaded.Load() {
		return ErrNotLoaded
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	if err := e.janitor.Start(runCtx); err != nil {
		cancel()
		return err
	}

	e.bg.Add(1)
	go func() {
		defer e.bg.Done()
		e.monitor.Run(runCtx)
	}()

	if e.opts.StartMonitoring {
		if err := e.StartMonitoring(ctx); err != nil {
			e.log.WithError(err).Warn("failed to start monitoring")
		}
	}
	return nil
}

// Stop halts polling, drains in-flight work, flushes pending compaction and
// closes the index. It is safe to call without Start.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		if e.cancel != nil {
			e.cancel()
			e.janitor.Stop()
		}
		e.bg.Wait()
		e.monitor.Wait()
		e.compactor.Flush()

		if e.index != nil {
			if err := e.index.Close(); err != nil {
				e.log.WithError(err).Warn("failed to close query index")
			}
		}
	})
}

// StartMonitoring enables capture
func (e *Engine) StartMonitoring(ctx context.Context) error {
	changed, err := e.monitor.StartMonitoring(ctx)
	if err != nil {
		return fmt.Errorf("failed to read clipboard: %w", err)
	}
	e.monitor.ClearSuppression()
	if changed {
		e.notify(domain.EventMonitoringResumed)
	}
	return nil
}

// StopMonitoring pauses capture
func (e *Engine) StopMonitoring() {
	if e.monitor.StopMonitoring() {
		e.notify(domain.EventMonitoringPaused)
	}
}

// IsMonitoring reports whether capture is enabled
func (e *Engine) IsMonitoring() bool {
	return e.monitor.IsMonitoring()
}

// History returns every item, newest first
func (e *Engine) History() []domain.ClipboardItem {
	return e.history.Items()
}

// Item returns the item with the given id
func (e *Engine) Item(id string) (domain.ClipboardItem, error) {
	item, ok := e.history.Find(id)
	if !ok {
		return domain.ClipboardItem{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return item, nil
}

// Filter returns items of a kind and/or from a source application, newest first.
// Empty arguments match everything.
func (e *Engine) Filter(kind domain.Kind, sourceApp string) []domain.ClipboardItem {
	var out []domain.ClipboardItem
	for _, item := range e.history.Items() {
		if kind != "" && item.Kind() != kind {
			continue
		}
		if sourceApp != "" && !strings.EqualFold(item.SourceAppPath, sourceApp) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Search returns items whose text contains query, newest first.
// The query index is used when available.
func (e *Engine) Search(ctx context.Context, query string, kind domain.Kind, limit int) ([]domain.ClipboardItem, error) {
	if e.index != nil {
		ids, err := e.index.Search(query, kind, limit)
		if err == nil {
			return e.resolveIDs(ids), nil
		}
		e.log.WithError(err).Warn("index search failed, searching in memory")
	}
	return searchItems(e.history.Items(), query, kind, limit), nil
}

func (e *Engine) resolveIDs(ids []string) []domain.ClipboardItem {
	byID := make(map[string]domain.ClipboardItem)
	for _, item := range e.history.Items() {
		byID[item.ID] = item
	}
	out := make([]domain.ClipboardItem, 0, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			out = append(out, item)
		}
	}
	return out
}

func searchItems(items []domain.ClipboardItem, query string, kind domain.Kind, limit int) []domain.ClipboardItem {
	var out []domain.ClipboardItem
	for _, item := range items {
		if kind != "" && item.Kind() != kind {
			continue
		}
		if !item.Matches(query) {
			continue
		}
		out = append(out, item)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// CopyToClipboard writes an item back to the clipboard without re-capturing it
func (e *Engine) CopyToClipboard(ctx context.Context, item domain.ClipboardItem) error {
	before, beforeErr := e.monitor.ChangeCount(ctx)

	e.monitor.Suppress()
	if err := e.clipboard.Write(ctx, item); err != nil {
		e.monitor.ClearSuppression()
		return fmt.Errorf("failed to write clipboard: %w", err)
	}

	if !e.monitor.IsMonitoring() {
		e.monitor.ClearSuppression()
		return nil
	}
	// the write did not produce a new generation, so no tick will clear the flag
	if after, err := e.monitor.ChangeCount(ctx); beforeErr == nil && err == nil && after == before {
		e.monitor.ClearSuppression()
	}
	return nil
}

// DeleteItem removes an item and its unshared backing file
func (e *Engine) DeleteItem(ctx context.Context, id string) error {
	e.pipeline.commitMu.Lock()
	defer e.pipeline.commitMu.Unlock()

	item, ok := e.history.Remove(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if _, err := e.store.Delete(ctx, id); err != nil {
		e.history.Replace(append(e.history.Items(), item))
		return &ItemError{ID: id, Reason: "delete failed", Err: err}
	}

	e.indexDelete(id)
	e.pipeline.releaseFile(item)
	e.compactor.Trigger()
	return nil
}

// ClearAll deletes every item, every stored file and the index
func (e *Engine) ClearAll(ctx context.Context) error {
	e.pipeline.commitMu.Lock()
	defer e.pipeline.commitMu.Unlock()

	if err := e.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	e.compactor.Cancel()
	old := e.history.Clear()

	released := make(map[string]bool)
	for _, item := range old {
		if !item.IsFile() || released[item.FilePath] {
			continue
		}
		released[item.FilePath] = true
		if err := e.files.DeleteFile(item.FilePath); err != nil {
			e.log.WithError(err).WithField("path", item.FilePath).Warn("failed to delete backing file")
		}
	}

	if e.index != nil {
		if err := e.index.Reset(); err != nil {
			e.log.WithError(err).Warn("failed to reset query index")
		}
	}
	e.log.WithField("items", len(old)).Info("history cleared")
	return nil
}

// ExportItems returns every item, newest first, for serialization
func (e *Engine) ExportItems() []domain.ClipboardItem {
	return e.history.Items()
}

// ImportItems merges items by id. Items with known ids, file items over the
// hard size cap and consecutive duplicates are skipped.
func (e *Engine) ImportItems(ctx context.Context, items []domain.ClipboardItem) (domain.ImportResult, error) {
	e.pipeline.commitMu.Lock()
	defer e.pipeline.commitMu.Unlock()

	var result domain.ImportResult
	existing := e.history.Items()
	seen := make(map[string]bool, len(existing))
	for _, item := range existing {
		seen[item.ID] = true
	}

	incoming := make(map[string]bool)
	var candidates []domain.ClipboardItem
	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if seen[item.ID] || incoming[item.ID] {
			result.Skipped++
			continue
		}
		if item.IsFile() && e.opts.Limits.MaxFileSize > 0 && item.FileSize > e.opts.Limits.MaxFileSize {
			result.Skipped++
			continue
		}
		item.Thumbnail = nil
		incoming[item.ID] = true
		candidates = append(candidates, item)
	}

	timeline := append(existing, candidates...)
	domain.SortOldestFirst(timeline)

	var kept, accepted []domain.ClipboardItem
	for _, item := range timeline {
		if incoming[item.ID] && len(kept) > 0 && kept[len(kept)-1].IsDuplicateOf(item) {
			result.Skipped++
			continue
		}
		kept = append(kept, item)
		if incoming[item.ID] {
			accepted = append(accepted, item)
		}
	}
	if len(accepted) == 0 {
		return result, nil
	}

	if err := e.store.RewriteAll(ctx, accepted); err != nil {
		return result, fmt.Errorf("failed to write imported items: %w", err)
	}
	e.history.Replace(kept)
	result.Imported = len(accepted)

	if evicted := e.history.Evict(e.opts.Limits.MaxHistory); len(evicted) > 0 {
		if err := e.store.Replace(ctx, e.history.Items()); err != nil {
			e.log.WithError(err).Warn("failed to rewrite history after import eviction")
		}
		for _, item := range evicted {
			e.pipeline.releaseFile(item)
		}
	}

	e.rebuildIndex()
	e.generateThumbnails(ctx, accepted)
	e.log.WithFields(logrus.Fields{"imported": result.Imported, "skipped": result.Skipped}).Info("items imported")
	return result, nil
}

// Resolve completes a pending large-content confirmation
func (e *Engine) Resolve(ctx context.Context, pendingID string, accept bool) (domain.IngestResult, error) {
	return e.pipeline.Resolve(ctx, pendingID, accept)
}

// Pending lists candidates waiting for confirmation
func (e *Engine) Pending() []domain.PendingItem {
	return e.pipeline.Pending()
}

// Maintain runs one janitor cycle now
func (e *Engine) Maintain(ctx context.Context) error {
	return e.janitor.RunNow(ctx)
}

func (e *Engine) generateThumbnails(ctx context.Context, items []domain.ClipboardItem) {
	if e.thumbs == nil {
		return
	}
	var fileItems []domain.ClipboardItem
	for _, item := range items {
		if item.IsFile() {
			fileItems = append(fileItems, item)
		}
	}
	if len(fileItems) == 0 {
		return
	}

	bg := context.WithoutCancel(ctx)
	e.bg.Add(1)
	go func() {
		defer e.bg.Done()
		e.thumbs.GenerateAll(bg, fileItems, e.history.SetThumbnail)
	}()
}

func (e *Engine) indexUpsert(item domain.ClipboardItem) {
	if e.index == nil {
		return
	}
	if err := e.index.Upsert(item); err != nil {
		e.log.WithError(err).WithField("id", item.ID).Warn("failed to index item")
	}
}

func (e *Engine) indexDelete(id string) {
	if e.index == nil {
		return
	}
	if err := e.index.Delete(id); err != nil {
		e.log.WithError(err).WithField("id", id).Warn("failed to remove item from index")
	}
}

func (e *Engine) rebuildIndex() {
	if e.index == nil {
		return
	}
	if err := e.index.Rebuild(e.history.Items()); err != nil {
		e.log.WithError(err).Warn("query index rebuild failed")
	}
}

func (e *Engine) evicted(items []domain.ClipboardItem) {
	for _, item := range items {
		e.indexDelete(item.ID)
	}
	e.compactor.Trigger()
}

// compact rewrites the store densely from the in-memory history
func (e *Engine) compact(ctx context.Context) {
	e.pipeline.commitMu.Lock()
	defer e.pipeline.commitMu.Unlock()

	if err := e.store.Replace(ctx, e.history.Items()); err != nil {
		e.log.WithError(err).Warn("history compaction failed")
		return
	}
	e.log.Debug("history compacted")
}

func (e *Engine) compactIfPending(ctx context.Context) error {
	if e.compactor.Cancel() {
		e.compact(ctx)
	}
	return nil
}

func (e *Engine) expirePending(ctx context.Context) error {
	if n := e.pipeline.ExpirePending(e.opts.PendingTTL); n > 0 {
		e.log.WithField("count", n).Info("expired pending confirmations")
	}
	return nil
}

// sweepOrphans deletes stored files that no item references
func (e *Engine) sweepOrphans(ctx context.Context) error {
	e.pipeline.filesMu.Lock()
	defer e.pipeline.filesMu.Unlock()

	orphans, err := e.files.Orphans(e.history.ReferencedPaths())
	if err != nil {
		return err
	}
	for _, path := range orphans {
		if err := e.files.DeleteFile(path); err != nil {
			e.log.WithError(err).WithField("path", path).Warn("failed to delete orphaned file")
		}
	}
	if len(orphans) > 0 {
		e.log.WithField("count", len(orphans)).Info("orphaned files removed")
	}
	return nil
}

func (e *Engine) notify(event domain.Event) {
	if e.notifier != nil {
		e.notifier.Notify(event)
	}
}
