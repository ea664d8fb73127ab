package application

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"clipkeep/internal/domain"
	"clipkeep/internal/ports"
)

// Candidate is one classified clipboard change entering the pipeline
type Candidate struct {
	Classified domain.Classified
	SourceApp  string
	// Suppressed marks content the engine wrote itself; it bypasses the size gates
	Suppressed bool
}

// Limits are the size and retention options applied to candidates
type Limits struct {
	MaxHistory     int   // 0 means unlimited
	MaxFileSize    int64 // hard cap in bytes, 0 means unlimited
	AlertThreshold int64 // confirmation threshold in bytes, 0 disables
}

type pendingEntry struct {
	candidate Candidate
	item      domain.PendingItem
	created   time.Time
}

// Pipeline turns candidates into stored history items
type Pipeline struct {
	history    *History
	store      ports.HistoryStore
	files      ports.FileStore
	exclusions ports.ExclusionList
	confirmer  ports.Confirmer
	thumbs     ports.ThumbnailGenerator
	limits     Limits
	log        *logrus.Entry

	// optional hooks set by the engine
	onAccepted func(item domain.ClipboardItem)
	onEvicted  func(items []domain.ClipboardItem)

	now   func() time.Time
	newID func() string

	// commitMu makes dedup, append and eviction one step
	commitMu sync.Mutex
	// filesMu is held shared while a payload is stored and committed, and
	// exclusively while orphaned files are swept
	filesMu sync.RWMutex

	pendingMu sync.Mutex
	pending   map[string]pendingEntry
}

// PipelineDeps are the collaborators of a Pipeline
type PipelineDeps struct {
	History    *History
	Store      ports.HistoryStore
	Files      ports.FileStore
	Exclusions ports.ExclusionList
	Confirmer  ports.Confirmer
	Thumbnails ports.ThumbnailGenerator
	Log        *logrus.Entry
}

// NewPipeline creates an ingestion pipeline
func NewPipeline(deps PipelineDeps, limits Limits) *Pipeline {
	return &Pipeline{
		history:    deps.History,
		store:      deps.Store,
		files:      deps.Files,
		exclusions: deps.Exclusions,
		confirmer:  deps.Confirmer,
		thumbs:     deps.Thumbnails,
		limits:     limits,
		log:        deps.Log.WithField("component", "pipeline"),
		now:        time.Now,
		newID:      uuid.NewString,
		pending:    make(map[string]pendingEntry),
	}
}

// Submit runs a candidate through exclusion, size gating, storage and dedup
func (p *Pipeline) Submit(ctx context.Context, c Candidate) domain.IngestResult {
	if !c.Suppressed && p.exclusions != nil && p.exclusions.IsExcluded(c.SourceApp) {
		return p.drop(c, "excluded source application")
	}
	return p.process(ctx, c, false)
}

// Resolve completes a pending candidate. Accepting re-enters the pipeline past
// the confirmation gate; rejecting discards the stashed payload.
func (p *Pipeline) Resolve(ctx context.Context, pendingID string, accept bool) (domain.IngestResult, error) {
	p.pendingMu.Lock()
	entry, ok := p.pending[pendingID]
	delete(p.pending, pendingID)
	p.pendingMu.Unlock()

	if !ok {
		return domain.IngestResult{}, fmt.Errorf("%w: %s", ErrPendingNotFound, pendingID)
	}
	if !accept {
		return p.drop(entry.candidate, "rejected by user"), nil
	}
	return p.process(ctx, entry.candidate, true), nil
}

// Pending lists candidates waiting for confirmation, oldest first
func (p *Pipeline) Pending() []domain.PendingItem {
	p.pendingMu.Lock()
	defer p.pendingMu.Unlock()

	entries := make([]pendingEntry, 0, len(p.pending))
	for _, entry := range p.pending {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].created.Before(entries[j].created)
	})

	items := make([]domain.PendingItem, len(entries))
	for n, entry := range entries {
		items[n] = entry.item
	}
	return items
}

// ExpirePending rejects candidates that have waited longer than ttl
func (p *Pipeline) ExpirePending(ttl time.Duration) int {
	cutoff := p.now().Add(-ttl)

	p.pendingMu.Lock()
	defer p.pendingMu.Unlock()

	expired := 0
	for id, entry := range p.pending {
		if entry.created.Before(cutoff) {
			delete(p.pending, id)
			expired++
			p.log.WithField("pending", id).Info("pending item expired")
		}
	}
	return expired
}

func (p *Pipeline) process(ctx context.Context, c Candidate, confirmed bool) domain.IngestResult {
	size, gated, err := payloadSize(c.Classified)
	if err != nil {
		p.log.WithError(err).Warn("cannot size candidate")
		return p.drop(c, "unreadable payload")
	}

	if gated && !c.Suppressed {
		if p.limits.MaxFileSize > 0 && size > p.limits.MaxFileSize {
			return p.drop(c, "exceeds maximum file size")
		}
		if !confirmed && p.limits.AlertThreshold > 0 && size > p.limits.AlertThreshold {
			return p.suspend(ctx, c, size)
		}
	}

	p.filesMu.RLock()
	defer p.filesMu.RUnlock()

	item, err := p.materialize(c, size)
	if err != nil {
		p.log.WithError(err).Warn("failed to store payload")
		return p.drop(c, "storage failure")
	}
	return p.commit(ctx, item)
}

// suspend stashes the candidate and asks the user; nothing is stored yet
func (p *Pipeline) suspend(ctx context.Context, c Candidate, size int64) domain.IngestResult {
	id := p.newID()
	pending := domain.PendingItem{
		ID:        id,
		Kind:      c.Classified.Kind,
		Text:      c.Classified.Text,
		Size:      size,
		SourceApp: c.SourceApp,
	}

	p.pendingMu.Lock()
	p.pending[id] = pendingEntry{candidate: c, item: pending, created: p.now()}
	p.pendingMu.Unlock()

	p.log.WithFields(logrus.Fields{"pending": id, "size": size, "kind": c.Classified.Kind}).Info("large content awaiting confirmation")

	if p.confirmer != nil {
		bg := context.WithoutCancel(ctx)
		p.confirmer.RequestLargeContentConfirmation(pending,
			func() { p.resolveCallback(bg, id, true) },
			func() { p.resolveCallback(bg, id, false) },
		)
	}
	return domain.IngestResult{Outcome: domain.OutcomePending, PendingID: id}
}

func (p *Pipeline) resolveCallback(ctx context.Context, id string, accept bool) {
	if _, err := p.Resolve(ctx, id, accept); err != nil {
		p.log.WithError(err).Debug("confirmation arrived for unknown item")
	}
}

// materialize copies file payloads into the file store and builds the item
func (p *Pipeline) materialize(c Candidate, size int64) (domain.ClipboardItem, error) {
	cl := c.Classified
	item := domain.ClipboardItem{
		ID:            p.newID(),
		Text:          cl.Text,
		SourceAppPath: c.SourceApp,
	}

	var stored string
	var err error
	switch cl.Kind {
	case domain.KindFile:
		stored, err = p.files.StoreFile(cl.FilePath)
	case domain.KindImage:
		stored, err = p.files.StoreImageBytes(cl.ImageData)
		item.Text = domain.ImageText
	case domain.KindRichText:
		item.RichText = cl.RichText
		return item, nil
	default:
		return item, nil
	}
	if err != nil {
		return domain.ClipboardItem{}, err
	}

	item.FilePath = stored
	item.FileSize = size
	if info, err := os.Stat(stored); err == nil {
		item.FileSize = info.Size()
	}
	if hash, err := p.files.Hash(stored); err == nil {
		item.FileHash = hash
	}
	if item.Text == "" {
		item.Text = domain.FileText
	}
	return item, nil
}

// commit dedups against the newest item, appends, then enforces the cap.
// The capture date is taken here so commit order and date order agree even
// when payload copies finish out of order.
func (p *Pipeline) commit(ctx context.Context, item domain.ClipboardItem) domain.IngestResult {
	p.commitMu.Lock()
	defer p.commitMu.Unlock()

	item.Date = p.now()

	if latest, ok := p.history.Latest(); ok && latest.IsDuplicateOf(item) {
		// a duplicate file item shares the stored path, so nothing to clean up
		p.log.WithField("kind", item.Kind()).Debug("dropping consecutive duplicate")
		return domain.IngestResult{Outcome: domain.OutcomeDropped, Reason: "duplicate of latest item"}
	}

	if err := p.store.Append(ctx, item); err != nil {
		p.log.WithError(err).Error("failed to persist item")
		p.releaseFile(item)
		return domain.IngestResult{Outcome: domain.OutcomeDropped, Reason: "storage failure"}
	}
	p.history.Prepend(item)

	p.log.WithFields(logrus.Fields{"id": item.ID, "kind": item.Kind()}).Debug("item captured")
	if p.onAccepted != nil {
		p.onAccepted(item)
	}

	p.evictLocked(ctx)

	if item.IsFile() && p.thumbs != nil {
		p.thumbs.Generate(context.WithoutCancel(ctx), item, p.history.SetThumbnail)
	}
	return domain.IngestResult{Outcome: domain.OutcomeAccepted, Item: item}
}

// evictLocked drops the oldest items beyond the cap and their unshared files
func (p *Pipeline) evictLocked(ctx context.Context) {
	evicted := p.history.Evict(p.limits.MaxHistory)
	if len(evicted) == 0 {
		return
	}

	for _, item := range evicted {
		if _, err := p.store.Delete(ctx, item.ID); err != nil {
			p.log.WithError(err).WithField("id", item.ID).Warn("failed to delete evicted item")
		}
		p.releaseFile(item)
	}
	p.log.WithField("count", len(evicted)).Debug("evicted items over history cap")

	if p.onEvicted != nil {
		p.onEvicted(evicted)
	}
}

// releaseFile deletes an item's backing file unless another item still uses it
func (p *Pipeline) releaseFile(item domain.ClipboardItem) {
	if !item.IsFile() || p.history.ReferencesPath(item.FilePath) {
		return
	}
	if err := p.files.DeleteFile(item.FilePath); err != nil {
		p.log.WithError(err).WithField("path", item.FilePath).Warn("failed to delete backing file")
	}
}

func (p *Pipeline) drop(c Candidate, reason string) domain.IngestResult {
	p.log.WithFields(logrus.Fields{"kind": c.Classified.Kind, "reason": reason}).Debug("candidate dropped")
	return domain.IngestResult{Outcome: domain.OutcomeDropped, Reason: reason}
}

// payloadSize returns the external payload size. Only file and image
// payloads are gated.
func payloadSize(c domain.Classified) (size int64, gated bool, err error) {
	switch c.Kind {
	case domain.KindFile:
		info, err := os.Stat(c.FilePath)
		if err != nil {
			return 0, true, err
		}
		return info.Size(), true, nil
	case domain.KindImage:
		return int64(len(c.ImageData)), true, nil
	default:
		return int64(len(c.Text) + len(c.RichText)), false, nil
	}
}
