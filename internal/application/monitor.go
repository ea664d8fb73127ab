package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"

	"clipkeep/internal/domain"
	"clipkeep/internal/ports"
)

var errNothingRecognized = errors.New("nothing recognized on clipboard")

// MonitorOptions tune the change detector
type MonitorOptions struct {
	Interval     time.Duration
	ReadAttempts int
	RetryDelay   time.Duration
}

// Monitor polls the clipboard generation and hands each change to the
// pipeline without blocking the next tick
type Monitor struct {
	clipboard  ports.Clipboard
	classifier *domain.Classifier
	exclusions ports.ExclusionList
	submit     func(ctx context.Context, c Candidate) domain.IngestResult
	opts       MonitorOptions
	log        *logrus.Entry

	mu              sync.Mutex
	lastChangeCount int64
	monitoring      bool

	suppress atomic.Bool
	inflight sync.WaitGroup
}

// NewMonitor creates a change detector feeding submit
func NewMonitor(clipboard ports.Clipboard, classifier *domain.Classifier, exclusions ports.ExclusionList,
	submit func(ctx context.Context, c Candidate) domain.IngestResult, opts MonitorOptions, log *logrus.Entry) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = 500 * time.Millisecond
	}
	if opts.ReadAttempts <= 0 {
		opts.ReadAttempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 100 * time.Millisecond
	}
	return &Monitor{
		clipboard:  clipboard,
		classifier: classifier,
		exclusions: exclusions,
		submit:     submit,
		opts:       opts,
		log:        log.WithField("component", "monitor"),
	}
}

// Run polls until ctx is cancelled. In-flight ingestions are not cancelled;
// use Wait to drain them.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// Wait blocks until every dispatched ingestion has finished
func (m *Monitor) Wait() {
	m.inflight.Wait()
}

// StartMonitoring enables capture and resynchronizes to the current
// generation so content already on the clipboard is not ingested
func (m *Monitor) StartMonitoring(ctx context.Context) (changed bool, err error) {
	count, err := m.clipboard.ChangeCount(ctx)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastChangeCount = count
	changed = !m.monitoring
	m.monitoring = true
	return changed, nil
}

// StopMonitoring disables capture. It is immediate and idempotent.
func (m *Monitor) StopMonitoring() (changed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	changed = m.monitoring
	m.monitoring = false
	return changed
}

// IsMonitoring reports whether capture is enabled
func (m *Monitor) IsMonitoring() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.monitoring
}

// Suppress marks the next detected change as the engine's own write
func (m *Monitor) Suppress() {
	m.suppress.Store(true)
}

// ClearSuppression resets the self-write flag
func (m *Monitor) ClearSuppression() {
	m.suppress.Store(false)
}

// Suppressed reports whether the self-write flag is set
func (m *Monitor) Suppressed() bool {
	return m.suppress.Load()
}

// ChangeCount exposes the current clipboard generation
func (m *Monitor) ChangeCount(ctx context.Context) (int64, error) {
	return m.clipboard.ChangeCount(ctx)
}

func (m *Monitor) tick(ctx context.Context) {
	m.mu.Lock()
	if !m.monitoring {
		m.mu.Unlock()
		return
	}
	count, err := m.clipboard.ChangeCount(ctx)
	if err != nil {
		m.mu.Unlock()
		m.log.WithError(err).Debug("failed to read clipboard generation")
		return
	}
	if count == m.lastChangeCount {
		m.mu.Unlock()
		return
	}
	// coalesce bursts to the latest generation
	m.lastChangeCount = count
	m.mu.Unlock()

	app := m.clipboard.FrontmostApp(ctx)
	if m.exclusions != nil && m.exclusions.IsExcluded(app) {
		m.log.WithField("app", app).Debug("skipping change from excluded application")
		return
	}

	suppressed := m.suppress.Load()
	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		if suppressed {
			defer m.suppress.Store(false)
		}
		m.process(context.WithoutCancel(ctx), app, suppressed)
	}()
}

// process reads and classifies with bounded retries, then submits
func (m *Monitor) process(ctx context.Context, app string, suppressed bool) {
	var classified domain.Classified
	backoff := retry.WithMaxRetries(uint64(m.opts.ReadAttempts-1), retry.NewConstant(m.opts.RetryDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		snapshot, err := m.clipboard.Snapshot(ctx)
		if err != nil {
			return retry.RetryableError(err)
		}
		c, ok := m.classifier.Classify(snapshot)
		if !ok {
			return retry.RetryableError(errNothingRecognized)
		}
		classified = c
		return nil
	})
	if err != nil {
		m.log.WithError(err).Debug("no usable clipboard content")
		return
	}

	result := m.submit(ctx, Candidate{Classified: classified, SourceApp: app, Suppressed: suppressed})
	m.log.WithFields(logrus.Fields{"kind": classified.Kind, "outcome": result.Outcome}).Debug("clipboard change processed")
}
