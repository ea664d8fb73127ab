package commands

import (
	"context"
	"fmt"
	"strings"

	"clipkeep/internal/application"
	"clipkeep/internal/domain"
	"clipkeep/internal/ports"
)

var _ ports.HistoryService = (*fakeService)(nil)

// fakeService is an in-memory HistoryService, newest first
type fakeService struct {
	items    []domain.ClipboardItem
	pending  []domain.PendingItem
	copied   []domain.ClipboardItem
	imported []domain.ClipboardItem
	resolved map[string]bool
	monitor  bool
}

func newFakeService(items ...domain.ClipboardItem) *fakeService {
	return &fakeService{items: items, resolved: map[string]bool{}}
}

func (s *fakeService) History() []domain.ClipboardItem {
	return append([]domain.ClipboardItem(nil), s.items...)
}

func (s *fakeService) Item(id string) (domain.ClipboardItem, error) {
	for _, item := range s.items {
		if item.ID == id {
			return item, nil
		}
	}
	return domain.ClipboardItem{}, fmt.Errorf("%w: %s", application.ErrNotFound, id)
}

func (s *fakeService) Search(ctx context.Context, query string, kind domain.Kind, limit int) ([]domain.ClipboardItem, error) {
	var out []domain.ClipboardItem
	for _, item := range s.Filter(kind, "") {
		if strings.Contains(strings.ToLower(item.Text), strings.ToLower(query)) {
			out = append(out, item)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeService) Filter(kind domain.Kind, sourceApp string) []domain.ClipboardItem {
	var out []domain.ClipboardItem
	for _, item := range s.items {
		if kind != "" && item.Kind() != kind {
			continue
		}
		if sourceApp != "" && item.SourceAppPath != sourceApp {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (s *fakeService) Pending() []domain.PendingItem { return s.pending }

func (s *fakeService) CopyToClipboard(ctx context.Context, item domain.ClipboardItem) error {
	s.copied = append(s.copied, item)
	return nil
}

func (s *fakeService) DeleteItem(ctx context.Context, id string) error {
	for n, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:n], s.items[n+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", application.ErrNotFound, id)
}

func (s *fakeService) ClearAll(ctx context.Context) error {
	s.items = nil
	return nil
}

func (s *fakeService) ImportItems(ctx context.Context, items []domain.ClipboardItem) (domain.ImportResult, error) {
	s.imported = append(s.imported, items...)
	return domain.ImportResult{Imported: len(items)}, nil
}

func (s *fakeService) ExportItems() []domain.ClipboardItem { return s.History() }

func (s *fakeService) Resolve(ctx context.Context, pendingID string, accept bool) (domain.IngestResult, error) {
	for _, p := range s.pending {
		if p.ID == pendingID {
			s.resolved[pendingID] = accept
			if !accept {
				return domain.IngestResult{Outcome: domain.OutcomeDropped}, nil
			}
			return domain.IngestResult{Outcome: domain.OutcomeAccepted}, nil
		}
	}
	return domain.IngestResult{}, application.ErrPendingNotFound
}

func (s *fakeService) StartMonitoring(ctx context.Context) error {
	s.monitor = true
	return nil
}

func (s *fakeService) StopMonitoring()    { s.monitor = false }
func (s *fakeService) IsMonitoring() bool { return s.monitor }
