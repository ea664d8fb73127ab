package application

import (
	"image"
	"sync"

	"clipkeep/internal/domain"
)

// History is the in-memory list of items, newest first.
// Every mutation goes through its methods.
type History struct {
	mu    sync.RWMutex
	items []domain.ClipboardItem
}

// NewHistory creates an empty history
func NewHistory() *History {
	return &History{}
}

// Replace swaps in a new item set and sorts it newest first
func (h *History) Replace(items []domain.ClipboardItem) {
	sorted := append([]domain.ClipboardItem(nil), items...)
	domain.SortNewestFirst(sorted)

	h.mu.Lock()
	h.items = sorted
	h.mu.Unlock()
}

// Items returns a copy of every item, newest first
func (h *History) Items() []domain.ClipboardItem {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]domain.ClipboardItem(nil), h.items...)
}

// Len returns the number of items
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.items)
}

// Latest returns the most recently captured item
func (h *History) Latest() (domain.ClipboardItem, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.items) == 0 {
		return domain.ClipboardItem{}, false
	}
	return h.items[0], true
}

// Prepend inserts a freshly captured item at the front
func (h *History) Prepend(item domain.ClipboardItem) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append([]domain.ClipboardItem{item}, h.items...)
}

// Find looks an item up by id
func (h *History) Find(id string) (domain.ClipboardItem, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, item := range h.items {
		if item.ID == id {
			return item, true
		}
	}
	return domain.ClipboardItem{}, false
}

// Remove deletes an item by id and returns it
func (h *History) Remove(id string) (domain.ClipboardItem, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for n, item := range h.items {
		if item.ID == id {
			h.items = append(h.items[:n:n], h.items[n+1:]...)
			return item, true
		}
	}
	return domain.ClipboardItem{}, false
}

// Clear drops every item and returns what was held
func (h *History) Clear() []domain.ClipboardItem {
	h.mu.Lock()
	defer h.mu.Unlock()
	old := h.items
	h.items = nil
	return old
}

// Evict trims the history to limit items and returns the evicted oldest
// items. A limit of 0 means unlimited.
func (h *History) Evict(limit int) []domain.ClipboardItem {
	h.mu.Lock()
	defer h.mu.Unlock()
	if limit <= 0 || len(h.items) <= limit {
		return nil
	}
	evicted := append([]domain.ClipboardItem(nil), h.items[limit:]...)
	h.items = h.items[:limit:limit]
	return evicted
}

// ReferencesPath reports whether any held item is backed by path
func (h *History) ReferencesPath(path string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, item := range h.items {
		if item.FilePath == path {
			return true
		}
	}
	return false
}

// ReferencedPaths returns every backing file path in use
func (h *History) ReferencedPaths() map[string]bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	paths := make(map[string]bool)
	for _, item := range h.items {
		if item.IsFile() {
			paths[item.FilePath] = true
		}
	}
	return paths
}

// SetThumbnail attaches a rendered preview to an item still in memory.
// It is a no-op when the item has since been removed.
func (h *History) SetThumbnail(id string, thumb image.Image) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for n := range h.items {
		if h.items[n].ID == id {
			h.items[n].Thumbnail = thumb
			return
		}
	}
}
