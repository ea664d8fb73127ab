package domain

import (
	"image"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// ChunkSize is the maximum number of items persisted in one history chunk
const ChunkSize = 100

// Placeholder texts for items without a textual payload
const (
	ImageText = "Image File"
	FileText  = "File"
)

// previewRunes bounds the text kept in an IndexedClipboardItem
const previewRunes = 120

// ClipboardItem is a captured unit of clipboard content
type ClipboardItem struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	RichText      []byte    `json:"richText,omitempty"`
	Date          time.Time `json:"date"`
	FilePath      string    `json:"filePath,omitempty"`
	FileSize      int64     `json:"fileSize,omitempty"`
	FileHash      string    `json:"fileHash,omitempty"`
	QRCodeContent string    `json:"qrCodeContent,omitempty"`
	SourceAppPath string    `json:"sourceAppPath,omitempty"`

	// Thumbnail is populated asynchronously and never persisted
	Thumbnail image.Image `json:"-"`
}

// IsFile reports whether the item is backed by a file in the file store
func (i ClipboardItem) IsFile() bool {
	return i.FilePath != ""
}

// IsDuplicateOf reports whether two items carry the same content.
// File items compare by stored path and size, text items by text.
// A file item is never a duplicate of a text item.
func (i ClipboardItem) IsDuplicateOf(other ClipboardItem) bool {
	if i.IsFile() != other.IsFile() {
		return false
	}
	if i.IsFile() {
		return i.FilePath == other.FilePath && i.FileSize == other.FileSize
	}
	return i.Text == other.Text
}

// Kind derives the content kind of a stored item
func (i ClipboardItem) Kind() Kind {
	switch {
	case i.IsFile() && i.Text == ImageText:
		return KindImage
	case i.IsFile():
		return KindFile
	case len(i.RichText) > 0:
		return KindRichText
	case IsRemoteURL(i.Text):
		return KindURL
	default:
		return KindPlainText
	}
}

// IndexedClipboardItem is the lightweight projection persisted next to each chunk
type IndexedClipboardItem struct {
	ID            string    `json:"id"`
	Date          time.Time `json:"date"`
	Kind          Kind      `json:"kind"`
	Preview       string    `json:"preview"`
	HasRichText   bool      `json:"hasRichText,omitempty"`
	FilePath      string    `json:"filePath,omitempty"`
	FileSize      int64     `json:"fileSize,omitempty"`
	SourceAppPath string    `json:"sourceAppPath,omitempty"`
}

// Indexed returns the index projection of the item
func (i ClipboardItem) Indexed() IndexedClipboardItem {
	return IndexedClipboardItem{
		ID:            i.ID,
		Date:          i.Date,
		Kind:          i.Kind(),
		Preview:       truncateRunes(i.Text, previewRunes),
		HasRichText:   len(i.RichText) > 0,
		FilePath:      i.FilePath,
		FileSize:      i.FileSize,
		SourceAppPath: i.SourceAppPath,
	}
}

// IndexChunk projects every item of a chunk
func IndexChunk(items []ClipboardItem) []IndexedClipboardItem {
	out := make([]IndexedClipboardItem, len(items))
	for n, item := range items {
		out[n] = item.Indexed()
	}
	return out
}

// SortNewestFirst orders items by date descending, ties broken by ID
func SortNewestFirst(items []ClipboardItem) {
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].Date.Equal(items[b].Date) {
			return items[a].ID > items[b].ID
		}
		return items[a].Date.After(items[b].Date)
	})
}

// SortOldestFirst orders items by date ascending, ties broken by ID
func SortOldestFirst(items []ClipboardItem) {
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].Date.Equal(items[b].Date) {
			return items[a].ID < items[b].ID
		}
		return items[a].Date.Before(items[b].Date)
	})
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}

// FoldCase lowercases s with full Unicode case mapping. Every search path
// folds through it so results do not depend on which path answers.
func FoldCase(s string) string {
	return strings.ToLower(s)
}

// Matches reports whether the item's text or source application contains
// query, ignoring case. An empty query matches everything.
func (i ClipboardItem) Matches(query string) bool {
	if query == "" {
		return true
	}
	query = FoldCase(query)
	return strings.Contains(FoldCase(i.Text), query) || strings.Contains(FoldCase(i.SourceAppPath), query)
}
