package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"clipkeep/internal/adapters/tui/views"
	"clipkeep/internal/domain"
)

const previewWidth = 60

// printItems writes one row per item, newest first
func printItems(w io.Writer, items []domain.ClipboardItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items")
		return
	}

	now := time.Now()
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("ID", "AGE", "KIND", "CONTENT")
	for _, item := range items {
		t.Row(item.ID, views.FormatAge(item.Date, now), string(item.Kind()), views.ItemTitle(item, previewWidth))
	}
	fmt.Fprintln(w, t)
}

// printDetail writes every stored field of an item followed by its text
func printDetail(w io.Writer, item domain.ClipboardItem) {
	fmt.Fprintf(w, "ID:       %s\n", item.ID)
	fmt.Fprintf(w, "Kind:     %s\n", item.Kind())
	fmt.Fprintf(w, "Captured: %s\n", item.Date.Local().Format(time.DateTime))
	if item.SourceAppPath != "" {
		fmt.Fprintf(w, "Source:   %s\n", item.SourceAppPath)
	}
	if item.IsFile() {
		fmt.Fprintf(w, "File:     %s\n", item.FilePath)
		fmt.Fprintf(w, "Size:     %s\n", views.FormatSize(item.FileSize))
	}
	if item.FileHash != "" {
		fmt.Fprintf(w, "SHA-256:  %s\n", item.FileHash)
	}
	if item.QRCodeContent != "" {
		fmt.Fprintf(w, "QR code:  %s\n", item.QRCodeContent)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, item.Text)
}
