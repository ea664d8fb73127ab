package domain

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Classifier turns a clipboard snapshot into one typed result.
// Priority: local file, remote URL, image, styled text, plain text.
type Classifier struct {
	exists func(path string) bool
}

// NewClassifier creates a classifier that checks file references against the disk
func NewClassifier() *Classifier {
	return &Classifier{exists: regularFileExists}
}

// Classify returns the first matching representation, or false when the
// snapshot holds nothing supported
func (c *Classifier) Classify(s Snapshot) (Classified, bool) {
	local, remote := c.splitFileURLs(s.Strings[TypeFileURL])

	if local != "" {
		return Classified{Kind: KindFile, Text: local, FilePath: local}, true
	}

	// Image payloads win over URL-typed metadata that image sharing often attaches
	if !s.HasImage() {
		candidates := append(append([]string{}, s.Strings[TypeURL]...), remote...)
		for _, raw := range candidates {
			if IsRemoteURL(raw) {
				return Classified{Kind: KindURL, Text: strings.TrimSpace(raw)}, true
			}
		}
	}

	if data := s.Data[TypeTIFF]; len(data) > 0 {
		return Classified{Kind: KindImage, Text: ImageText, ImageData: data}, true
	}
	if data := s.Data[TypePNG]; len(data) > 0 {
		return Classified{Kind: KindImage, Text: ImageText, ImageData: data}, true
	}

	plain := ValidText(firstNonEmpty(s.Strings[TypePlainText]))

	if rich := s.Data[TypeRTF]; len(rich) > 0 {
		text := plain
		if text == "" {
			text = ValidText(string(rich))
		}
		return Classified{Kind: KindRichText, Text: text, RichText: rich}, true
	}

	if plain != "" {
		return Classified{Kind: KindPlainText, Text: plain}, true
	}

	return Classified{}, false
}

// splitFileURLs separates entries that resolve to existing local files from
// well-formed remote URLs. Unresolvable entries are dropped.
func (c *Classifier) splitFileURLs(entries []string) (local string, remote []string) {
	for _, raw := range entries {
		if path, ok := LocalPath(raw); ok {
			if local == "" && c.exists(path) {
				local = path
			}
			continue
		}
		if IsRemoteURL(raw) {
			remote = append(remote, raw)
		}
	}
	return local, remote
}

// LocalPath resolves a file URL or absolute path to a filesystem path
func LocalPath(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw), true
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "file" || u.Path == "" {
		return "", false
	}
	return filepath.Clean(u.Path), true
}

// IsRemoteURL reports whether raw is a well-formed URL with a non-file scheme and a host
func IsRemoteURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, " \n\t") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Scheme != "file" && u.Host != ""
}

// ValidText replaces invalid UTF-8 sequences with U+FFFD. JSON encoding
// performs the same substitution, so normalizing on capture keeps the held
// text identical to what is persisted and exported.
func ValidText(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func regularFileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
