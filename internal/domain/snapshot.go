package domain

// PasteboardType identifies one representation offered by a clipboard snapshot
type PasteboardType string

const (
	TypeFileURL   PasteboardType = "public.file-url"
	TypeURL       PasteboardType = "public.url"
	TypeTIFF      PasteboardType = "public.tiff" // native bitmap
	TypePNG       PasteboardType = "public.png"  // generic image object
	TypeRTF       PasteboardType = "public.rtf"
	TypePlainText PasteboardType = "public.utf8-plain-text"
)

// Snapshot is a point-in-time read of every representation on the clipboard.
// String-valued types (file URLs, URLs, plain text) live in Strings,
// binary types (images, styled text) in Data.
type Snapshot struct {
	Strings map[PasteboardType][]string
	Data    map[PasteboardType][]byte
}

// NewSnapshot returns an empty snapshot
func NewSnapshot() Snapshot {
	return Snapshot{
		Strings: make(map[PasteboardType][]string),
		Data:    make(map[PasteboardType][]byte),
	}
}

// WithStrings adds string values for a type
func (s Snapshot) WithStrings(t PasteboardType, values ...string) Snapshot {
	if s.Strings == nil {
		s.Strings = make(map[PasteboardType][]string)
	}
	s.Strings[t] = append(s.Strings[t], values...)
	return s
}

// WithData sets the binary payload for a type
func (s Snapshot) WithData(t PasteboardType, data []byte) Snapshot {
	if s.Data == nil {
		s.Data = make(map[PasteboardType][]byte)
	}
	s.Data[t] = data
	return s
}

// Types lists every representation present
func (s Snapshot) Types() []PasteboardType {
	var types []PasteboardType
	for t, v := range s.Strings {
		if len(v) > 0 {
			types = append(types, t)
		}
	}
	for t, v := range s.Data {
		if len(v) > 0 {
			types = append(types, t)
		}
	}
	return types
}

// Has reports whether a representation is present and non-empty
func (s Snapshot) Has(t PasteboardType) bool {
	return len(s.Strings[t]) > 0 || len(s.Data[t]) > 0
}

// HasImage reports whether any image payload is present
func (s Snapshot) HasImage() bool {
	return s.Has(TypeTIFF) || s.Has(TypePNG)
}

// Kind is the classified type of clipboard content
type Kind string

const (
	KindFile      Kind = "file"
	KindURL       Kind = "url"
	KindImage     Kind = "image"
	KindRichText  Kind = "richText"
	KindPlainText Kind = "text"
)

// ParseKind maps a user-supplied name to a Kind
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindFile, KindURL, KindImage, KindRichText, KindPlainText:
		return Kind(s), true
	}
	return "", false
}

// Classified is the single typed result of classifying a snapshot
type Classified struct {
	Kind      Kind
	Text      string
	RichText  []byte
	FilePath  string // external local path, KindFile only
	ImageData []byte // KindImage only
}
