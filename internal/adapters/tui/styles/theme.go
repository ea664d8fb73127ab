package styles

import (
	"github.com/charmbracelet/lipgloss"

	"clipkeep/internal/domain"
)

var (
	// Palette
	Primary   = lipgloss.Color("#0EA5E9") // Sky
	Secondary = lipgloss.Color("#22C55E") // Green
	Muted     = lipgloss.Color("#64748B") // Slate
	Warning   = lipgloss.Color("#EAB308") // Yellow
	Error     = lipgloss.Color("#F43F5E") // Rose
	White     = lipgloss.Color("#FFFFFF")
	Black     = lipgloss.Color("#000000")

	// Kind colors
	KindText  = lipgloss.Color("#E5E7EB")
	KindRich  = lipgloss.Color("#F472B6") // Pink
	KindLink  = lipgloss.Color("#60A5FA") // Blue
	KindImage = lipgloss.Color("#F97316") // Orange
	KindFile  = lipgloss.Color("#A78BFA") // Violet

	App = lipgloss.NewStyle().
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// History rows
	Row = lipgloss.NewStyle()

	RowSelected = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Bold(true)

	Badge = lipgloss.NewStyle().
		Width(6).
		Bold(true)

	Age = lipgloss.NewStyle().
		Foreground(Muted).
		Width(5).
		Align(lipgloss.Right).
		MarginRight(1)

	// Status bar
	StatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#0F172A")).
			Foreground(White).
			Padding(0, 1)

	StatusOn = lipgloss.NewStyle().
			Background(Secondary).
			Foreground(Black).
			Padding(0, 1).
			MarginRight(1)

	StatusOff = lipgloss.NewStyle().
			Background(Warning).
			Foreground(Black).
			Padding(0, 1).
			MarginRight(1)

	InputLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	// Help styles
	HelpKey = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	HelpDesc = lipgloss.NewStyle().
			Foreground(Muted)

	HelpSeparator = lipgloss.NewStyle().
			Foreground(Muted).
			SetString(" • ")

	// Message styles
	Success = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	MutedText = lipgloss.NewStyle().
			Foreground(Muted)

	Preview = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(0, 1)
)

// KindColor returns the badge color for a content kind
func KindColor(kind domain.Kind) lipgloss.Color {
	switch kind {
	case domain.KindRichText:
		return KindRich
	case domain.KindURL:
		return KindLink
	case domain.KindImage:
		return KindImage
	case domain.KindFile:
		return KindFile
	default:
		return KindText
	}
}

// KindLabel returns the short badge text for a content kind
func KindLabel(kind domain.Kind) string {
	switch kind {
	case domain.KindRichText:
		return "RTF"
	case domain.KindURL:
		return "URL"
	case domain.KindImage:
		return "IMG"
	case domain.KindFile:
		return "FILE"
	default:
		return "TXT"
	}
}
