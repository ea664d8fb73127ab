package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"clipkeep/internal/adapters/tui/styles"
	"clipkeep/internal/application/commands"
	"clipkeep/internal/domain"
	"clipkeep/internal/ports"
)

// ConfirmKeyMap defines key bindings for confirmation views
type ConfirmKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultConfirmKeys returns the default confirmation key bindings
var DefaultConfirmKeys = ConfirmKeyMap{
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n/esc", "cancel"),
	),
}

// DeleteModel asks before deleting one item or the whole history
type DeleteModel struct {
	svc    ports.HistoryService
	target *domain.ClipboardItem
	keys   ConfirmKeyMap
}

// NewDeleteModel creates a new delete view model
func NewDeleteModel(svc ports.HistoryService) *DeleteModel {
	return &DeleteModel{
		svc:  svc,
		keys: DefaultConfirmKeys,
	}
}

// SetTarget sets the item to delete; nil means clear everything
func (m *DeleteModel) SetTarget(item *domain.ClipboardItem) {
	m.target = item
}

// Init initializes the delete view
func (m *DeleteModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the delete view
func (m *DeleteModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Cancel):
			return m, func() tea.Msg { return SwitchToBrowserMsg{} }
		case key.Matches(msg, m.keys.Confirm):
			return m, m.doDelete(m.target)
		}
	}
	return m, nil
}

func (m *DeleteModel) doDelete(target *domain.ClipboardItem) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		if target == nil {
			removed, err := commands.NewClearCommand(svc).Execute(ctx)
			if err != nil {
				return DeleteErrMsg{Err: err}
			}
			return DeleteSuccessMsg{Message: fmt.Sprintf("Cleared %d items", removed)}
		}

		result, err := commands.NewDeleteCommand(svc, target.ID).Execute(ctx)
		if err != nil {
			return DeleteErrMsg{Err: err}
		}
		return DeleteSuccessMsg{Message: result.Message}
	}
}

// DeleteSuccessMsg indicates successful deletion
type DeleteSuccessMsg struct {
	Message string
}

// DeleteErrMsg indicates an error during deletion
type DeleteErrMsg struct {
	Err error
}

// View renders the delete confirmation view
func (m *DeleteModel) View() string {
	var b strings.Builder

	if m.target == nil {
		b.WriteString(styles.Title.Render("Clear History"))
		b.WriteString("\n\n")
		b.WriteString(styles.ErrorMsg.Render("Every item and stored file will be removed."))
	} else {
		b.WriteString(styles.Title.Render("Delete Item"))
		b.WriteString("\n\n")
		b.WriteString(RenderKindBadge(m.target.Kind()))
		b.WriteString(ItemTitle(*m.target, 60))
		if m.target.IsFile() {
			b.WriteString("\n")
			b.WriteString(styles.MutedText.Render("  The stored copy is removed unless another item uses it."))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(RenderConfirmPrompt("Are you sure?"))

	return styles.App.Render(b.String())
}

// RenderConfirmPrompt renders the standard confirmation prompt
func RenderConfirmPrompt(question string) string {
	var b strings.Builder
	b.WriteString(question)
	b.WriteString(" ")
	b.WriteString(styles.HelpKey.Render("y"))
	b.WriteString(styles.HelpDesc.Render(" to confirm, "))
	b.WriteString(styles.HelpKey.Render("n"))
	b.WriteString(styles.HelpDesc.Render(" to cancel"))
	return b.String()
}
