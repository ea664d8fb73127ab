package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"clipkeep/internal/adapters/tui/styles"
	"clipkeep/internal/application/commands"
	"clipkeep/internal/domain"
	"clipkeep/internal/ports"
)

// refreshEvery is how often the list picks up newly captured items
const refreshEvery = time.Second

// HistoryKeyMap defines key bindings for the history view
type HistoryKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Copy     key.Binding
	Delete   key.Binding
	Clear    key.Binding
	Filter   key.Binding
	Kind     key.Binding
	Monitor  key.Binding
	Open     key.Binding
	Accept   key.Binding
	Reject   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var HistoryKeys = HistoryKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("pgdn", "page down"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "newest"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "oldest"),
	),
	Copy: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "copy"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Clear: key.NewBinding(
		key.WithKeys("X"),
		key.WithHelp("X", "clear all"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Kind: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "kind"),
	),
	Monitor: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pause/resume"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open file"),
	),
	Accept: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "keep pending"),
	),
	Reject: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "discard pending"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// kindCycle is the order tab steps through; empty means every kind
var kindCycle = []domain.Kind{"", domain.KindPlainText, domain.KindRichText, domain.KindURL, domain.KindImage, domain.KindFile}

// HistoryModel is the model for the clipboard history list
type HistoryModel struct {
	svc    ports.HistoryService
	items  []domain.ClipboardItem
	window *ListWindow
	filter textinput.Model
	kind   int
	loaded bool
	now    func() time.Time

	width      int
	height     int
	message    string
	messageErr bool
}

// NewHistoryModel creates a new history model
func NewHistoryModel(svc ports.HistoryService) *HistoryModel {
	ti := textinput.New()
	ti.Placeholder = "filter"
	ti.Prompt = "/ "
	ti.CharLimit = 200

	return &HistoryModel{
		svc:    svc,
		window: NewListWindow(10),
		filter: ti,
		now:    time.Now,
	}
}

type itemsLoadedMsg struct {
	items []domain.ClipboardItem
}

type refreshTickMsg struct{}

type errMsg struct {
	err error
}

type successMsg struct {
	message string
}

// Init loads the history and starts periodic refresh
func (m *HistoryModel) Init() tea.Cmd {
	return tea.Batch(m.load(), m.scheduleRefresh())
}

func (m *HistoryModel) scheduleRefresh() tea.Cmd {
	return tea.Tick(refreshEvery, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

// load reads the items matching the current kind and filter
func (m *HistoryModel) load() tea.Cmd {
	svc := m.svc
	kind := kindCycle[m.kind]
	query := strings.TrimSpace(m.filter.Value())

	return func() tea.Msg {
		items := svc.Filter(kind, "")
		if query != "" {
			ranked := commands.FuzzySort(items, query)
			items = make([]domain.ClipboardItem, len(ranked))
			for n, r := range ranked {
				items[n] = r.Item
			}
		}
		return itemsLoadedMsg{items: items}
	}
}

// Update handles messages for the history view
func (m *HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case itemsLoadedMsg:
		m.applyItems(msg.items)
		return m, nil

	case refreshTickMsg:
		return m, tea.Batch(m.load(), m.scheduleRefresh())

	case errMsg:
		m.message = msg.err.Error()
		m.messageErr = true
		return m, nil

	case successMsg:
		m.message = msg.message
		m.messageErr = false
		return m, m.load()

	case tea.KeyMsg:
		if m.filter.Focused() {
			return m, m.updateFilter(msg)
		}
		m.message = ""
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *HistoryModel) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.filter.Blur()
		return nil
	case tea.KeyEsc:
		m.filter.Blur()
		m.filter.SetValue("")
		return m.load()
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return tea.Batch(cmd, m.load())
}

func (m *HistoryModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, HistoryKeys.Quit):
		return tea.Quit

	case key.Matches(msg, HistoryKeys.Up):
		m.window.Move(-1)
	case key.Matches(msg, HistoryKeys.Down):
		m.window.Move(1)
	case key.Matches(msg, HistoryKeys.PageUp):
		m.window.PageUp()
	case key.Matches(msg, HistoryKeys.PageDown):
		m.window.PageDown()
	case key.Matches(msg, HistoryKeys.Top):
		m.window.Top()
	case key.Matches(msg, HistoryKeys.Bottom):
		m.window.Bottom()

	case key.Matches(msg, HistoryKeys.Copy):
		if item, ok := m.Selected(); ok {
			return m.copyItem(item)
		}

	case key.Matches(msg, HistoryKeys.Delete):
		if item, ok := m.Selected(); ok {
			return func() tea.Msg { return SwitchToConfirmMsg{Target: &item} }
		}

	case key.Matches(msg, HistoryKeys.Clear):
		if len(m.items) > 0 {
			return func() tea.Msg { return SwitchToConfirmMsg{} }
		}

	case key.Matches(msg, HistoryKeys.Filter):
		return m.filter.Focus()

	case key.Matches(msg, HistoryKeys.Kind):
		m.kind = (m.kind + 1) % len(kindCycle)
		return m.load()

	case key.Matches(msg, HistoryKeys.Monitor):
		return m.toggleMonitoring

	case key.Matches(msg, HistoryKeys.Open):
		if item, ok := m.Selected(); ok && item.IsFile() {
			return func() tea.Msg { return OpenEditorMsg{Path: item.FilePath} }
		}

	case key.Matches(msg, HistoryKeys.Accept):
		return m.resolvePending(true)
	case key.Matches(msg, HistoryKeys.Reject):
		return m.resolvePending(false)

	case key.Matches(msg, HistoryKeys.Help):
		return func() tea.Msg { return SwitchToHelpMsg{} }
	}
	return nil
}

// resolvePending answers the oldest large-content confirmation
func (m *HistoryModel) resolvePending(accept bool) tea.Cmd {
	pending := m.svc.Pending()
	if len(pending) == 0 {
		return nil
	}
	p := pending[0]
	svc := m.svc
	return func() tea.Msg {
		result, err := commands.NewResolveCommand(svc, p.ID, accept).Execute(context.Background())
		if err != nil {
			return errMsg{err}
		}
		if result.Outcome == domain.OutcomeAccepted {
			return successMsg{fmt.Sprintf("Kept %s", p.Text)}
		}
		return successMsg{fmt.Sprintf("Discarded %s", p.Text)}
	}
}

func (m *HistoryModel) copyItem(item domain.ClipboardItem) tea.Cmd {
	return func() tea.Msg {
		if _, err := commands.NewCopyCommand(m.svc, item.ID).Execute(context.Background()); err != nil {
			return errMsg{err}
		}
		return successMsg{fmt.Sprintf("Copied %s", ItemTitle(item, 40))}
	}
}

func (m *HistoryModel) toggleMonitoring() tea.Msg {
	if m.svc.IsMonitoring() {
		m.svc.StopMonitoring()
		return successMsg{"Monitoring paused"}
	}
	if err := m.svc.StartMonitoring(context.Background()); err != nil {
		return errMsg{err}
	}
	return successMsg{"Monitoring resumed"}
}

func (m *HistoryModel) applyItems(items []domain.ClipboardItem) {
	// keep the cursor on the same item across refreshes
	var selectedID string
	if item, ok := m.Selected(); ok {
		selectedID = item.ID
	}

	m.items = items
	m.loaded = true
	m.window.SetTotal(len(items))

	if selectedID == "" {
		return
	}
	for n, item := range items {
		if item.ID == selectedID {
			m.window.Move(n - m.window.Cursor())
			return
		}
	}
}

// Selected returns the item under the cursor
func (m *HistoryModel) Selected() (domain.ClipboardItem, bool) {
	c := m.window.Cursor()
	if c >= 0 && c < len(m.items) {
		return m.items[c], true
	}
	return domain.ClipboardItem{}, false
}

// View renders the history list
func (m *HistoryModel) View() string {
	if !m.loaded {
		return "Loading..."
	}

	v := NewViewBuilder()
	v.Title("clipkeep")
	v.Line(m.renderStatus())
	if m.filter.Focused() || m.filter.Value() != "" {
		v.Line(m.filter.View())
	}
	v.Line("")

	if len(m.items) == 0 {
		v.Muted("  No clipboard history yet.")
	}
	start, end := m.window.Visible()
	for n := start; n < end; n++ {
		v.Line(m.renderRow(m.items[n], n == m.window.Cursor()))
	}

	v.Message(m.message, m.messageErr)
	v.Help(HistoryKeys.Copy, HistoryKeys.Delete, HistoryKeys.Filter, HistoryKeys.Kind,
		HistoryKeys.Monitor, HistoryKeys.Help, HistoryKeys.Quit)
	return v.String()
}

func (m *HistoryModel) renderStatus() string {
	state := styles.StatusOn.Render("capturing")
	if !m.svc.IsMonitoring() {
		state = styles.StatusOff.Render("paused")
	}

	kind := "all"
	if k := kindCycle[m.kind]; k != "" {
		kind = string(k)
	}
	info := fmt.Sprintf("%d items • kind: %s", len(m.items), kind)
	if pending := len(m.svc.Pending()); pending > 0 {
		info += fmt.Sprintf(" • %d pending (a/r)", pending)
	}
	return state + styles.MutedText.Render(info)
}

func (m *HistoryModel) renderRow(item domain.ClipboardItem, selected bool) string {
	width := m.width - 20
	if width < 20 {
		width = 60
	}

	title := ItemTitle(item, width)
	if item.IsFile() && item.FileSize > 0 {
		title += styles.MutedText.Render(" (" + FormatSize(item.FileSize) + ")")
	}
	if selected {
		title = styles.RowSelected.Render(ItemTitle(item, width))
	}

	return styles.Age.Render(FormatAge(item.Date, m.now())) + RenderKindBadge(item.Kind()) + title
}

// SetSize updates the view dimensions
func (m *HistoryModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	// title, status, filter, spacing, message and help take about ten rows
	m.window.SetHeight(height - 10)
	m.filter.Width = max(width-10, 10)
}

// Reload reloads the history from the engine
func (m *HistoryModel) Reload() tea.Cmd {
	return m.load()
}

// Messages for view switching
type SwitchToConfirmMsg struct {
	// Target is the item to delete, nil means clear the whole history
	Target *domain.ClipboardItem
}

type SwitchToHelpMsg struct{}

type SwitchToBrowserMsg struct{}

// OpenEditorMsg asks the app to open a stored file in the editor
type OpenEditorMsg struct {
	Path string
}

// SetMessage shows a status line below the list
func (m *HistoryModel) SetMessage(msg string, isErr bool) {
	m.message = msg
	m.messageErr = isErr
}
