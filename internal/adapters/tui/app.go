package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"clipkeep/internal/adapters/editor"
	"clipkeep/internal/adapters/tui/views"
	"clipkeep/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewHistory ViewState = iota
	ViewConfirm
	ViewHelp
)

// App is the main TUI application model
type App struct {
	svc    ports.HistoryService
	editor *editor.Opener

	state   ViewState
	history *views.HistoryModel
	confirm *views.DeleteModel
	help    *views.HelpModel

	width  int
	height int
}

// NewApp creates a new TUI application
func NewApp(svc ports.HistoryService, ed *editor.Opener) *App {
	return &App{
		svc:     svc,
		editor:  ed,
		state:   ViewHistory,
		history: views.NewHistoryModel(svc),
		confirm: views.NewDeleteModel(svc),
		help:    views.NewHelpModel(),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.history.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.history.SetSize(msg.Width, msg.Height)
		return a, nil

	case views.SwitchToConfirmMsg:
		a.state = ViewConfirm
		a.confirm.SetTarget(msg.Target)
		return a, nil

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToBrowserMsg:
		a.state = ViewHistory
		return a, a.history.Reload()

	case views.DeleteSuccessMsg:
		a.state = ViewHistory
		a.history.SetMessage(msg.Message, false)
		return a, a.history.Reload()

	case views.DeleteErrMsg:
		a.state = ViewHistory
		a.history.SetMessage(msg.Err.Error(), true)
		return a, nil

	case views.OpenEditorMsg:
		a.state = ViewHistory
		return a, a.openEditor(msg.Path)

	case editorFinishedMsg:
		if msg.err != nil {
			a.history.SetMessage(msg.err.Error(), true)
		}
		return a, nil
	}

	// refresh ticks keep flowing to the history view while others are shown
	if a.state != ViewHistory {
		if _, isKey := msg.(tea.KeyMsg); !isKey {
			_, cmd := a.history.Update(msg)
			return a, cmd
		}
	}

	var cmd tea.Cmd
	switch a.state {
	case ViewHistory:
		_, cmd = a.history.Update(msg)
	case ViewConfirm:
		_, cmd = a.confirm.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

type editorFinishedMsg struct{ err error }

func (a *App) openEditor(path string) tea.Cmd {
	if a.editor == nil {
		return nil
	}

	cmd, err := a.editor.Command(path)
	if err != nil {
		return func() tea.Msg {
			return editorFinishedMsg{err: err}
		}
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{err: err}
	})
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewConfirm:
		return a.confirm.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.history.View()
	}
}
