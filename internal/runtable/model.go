package runtable

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeremylgl2/dagster/internal/observability"
)

// ModelParams configures the top-level model.
type ModelParams struct {
	Table *Table

	// Msgs carries messages produced outside the UI loop (the run poller).
	// May be nil when all input arrives via Update directly (tests).
	Msgs <-chan tea.Msg

	Logger *observability.CoreLogger
}

// Model is the top-level Bubble Tea model: it owns quit handling and the
// external message pump and delegates everything else to the table.
type Model struct {
	table  *Table
	msgs   <-chan tea.Msg
	logger *observability.CoreLogger
}

func NewModel(params ModelParams) *Model {
	logger := params.Logger
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}
	table := params.Table
	if table == nil {
		table = NewTable(TableParams{Logger: logger})
	}
	return &Model{
		table:  table,
		msgs:   params.Msgs,
		logger: logger,
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.table.Init()}
	if m.msgs != nil {
		cmds = append(cmds, m.waitForMsg)
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch t := msg.(type) {
	case tea.KeyMsg:
		switch normalizeKey(t.String()) {
		case "q", "ctrl+c":
			// Quit only when no text input owns the keyboard.
			if !m.table.filterTyping {
				m.logger.Debug("runtable: quit requested")
				return m, tea.Quit
			}
		}
	}

	cmd := m.table.Update(msg)

	// Re-arm the external message pump after each delivery.
	if m.msgs != nil {
		if _, ok := msg.(RunsMsg); ok {
			return m, tea.Batch(cmd, m.waitForMsg)
		}
		if _, ok := msg.(RunsFetchErrMsg); ok {
			return m, tea.Batch(cmd, m.waitForMsg)
		}
	}
	return m, cmd
}

func (m *Model) View() string {
	return m.table.View()
}

// waitForMsg blocks until the next external message is available.
func (m *Model) waitForMsg() tea.Msg {
	if m.msgs == nil {
		return nil
	}
	return <-m.msgs
}
