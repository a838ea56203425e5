package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Start launches the TUI and blocks until the user quits.
func Start(deps Deps) error {
	app := NewApp(deps)
	defer app.cancel()

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
