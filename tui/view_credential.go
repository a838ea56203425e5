// view_credential.go asks for the API key when the environment has none.
//
// The input is masked and its value only leaves this view inside a
// CredentialSubmittedMsg; it is never rendered or logged.
package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// CredentialView is the masked API key prompt.
type CredentialView struct {
	label  string // e.g. "OpenAI API key"
	envVar string
	input  textinput.Model
	width  int
	height int
}

// NewCredentialView creates the prompt for the named credential.
func NewCredentialView(label, envVar string) *CredentialView {
	ti := textinput.New()
	ti.Placeholder = "sk-..."
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.Prompt = "│ "
	ti.PromptStyle = StyleInputFocused
	ti.CharLimit = 512
	ti.Width = 60
	ti.Focus()

	return &CredentialView{label: label, envVar: envVar, input: ti}
}

func (v *CredentialView) Name() string { return "Credential" }

func (v *CredentialView) SetSize(width, height int) {
	v.width = width
	v.height = height
	if w := width - 6; w > 10 {
		v.input.Width = w
	}
}

func (v *CredentialView) ShortHelp() []KeyBinding {
	return []KeyBinding{
		{Key: "Enter", Desc: "use key"},
		{Key: "Ctrl+C", Desc: "quit"},
	}
}

func (v *CredentialView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *CredentialView) Update(msg tea.Msg) (View, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnter {
		value := v.input.Value()
		v.input.Reset()
		return v, func() tea.Msg { return CredentialSubmittedMsg{Value: value} }
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *CredentialView) View() string {
	lines := []string{
		StyleTitle.Render("API key required"),
		StyleWarning.Render(v.label + " not found. Please enter it to continue."),
		StyleDimmed.Render("It is used for this session only and is not saved. Set " + v.envVar + " to skip this step."),
		"",
		StyleBold.Render("Enter your " + v.label + ":"),
		v.input.View(),
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
