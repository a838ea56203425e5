// app.go is the top-level Bubble Tea model that orchestrates all views.
//
// Flow:
//  1. Resolve the API key; if the environment has none, show the masked
//     credential prompt
//  2. Load the dataset in the background
//  3. Start the session and switch to the ask view
//
// A missing key or a dataset that cannot be loaded ends in a fatal screen:
// questions are never offered without both.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/DachengChen/paiData/ai"
	"github.com/DachengChen/paiData/config"
	"github.com/DachengChen/paiData/credential"
	"github.com/DachengChen/paiData/session"
)

const appVersion = "0.1.0"

// AppPhase tracks how far startup has progressed.
type AppPhase int

const (
	PhaseCredential AppPhase = iota
	PhaseLoading
	PhaseMain
	PhaseFatal
)

// Deps is what the App needs to start a session.
type Deps struct {
	Config   *config.Config
	Session  session.Config
	Protocol ai.Protocol
	Resolver *credential.Resolver
	Logger   *zap.Logger
}

// App is the root Bubble Tea model.
type App struct {
	deps   Deps
	ctx    context.Context
	cancel context.CancelFunc

	// Phase management
	phase    AppPhase
	credView *CredentialView
	askView  *AskView
	sess     *session.Session
	fatal    string

	// UI state
	width     int
	height    int
	showHelp  bool
	statusMsg string
}

// NewApp creates the application. It starts on the credential prompt
// when the resolver has no value yet.
func NewApp(deps Deps) *App {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{deps: deps, ctx: ctx, cancel: cancel, phase: PhaseLoading}

	if _, err := deps.Resolver.Resolve(); err != nil {
		a.phase = PhaseCredential
		a.credView = NewCredentialView(deps.Config.AI.CredentialLabel(), deps.Config.AI.ResolvedCredentialEnv())
	}
	return a
}

// Phase returns the current startup phase.
func (a *App) Phase() AppPhase { return a.phase }

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	if a.phase == PhaseCredential {
		return a.credView.Init()
	}
	a.statusMsg = "loading dataset..."
	return a.loadDataset()
}

func (a *App) loadDataset() tea.Cmd {
	ctx, cfg := a.ctx, a.deps.Config.Dataset
	return func() tea.Msg {
		ds, err := session.LoadDataset(ctx, cfg)
		return DatasetLoadedMsg{Dataset: ds, Err: err}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a.quit()
		case "f1":
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.phase == PhaseFatal {
			switch msg.String() {
			case "q", "esc", "enter":
				return a.quit()
			}
			return a, nil
		}

	case CredentialSubmittedMsg:
		return a.credentialSubmitted(msg)

	case DatasetLoadedMsg:
		return a.datasetLoaded(msg)

	case StatusMsg:
		a.statusMsg = string(msg)
		return a, nil
	}

	switch a.phase {
	case PhaseCredential:
		updated, cmd := a.credView.Update(msg)
		a.credView = updated.(*CredentialView)
		return a, cmd
	case PhaseMain:
		if _, ok := msg.(AnswerMsg); ok {
			a.statusMsg = ""
		}
		updated, cmd := a.askView.Update(msg)
		a.askView = updated.(*AskView)
		return a, cmd
	}
	return a, nil
}

func (a *App) quit() (tea.Model, tea.Cmd) {
	a.cancel()
	return a, tea.Quit
}

func (a *App) credentialSubmitted(msg CredentialSubmittedMsg) (tea.Model, tea.Cmd) {
	if err := a.deps.Resolver.Supply(msg.Value); err != nil {
		a.deps.Logger.Warn("credential prompt left empty", zap.String("category", "SESSION"))
		a.fail(err)
		return a, nil
	}
	a.credView = nil
	a.phase = PhaseLoading
	a.statusMsg = "API key set for this session. Loading dataset..."
	return a, a.loadDataset()
}

func (a *App) datasetLoaded(msg DatasetLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.deps.Logger.Error("dataset load failed", zap.String("category", "DATASET"), zap.Error(msg.Err))
		a.fail(msg.Err)
		return a, nil
	}

	sess, err := session.New(a.deps.Session, msg.Dataset, a.deps.Protocol, a.deps.Resolver, a.deps.Logger)
	if err != nil {
		a.fail(err)
		return a, nil
	}

	a.sess = sess
	a.askView = NewAskView(a.ctx, sess)
	a.phase = PhaseMain
	a.statusMsg = "Dataset Loaded Successfully!"
	a.resize()
	return a, a.askView.Init()
}

func (a *App) fail(err error) {
	a.phase = PhaseFatal
	a.fatal = session.PresentError(err, a.deps.Config.AI.CredentialLabel())
	a.statusMsg = ""
}

// resize hands the content area to the active view.
func (a *App) resize() {
	if a.width == 0 {
		return
	}
	// header(1) + border(2) + status(1)
	contentW := a.width - 2
	contentH := a.height - 4
	if a.credView != nil {
		a.credView.SetSize(contentW, contentH)
	}
	if a.askView != nil {
		a.askView.SetSize(contentW, contentH)
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if a.width == 0 {
		return "loading..."
	}

	var content string
	switch {
	case a.showHelp:
		content = a.renderHelp()
	case a.phase == PhaseCredential:
		content = a.credView.View()
	case a.phase == PhaseLoading:
		content = lipgloss.NewStyle().Padding(1, 2).Render(StyleDimmed.Render("Loading dataset..."))
	case a.phase == PhaseFatal:
		content = a.renderFatal()
	default:
		content = a.askView.View()
	}

	frameHeight := a.height - 4
	if frameHeight < 0 {
		frameHeight = 0
	}
	frame := StyleBorder.
		Width(a.width - 2).
		Height(frameHeight).
		Render(content)

	return a.renderHeader() + "\n" + frame + "\n" + a.renderStatusBar()
}

// renderHeader draws a simple text bar: logo + version + dataset info.
func (a *App) renderHeader() string {
	left := StyleBold.Render("paiData") + StyleDimmed.Render(" v"+appVersion)

	if a.sess != nil {
		left += StyleSuccess.Render("  " + a.sess.Dataset().Summary())
	}

	right := StyleDimmed.Render(fmt.Sprintf("%d×%d", a.width, a.height))
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Render(left + strings.Repeat(" ", gap) + right)
}

func (a *App) renderFatal() string {
	lines := []string{
		StyleError.Render(a.fatal),
		"",
		StyleDimmed.Render("Press q or Enter to exit."),
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
}

func (a *App) renderStatusBar() string {
	var content string
	if a.statusMsg != "" {
		content = a.statusMsg
	} else {
		var parts []string
		for _, h := range a.helpItems() {
			parts = append(parts, StyleHelpKey.Render(h.Key)+" "+StyleHelpDesc.Render(h.Desc))
		}
		content = strings.Join(parts, "  │  ")
	}
	return StyleStatusBar.Width(a.width).Render(content)
}

func (a *App) helpItems() []KeyBinding {
	global := []KeyBinding{
		{Key: "F1", Desc: "help"},
		{Key: "Ctrl+C", Desc: "quit"},
	}
	switch a.phase {
	case PhaseCredential:
		return a.credView.ShortHelp()
	case PhaseMain:
		return append(a.askView.ShortHelp(), global...)
	case PhaseFatal:
		return []KeyBinding{{Key: "q", Desc: "quit"}}
	}
	return global
}

func (a *App) renderHelp() string {
	help := []string{
		StyleTitle.Render("paiData Keyboard Shortcuts"),
		StyleHelpKey.Render("Enter") + "            Ask the question",
		StyleHelpKey.Render("↑/↓ Ctrl+K/J") + "     Scroll one line",
		StyleHelpKey.Render("PgUp/PgDn") + "        Page up/down",
		StyleHelpKey.Render("Ctrl+←/→") + "         Pan wide tables",
		StyleHelpKey.Render("Ctrl+W") + "           Toggle wrapping",
		StyleHelpKey.Render("Ctrl+L") + "           Clear the transcript",
		StyleHelpKey.Render("F1") + "               Toggle this help",
		StyleHelpKey.Render("Ctrl+C") + "           Quit",
		"",
		StyleDimmed.Render("Each question is answered on its own; earlier answers are not sent back."),
		"",
		StyleDimmed.Render("Press F1 to close"),
	}

	return lipgloss.NewStyle().
		Width(a.width-4).
		Height(a.height-5).
		Padding(1, 2).
		Render(strings.Join(help, "\n"))
}
