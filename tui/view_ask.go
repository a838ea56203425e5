// view_ask.go is the question/answer panel.
//
// It shows the dataset preview and a transcript of questions and answers.
// Every question is sent on its own with the dataset context; earlier
// turns are displayed but never sent back to the service. Requests run
// asynchronously and only one may be in flight.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/DachengChen/paiData/ai"
	"github.com/DachengChen/paiData/dataset"
	"github.com/DachengChen/paiData/session"
)

// previewRows is how many rows are shown after loading.
const previewRows = 5

type turn struct {
	question string
	text     string
	failed   bool
	rendered []string // answer as markdown, for the current width
}

// AskView lets the user ask questions about the loaded dataset.
type AskView struct {
	ctx      context.Context
	sess     *session.Session
	input    textinput.Model
	spinner  spinner.Model
	viewport *Viewport
	renderer *glamour.TermRenderer
	preview  []string
	turns    []turn
	asking   string // question in flight
	loading  bool
	width    int
	height   int
}

// NewAskView creates the panel for a started session. Requests inherit ctx.
func NewAskView(ctx context.Context, sess *session.Session) *AskView {
	ti := textinput.New()
	ti.Placeholder = "Ask a question about your dataset..."
	ti.Prompt = "Ask> "
	ti.PromptStyle = StylePrompt
	ti.CharLimit = 4096
	ti.Width = 80
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StyleDimmed

	ds := sess.Dataset()
	preview := strings.Split(dataset.Build(ds.Head(previewRows), dataset.Full()).Text, "\n")

	v := &AskView{
		ctx:      ctx,
		sess:     sess,
		input:    ti,
		spinner:  sp,
		viewport: NewViewport(80, 20),
		preview:  preview,
	}
	v.renderer = newRenderer(80)
	return v
}

func newRenderer(width int) *glamour.TermRenderer {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

func (v *AskView) Name() string { return "Ask" }

func (v *AskView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.input.Width = width - 8
	// prompt(1) + gap(1) + indicator(1)
	v.viewport.SetSize(width-2, height-3)
	v.renderer = newRenderer(width - 6)
	for i := range v.turns {
		v.turns[i].rendered = v.renderAnswer(v.turns[i].text)
	}
	v.refresh()
}

func (v *AskView) ShortHelp() []KeyBinding {
	return []KeyBinding{
		{Key: "Enter", Desc: "ask"},
		{Key: "PgUp/PgDn", Desc: "scroll"},
		{Key: "Ctrl+←/→", Desc: "pan"},
		{Key: "Ctrl+W", Desc: "wrap"},
		{Key: "Ctrl+L", Desc: "clear"},
	}
}

func (v *AskView) Init() tea.Cmd {
	v.refresh()
	return textinput.Blink
}

// Busy reports whether a request is in flight.
func (v *AskView) Busy() bool { return v.loading }

func (v *AskView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)

	case AnswerMsg:
		v.loading = false
		v.asking = ""
		var status tea.Cmd
		if !msg.Outcome.Skipped {
			f, failed := msg.Outcome.Result.Failure()
			t := turn{
				question: msg.Outcome.Question,
				text:     msg.Outcome.Text(),
				failed:   failed,
			}
			if !failed {
				t.rendered = v.renderAnswer(t.text)
			}
			v.turns = append(v.turns, t)
			status = answerStatus(msg.Outcome, f, failed)
		}
		v.refresh()
		v.viewport.End()
		return v, status

	case spinner.TickMsg:
		if !v.loading {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.refresh()
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *AskView) handleKey(msg tea.KeyMsg) (View, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return v, v.ask()
	case "ctrl+l":
		v.turns = nil
		v.refresh()
		v.viewport.Home()
		return v, nil
	case "ctrl+w":
		v.viewport.ToggleWrap()
		return v, nil
	case "pgup":
		v.viewport.PageUp()
		return v, nil
	case "pgdown":
		v.viewport.PageDown()
		return v, nil
	case "ctrl+k", "up":
		v.viewport.ScrollUp(1)
		return v, nil
	case "ctrl+j", "down":
		v.viewport.ScrollDown(1)
		return v, nil
	case "ctrl+left":
		v.viewport.ScrollLeft(8)
		return v, nil
	case "ctrl+right":
		v.viewport.ScrollRight(8)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask submits the current input. Empty input and a request already in
// flight are ignored.
func (v *AskView) ask() tea.Cmd {
	question := v.input.Value()
	if v.loading || strings.TrimSpace(question) == "" {
		return nil
	}

	v.input.Reset()
	v.loading = true
	v.asking = question
	v.refresh()
	v.viewport.End()

	ctx, sess := v.ctx, v.sess
	return tea.Batch(
		v.spinner.Tick,
		func() tea.Msg {
			return AnswerMsg{Outcome: sess.Ask(ctx, question)}
		},
	)
}

func (v *AskView) refresh() {
	v.viewport.SetContentLines(v.lines())
}

func (v *AskView) lines() []string {
	ds := v.sess.Dataset()
	frag := v.sess.Fragment()

	lines := []string{
		StyleBold.Render("paiData") + StyleDimmed.Render(fmt.Sprintf(" (%s · %s)", v.sess.Protocol(), v.sess.Model())),
		StyleSuccess.Render("Dataset Loaded Successfully!") + " " + StyleDimmed.Render(ds.Summary()),
		"",
	}
	for _, l := range v.preview {
		lines = append(lines, StyleNormal.Render(l))
	}

	info := fmt.Sprintf("Context: %s, %d characters", frag.Policy, frag.Len())
	if frag.Truncated {
		info += " (truncated)"
	}
	lines = append(lines, "", StyleDimmed.Render(info), "")

	for _, t := range v.turns {
		lines = append(lines, StyleUserLabel.Render("You: ")+t.question)
		if t.failed {
			lines = append(lines, StyleError.Render("Error: ")+t.text, "")
			continue
		}
		lines = append(lines, StyleBotLabel.Render("Bot:"))
		lines = append(lines, t.rendered...)
		lines = append(lines, "")
	}

	if v.loading {
		lines = append(lines,
			StyleUserLabel.Render("You: ")+v.asking,
			v.spinner.View()+StyleDimmed.Render(" Thinking..."),
		)
	}
	return lines
}

// answerStatus reports the outcome of a question in the status bar.
func answerStatus(out session.Outcome, f ai.Failure, failed bool) tea.Cmd {
	text := fmt.Sprintf("Answered in %s", out.Elapsed.Round(10*time.Millisecond))
	if failed {
		text = fmt.Sprintf("Request failed (%s) after %s", f.Kind, out.Elapsed.Round(10*time.Millisecond))
	}
	return func() tea.Msg { return StatusMsg(text) }
}

func (v *AskView) renderAnswer(text string) []string {
	if v.renderer != nil {
		if out, err := v.renderer.Render(text); err == nil {
			return strings.Split(strings.Trim(out, "\n"), "\n")
		}
	}
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		lines = append(lines, "  "+l)
	}
	return lines
}

func (v *AskView) View() string {
	prompt := v.input.View()
	if v.loading {
		prompt = StylePrompt.Render("Ask> ") + StyleDimmed.Render("waiting for response...")
	}
	return lipgloss.JoinVertical(lipgloss.Left, prompt, "", v.viewport.Render())
}
