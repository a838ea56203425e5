// viewport.go provides a scrollable text area with vertical and
// horizontal scrolling and optional wrapping.
//
// Lines may carry ANSI styling (glamour output, lipgloss colours); widths
// are measured in terminal cells, not bytes.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// Viewport is a scrollable text area.
type Viewport struct {
	width    int
	height   int
	content  []string // lines of content
	scrollY  int      // vertical scroll offset (line index)
	scrollX  int      // horizontal scroll offset (cells)
	wrapText bool     // whether to wrap text instead of horizontal scroll
}

// NewViewport creates a viewport with the given dimensions.
func NewViewport(width, height int) *Viewport {
	return &Viewport{
		width:  width,
		height: height,
	}
}

// SetContent replaces the viewport content.
func (v *Viewport) SetContent(content string) {
	v.SetContentLines(strings.Split(content, "\n"))
}

// SetContentLines replaces the viewport content with pre-split lines.
func (v *Viewport) SetContentLines(lines []string) {
	v.content = lines
	v.clampScroll()
}

// SetSize updates viewport dimensions.
func (v *Viewport) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.clampScroll()
}

// ToggleWrap toggles text wrapping.
func (v *Viewport) ToggleWrap() {
	v.wrapText = !v.wrapText
	v.scrollX = 0
	v.clampScroll()
}

// Wrapped reports whether wrapping is on.
func (v *Viewport) Wrapped() bool { return v.wrapText }

// ScrollUp moves the viewport up by n lines.
func (v *Viewport) ScrollUp(n int) {
	v.scrollY -= n
	v.clampScroll()
}

// ScrollDown moves the viewport down by n lines.
func (v *Viewport) ScrollDown(n int) {
	v.scrollY += n
	v.clampScroll()
}

// ScrollLeft moves the viewport left.
func (v *Viewport) ScrollLeft(n int) {
	if v.wrapText {
		return
	}
	v.scrollX -= n
	if v.scrollX < 0 {
		v.scrollX = 0
	}
}

// ScrollRight moves the viewport right, up to the widest line.
func (v *Viewport) ScrollRight(n int) {
	if v.wrapText {
		return
	}
	v.scrollX += n
	if maxX := v.maxScrollX(); v.scrollX > maxX {
		v.scrollX = maxX
	}
}

// PageUp scrolls up by one page.
func (v *Viewport) PageUp() {
	v.ScrollUp(v.height)
}

// PageDown scrolls down by one page.
func (v *Viewport) PageDown() {
	v.ScrollDown(v.height)
}

// Home scrolls to the top.
func (v *Viewport) Home() {
	v.scrollY = 0
	v.scrollX = 0
}

// End scrolls to the bottom.
func (v *Viewport) End() {
	v.scrollY = v.maxScrollY()
}

// Render returns the visible portion of the content.
func (v *Viewport) Render() string {
	if len(v.content) == 0 {
		return ""
	}

	var visibleLines []string
	if v.wrapText {
		visibleLines = v.renderWrapped()
	} else {
		visibleLines = v.renderScrolled()
	}

	// Pad to fill viewport height
	for len(visibleLines) < v.height {
		visibleLines = append(visibleLines, "")
	}

	content := strings.Join(visibleLines, "\n")
	if indicator := v.scrollIndicator(); indicator != "" {
		return lipgloss.JoinVertical(lipgloss.Left, content, indicator)
	}
	return content
}

// renderScrolled returns lines with horizontal offset applied.
// A horizontally scrolled line loses its styling.
func (v *Viewport) renderScrolled() []string {
	end := v.scrollY + v.height
	if end > len(v.content) {
		end = len(v.content)
	}

	var lines []string
	for i := v.scrollY; i < end; i++ {
		line := v.content[i]
		if v.scrollX > 0 {
			line = runewidth.TruncateLeft(ansi.Strip(line), v.scrollX, "")
		}
		if v.width > 0 {
			line = ansi.Truncate(line, v.width, "")
		}
		lines = append(lines, line)
	}
	return lines
}

// renderWrapped returns hard-wrapped lines.
func (v *Viewport) renderWrapped() []string {
	wrapped := v.wrappedLines()

	if v.scrollY >= len(wrapped) {
		return nil
	}
	end := v.scrollY + v.height
	if end > len(wrapped) {
		end = len(wrapped)
	}
	return wrapped[v.scrollY:end]
}

func (v *Viewport) wrappedLines() []string {
	if v.width <= 0 {
		return v.content
	}
	var wrapped []string
	for _, line := range v.content {
		wrapped = append(wrapped, strings.Split(ansi.Hardwrap(line, v.width, true), "\n")...)
	}
	return wrapped
}

func (v *Viewport) clampScroll() {
	maxY := v.maxScrollY()
	if v.scrollY > maxY {
		v.scrollY = maxY
	}
	if v.scrollY < 0 {
		v.scrollY = 0
	}
}

func (v *Viewport) total() int {
	if v.wrapText {
		return len(v.wrappedLines())
	}
	return len(v.content)
}

func (v *Viewport) maxScrollY() int {
	maxY := v.total() - v.height
	if maxY < 0 {
		return 0
	}
	return maxY
}

func (v *Viewport) maxScrollX() int {
	widest := 0
	for _, line := range v.content {
		if w := ansi.StringWidth(line); w > widest {
			widest = w
		}
	}
	maxX := widest - v.width
	if maxX < 0 {
		return 0
	}
	return maxX
}

func (v *Viewport) scrollIndicator() string {
	total := v.total()
	if total <= v.height {
		return ""
	}

	pct := (v.scrollY * 100) / total
	label := fmt.Sprintf(" %d%% (%d/%d)", pct, v.scrollY+1, total)
	rule := v.width - runewidth.StringWidth(label)
	if rule < 0 {
		rule = 0
	}
	return StyleDimmed.Render(strings.Repeat("─", rule) + label)
}
