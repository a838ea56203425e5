package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// PolicyKind selects how much of a dataset goes into a prompt.
type PolicyKind int

const (
	PolicyFull PolicyKind = iota
	PolicyRowLimit
	PolicyCharLimit
)

// Policy bounds the size of a Fragment.
type Policy struct {
	Kind  PolicyKind
	Limit int
}

// Full renders every row; the fragment is unbounded.
func Full() Policy { return Policy{Kind: PolicyFull} }

// RowLimit renders the header and the first n rows in dataset order.
func RowLimit(n int) Policy { return Policy{Kind: PolicyRowLimit, Limit: clamp(n)} }

// CharLimit renders everything, then keeps the first k characters.
func CharLimit(k int) Policy { return Policy{Kind: PolicyCharLimit, Limit: clamp(k)} }

// Bound reports the policy's declared limit. ok is false for Full.
func (p Policy) Bound() (limit int, ok bool) {
	if p.Kind == PolicyFull {
		return 0, false
	}
	return p.Limit, true
}

// String is the inverse of ParsePolicy.
func (p Policy) String() string {
	switch p.Kind {
	case PolicyRowLimit:
		return "rows:" + strconv.Itoa(p.Limit)
	case PolicyCharLimit:
		return "chars:" + strconv.Itoa(p.Limit)
	default:
		return "full"
	}
}

// ParsePolicy accepts "full", "rows:N" or "chars:N".
func ParsePolicy(s string) (Policy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "full" {
		return Full(), nil
	}

	kind, arg, ok := strings.Cut(s, ":")
	if !ok {
		return Policy{}, fmt.Errorf("invalid context policy %q (want full, rows:N or chars:N)", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 0 {
		return Policy{}, fmt.Errorf("invalid context policy %q: limit must be a non-negative integer", s)
	}

	switch kind {
	case "rows":
		return RowLimit(n), nil
	case "chars":
		return CharLimit(n), nil
	default:
		return Policy{}, fmt.Errorf("invalid context policy %q (want full, rows:N or chars:N)", s)
	}
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// Fragment is the bounded text rendering of a dataset.
type Fragment struct {
	Text   string
	Policy Policy
	// Rows is how many data rows were rendered before any character cut.
	Rows int
	// Truncated is set when rows or characters were dropped.
	Truncated bool
}

// Len returns the fragment length in characters.
func (f Fragment) Len() int { return len([]rune(f.Text)) }

// NullText is how an empty cell is rendered.
const NullText = "NaN"

// columnGap separates columns in the rendered table.
const columnGap = "  "

// Build renders ds under policy p.
//
// Layout: a header line with the column names followed by one line per
// row, each column right-aligned to the display width of its widest
// rendered cell, columns joined by two spaces, lines joined by "\n" with
// no trailing newline. Widths only consider rendered rows. A CharLimit cut
// happens at a rune boundary and does not re-align anything.
func Build(ds *Dataset, p Policy) Fragment {
	n := ds.Len()
	if p.Kind == PolicyRowLimit && p.Limit < n {
		n = p.Limit
	}

	text := render(ds.columns, ds.rows[:n])
	frag := Fragment{
		Text:      text,
		Policy:    p,
		Rows:      n,
		Truncated: n < ds.Len(),
	}

	if p.Kind == PolicyCharLimit {
		if cut, ok := truncateRunes(text, p.Limit); ok {
			frag.Text = cut
			frag.Truncated = true
		}
	}
	return frag
}

func render(columns []string, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = runewidth.StringWidth(cell(c))
	}
	for _, r := range rows {
		for i, v := range r {
			if w := runewidth.StringWidth(cell(v)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	writeLine(&sb, columns, widths)
	for _, r := range rows {
		sb.WriteByte('\n')
		writeLine(&sb, r, widths)
	}
	return sb.String()
}

func writeLine(sb *strings.Builder, values []string, widths []int) {
	for i, v := range values {
		if i > 0 {
			sb.WriteString(columnGap)
		}
		v = cell(v)
		sb.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(v)))
		sb.WriteString(v)
	}
}

// cell flattens a value onto one line so it cannot break the table shape.
func cell(v string) string {
	if v == "" {
		return NullText
	}
	if strings.ContainsAny(v, "\r\n\t") {
		v = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(v)
	}
	return v
}

func truncateRunes(s string, k int) (string, bool) {
	count := 0
	for i := range s {
		if count == k {
			return s[:i], true
		}
		count++
	}
	return s, false
}
