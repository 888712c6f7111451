package tui

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const headerText = "Type your search query. Use ↑/↓ to select. Press Enter to choose. (Esc to exit)"

// styles holds the picker's lipgloss styles. With color disabled every
// style renders its input unchanged.
type styles struct {
	header   lipgloss.Style
	prompt   lipgloss.Style
	selected lipgloss.Style
	normal   lipgloss.Style
}

func newStyles(renderer *lipgloss.Renderer, noColor bool) styles {
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}
	if noColor {
		plain := renderer.NewStyle()
		return styles{header: plain, prompt: plain, selected: plain, normal: plain}
	}

	return styles{
		header:   renderer.NewStyle().Foreground(lipgloss.Color("#808080")),
		prompt:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("#00BFFF")),
		selected: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD700")),
		normal:   renderer.NewStyle(),
	}
}

// chromeLines counts the rows around the candidates: header, query line,
// blank line and the empty row after the final newline
const chromeLines = 4

// View draws the header, the query line, a blank line and one line per
// candidate. Lines are cut to the terminal width in display cells so a
// wide command never wraps, and the list is cut to the terminal height
// so the header and query stay on screen.
func (m model) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.render(m.styles.header, headerText))
	b.WriteString("\n")
	b.WriteString(m.render(m.styles.prompt, "Search: "+m.query))
	b.WriteString("\n\n")

	first, last := m.visibleRange()
	for i := first; i < last; i++ {
		c := m.candidates[i]
		marker, style := "  ", m.styles.normal
		if i == m.selected {
			marker, style = "> ", m.styles.selected
		}
		b.WriteString(m.render(style, fmt.Sprintf("%s%s (%d)", marker, c.Command, c.Count)))
		b.WriteString("\n")
	}

	return b.String()
}

// visibleRange returns the candidate rows that fit the terminal height,
// scrolled so the selection is always among them
func (m model) visibleRange() (first, last int) {
	rows := len(m.candidates)
	if m.height > 0 {
		rows = min(rows, max(m.height-chromeLines, 1))
	}

	if rows > 0 && m.selected >= rows {
		first = m.selected - rows + 1
	}
	return first, first + rows
}

// render makes line safe to print, then truncates it before styling so
// escape sequences never count against the width
func (m model) render(style lipgloss.Style, line string) string {
	line = sanitize(line)
	if m.width > 0 {
		line = runewidth.Truncate(line, m.width, "")
	}
	return style.Render(line)
}

// sanitize turns tabs into single spaces and drops every other control
// character, so history text can neither widen a line nor reach the
// terminal as an escape sequence
func sanitize(line string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, line)
}
