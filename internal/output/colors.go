package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// StatusType represents different types of CLI output status
type StatusType string

const (
	StatusError   StatusType = "error"
	StatusWarning StatusType = "warning"
	StatusInfo    StatusType = "info"
	StatusStats   StatusType = "stats"
)

// Color palette
var (
	errorColor   = lipgloss.Color("9")
	warningColor = lipgloss.Color("11")
	infoColor    = lipgloss.Color("12")
	statsColor   = lipgloss.Color("14")
	mutedColor   = lipgloss.Color("8")
)

// ColorFormatter applies status colors when the destination supports them
type ColorFormatter struct {
	renderer *lipgloss.Renderer
	enabled  bool
	styles   map[StatusType]lipgloss.Style
	muted    lipgloss.Style
	bold     lipgloss.Style
}

// NewColorFormatter creates a color formatter for output written to w.
// Colors are only emitted when w is a terminal and noColor is false.
func NewColorFormatter(w io.Writer, noColor bool) *ColorFormatter {
	renderer := lipgloss.NewRenderer(w)
	cf := &ColorFormatter{renderer: renderer}
	cf.SetNoColor(noColor)
	return cf
}

// SetNoColor disables color output (for --no-color flag)
func (cf *ColorFormatter) SetNoColor(noColor bool) {
	cf.enabled = !noColor

	style := func(c lipgloss.Color) lipgloss.Style {
		s := cf.renderer.NewStyle()
		if cf.enabled {
			s = s.Foreground(c)
		}
		return s
	}

	cf.styles = map[StatusType]lipgloss.Style{
		StatusError:   style(errorColor),
		StatusWarning: style(warningColor),
		StatusInfo:    style(infoColor),
		StatusStats:   style(statsColor),
	}
	cf.muted = style(mutedColor)
	cf.bold = cf.renderer.NewStyle().Bold(cf.enabled)
}

// Colorize applies the color for statusType to text
func (cf *ColorFormatter) Colorize(text string, statusType StatusType) string {
	if !cf.enabled {
		return text
	}
	style, ok := cf.styles[statusType]
	if !ok {
		return text
	}
	return style.Render(text)
}

// Muted renders secondary text
func (cf *ColorFormatter) Muted(text string) string {
	if !cf.enabled {
		return text
	}
	return cf.muted.Render(text)
}

// Bold renders emphasized text
func (cf *ColorFormatter) Bold(text string) string {
	if !cf.enabled {
		return text
	}
	return cf.bold.Render(text)
}
