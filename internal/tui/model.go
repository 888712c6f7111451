package tui

import (
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NeverVane/histpick/internal/index"
	"github.com/NeverVane/histpick/internal/logger"
	"github.com/NeverVane/histpick/internal/search"
)

// keyMap defines key bindings
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Erase  key.Binding
	Choose key.Binding
	Cancel key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "move down"),
	),
	Erase: key.NewBinding(
		key.WithKeys("backspace", "ctrl+h"),
		key.WithHelp("backspace", "delete character"),
	),
	Choose: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "choose"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "exit"),
	),
}

// model is the picker state: the query, the cursor, and the candidate
// list derived from them. The candidate list is recomputed from the
// immutable index after every event rather than maintained incrementally.
type model struct {
	idx *index.Index

	query      string
	selected   int
	candidates []search.Candidate

	// Terminal dimensions from the latest size report, 0 until the first
	width  int
	height int

	result Result
	done   bool

	keys   keyMap
	styles styles
	log    *logger.Logger
}

func newModel(idx *index.Index, opts *Options, renderer *lipgloss.Renderer, log *logger.Logger) model {
	if opts == nil {
		opts = &Options{}
	}
	if log == nil {
		log = logger.GetLogger().TUI()
	}

	m := model{
		idx:    idx,
		query:  opts.InitialQuery,
		keys:   keys,
		styles: newStyles(renderer, opts.NoColor),
		log:    log,
	}
	m.refresh()
	return m
}

// Init implements tea.Model
func (m model) Init() tea.Cmd {
	return nil
}

// Update applies one event to the state and recomputes the candidates
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Nothing else changes; the next View lays out for the new size
		m.width = msg.Width
		m.height = msg.Height
		m.log.Debug().Int("width", m.width).Int("height", m.height).Msg("Terminal resized")

	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			return m, cmd
		}
	}

	m.refresh()
	return m, nil
}

// handleKey applies the transition table. It returns tea.Quit for the
// terminating transitions and nil otherwise.
func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	// Typed text is never a binding. Bursts of runes arrive as one
	// message whose String() may read "enter" or "up".
	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		if typed := printable(msg.Runes); typed != "" && !msg.Alt {
			m.query += typed
			m.selected = 0
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Choose):
		if len(m.candidates) > 0 {
			m.finish(Result{Outcome: OutcomeSelected, Command: m.candidates[m.selected].Command})
		} else {
			m.finish(Result{Outcome: OutcomeNoMatch})
		}
		return tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		m.finish(Result{Outcome: OutcomeCancelled})
		return tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}

	case key.Matches(msg, m.keys.Down):
		if m.selected+1 < len(m.candidates) {
			m.selected++
		}

	case key.Matches(msg, m.keys.Erase):
		if m.query != "" {
			_, size := utf8.DecodeLastRuneInString(m.query)
			m.query = m.query[:len(m.query)-size]
		}
		m.selected = 0
	}

	return nil
}

// refresh recomputes the candidate list and clamps the cursor into it
func (m *model) refresh() {
	m.candidates = search.Rank(m.idx, m.query)

	if m.selected >= len(m.candidates) {
		m.selected = len(m.candidates) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *model) finish(result Result) {
	m.result = result
	m.done = true
	m.log.Debug().
		Str("outcome", result.Outcome.String()).
		Str("query", m.query).
		Msg("Picker finished")
}

// printable keeps the printable runes of a key event, space included
func printable(runes []rune) string {
	out := make([]rune, 0, len(runes))
	for _, r := range runes {
		if unicode.IsPrint(r) {
			out = append(out, r)
		}
	}
	return string(out)
}
