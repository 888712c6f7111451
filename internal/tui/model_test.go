package tui

import (
	"bytes"
	"math/rand"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NeverVane/histpick/internal/index"
	"github.com/NeverVane/histpick/internal/search"
)

var (
	keyUp        = tea.KeyMsg{Type: tea.KeyUp}
	keyDown      = tea.KeyMsg{Type: tea.KeyDown}
	keyEnter     = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc       = tea.KeyMsg{Type: tea.KeyEsc}
	keyCtrlC     = tea.KeyMsg{Type: tea.KeyCtrlC}
	keyBackspace = tea.KeyMsg{Type: tea.KeyBackspace}
)

func typed(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sampleIndex() *index.Index {
	return index.Build([]string{
		"git status", "git status", "git status", "git status", "git status",
		"git commit", "git commit", "git commit",
		"ls", "ls", "ls", "ls", "ls",
	})
}

func testModel(t *testing.T, idx *index.Index, query string) model {
	t.Helper()
	return newModel(idx, &Options{InitialQuery: query, NoColor: true}, lipgloss.NewRenderer(&bytes.Buffer{}), nil)
}

// send applies msgs in order and returns the final model with the last command
func send(t *testing.T, m model, msgs ...tea.Msg) (model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		var ok bool
		m, ok = next.(model)
		require.True(t, ok)
	}
	return m, cmd
}

func candidateCommands(m model) []string {
	out := make([]string, len(m.candidates))
	for i, c := range m.candidates {
		out[i] = c.Command
	}
	return out
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestNewModel_InitialState(t *testing.T) {
	m := testModel(t, sampleIndex(), "")

	assert.Equal(t, "", m.query)
	assert.Equal(t, 0, m.selected)
	assert.Equal(t, []string{"git status", "ls", "git commit"}, candidateCommands(m))
	assert.False(t, m.done)
	assert.Nil(t, m.Init())
}

func TestNewModel_InitialQuery(t *testing.T) {
	m := testModel(t, sampleIndex(), "git")
	assert.Equal(t, []string{"git status", "git commit"}, candidateCommands(m))
}

func TestUpdate_Transitions(t *testing.T) {
	tests := []struct {
		name         string
		msgs         []tea.Msg
		wantQuery    string
		wantSelected int
		wantOutcome  Outcome
		wantCommand  string
		wantQuit     bool
	}{
		{
			name:         "down moves the cursor",
			msgs:         []tea.Msg{keyDown},
			wantSelected: 1,
		},
		{
			name:         "down past the end stays on the last candidate",
			msgs:         []tea.Msg{keyDown, keyDown, keyDown, keyDown},
			wantSelected: 2,
		},
		{
			name:         "up at the top stays at zero",
			msgs:         []tea.Msg{keyUp, keyUp},
			wantSelected: 0,
		},
		{
			name:         "typing resets the selection",
			msgs:         []tea.Msg{keyDown, keyDown, typed("g")},
			wantQuery:    "g",
			wantSelected: 0,
		},
		{
			name:         "backspace drops the last character and resets the selection",
			msgs:         []tea.Msg{typed("gix"), keyDown, keyBackspace},
			wantQuery:    "gi",
			wantSelected: 0,
		},
		{
			name:         "backspace on an empty query is a no-op",
			msgs:         []tea.Msg{keyBackspace},
			wantQuery:    "",
			wantSelected: 0,
		},
		{
			name:         "ctrl+h erases like backspace",
			msgs:         []tea.Msg{typed("ls"), tea.KeyMsg{Type: tea.KeyCtrlH}},
			wantQuery:    "l",
			wantSelected: 0,
		},
		{
			name:         "space is appended to the query",
			msgs:         []tea.Msg{typed("git"), tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}},
			wantQuery:    "git ",
			wantSelected: 0,
		},
		{
			name:         "typing the word enter is text",
			msgs:         []tea.Msg{typed("enter")},
			wantQuery:    "enter",
			wantSelected: 0,
		},
		{
			name:         "typing the word esc is text",
			msgs:         []tea.Msg{typed("esc")},
			wantQuery:    "esc",
			wantSelected: 0,
		},
		{
			name:         "typing the word up is text and resets the selection",
			msgs:         []tea.Msg{keyDown, typed("up")},
			wantQuery:    "up",
			wantSelected: 0,
		},
		{
			name:         "typing a binding name letter by letter is text",
			msgs:         []tea.Msg{typed("d"), typed("o"), typed("w"), typed("n")},
			wantQuery:    "down",
			wantSelected: 0,
		},
		{
			name:         "alt-modified runes are ignored",
			msgs:         []tea.Msg{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x"), Alt: true}},
			wantQuery:    "",
			wantSelected: 0,
		},
		{
			name:         "unbound keys are ignored",
			msgs:         []tea.Msg{keyDown, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyCtrlA}},
			wantSelected: 1,
		},
		{
			name:         "enter chooses the selected candidate",
			msgs:         []tea.Msg{keyDown, keyEnter},
			wantSelected: 1,
			wantOutcome:  OutcomeSelected,
			wantCommand:  "ls",
			wantQuit:     true,
		},
		{
			name:        "enter with no candidates reports no match",
			msgs:        []tea.Msg{typed("zzz"), keyEnter},
			wantQuery:   "zzz",
			wantOutcome: OutcomeNoMatch,
			wantQuit:    true,
		},
		{
			name:        "esc cancels",
			msgs:        []tea.Msg{typed("git"), keyEsc},
			wantQuery:   "git",
			wantOutcome: OutcomeCancelled,
			wantQuit:    true,
		},
		{
			name:        "ctrl+c cancels",
			msgs:        []tea.Msg{keyCtrlC},
			wantOutcome: OutcomeCancelled,
			wantQuit:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, cmd := send(t, testModel(t, sampleIndex(), ""), tt.msgs...)

			assert.Equal(t, tt.wantQuery, m.query)
			assert.Equal(t, tt.wantSelected, m.selected)
			assert.Equal(t, tt.wantOutcome, m.result.Outcome)
			assert.Equal(t, tt.wantCommand, m.result.Command)
			assert.Equal(t, tt.wantQuit, isQuit(cmd))
			assert.Equal(t, tt.wantQuit, m.done)
		})
	}
}

func TestUpdate_ResizeKeepsStateAndRequeryResets(t *testing.T) {
	idx := index.Build([]string{"git status", "git status", "gitk", "go test"})
	m := testModel(t, idx, "g")

	m, _ = send(t, m, keyDown, keyDown)
	require.Equal(t, 2, m.selected)

	// Only the query changes the list, and it resets the cursor; a resize
	// must leave both untouched.
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})
	assert.Equal(t, 2, m.selected)
	assert.Equal(t, 40, m.width)
	assert.Equal(t, 10, m.height)

	m, _ = send(t, m, typed("it"))
	assert.Equal(t, []string{"git status", "gitk"}, candidateCommands(m))
	assert.Equal(t, 0, m.selected)
}

func TestUpdate_IgnoresEventsAfterFinish(t *testing.T) {
	m, _ := send(t, testModel(t, sampleIndex(), ""), keyDown, keyEnter)
	require.True(t, m.done)

	m, cmd := send(t, m, keyDown, typed("x"))
	assert.Nil(t, cmd)
	assert.Equal(t, "ls", m.result.Command)
	assert.Equal(t, "", m.query)
}

func TestUpdate_MultibyteBackspace(t *testing.T) {
	m, _ := send(t, testModel(t, index.Build([]string{"echo héllo"}), ""), typed("hé"), keyBackspace)
	assert.Equal(t, "h", m.query)
}

func TestUpdate_EmptyIndex(t *testing.T) {
	m := testModel(t, index.Build(nil), "")
	assert.Empty(t, m.candidates)

	m, cmd := send(t, m, keyDown, keyUp, keyEnter)
	assert.Equal(t, 0, m.selected)
	assert.Equal(t, OutcomeNoMatch, m.result.Outcome)
	assert.True(t, isQuit(cmd))
}

func TestUpdate_CandidatesAlwaysMatchRank(t *testing.T) {
	idx := index.Build([]string{
		"git status", "git status", "git commit -m wip", "ls -la", "ls", "go test ./...",
		"make build", "docker ps", "docker compose up", "kubectl get pods", "vim main.go",
		"cat README.md", "grep -r TODO .", "echo ok", "npm test",
	})
	events := []tea.Msg{
		keyUp, keyDown, keyDown, keyBackspace,
		typed("g"), typed("o"), typed("e"), typed("s"), typed(" "), typed("t"),
	}

	rng := rand.New(rand.NewSource(7))
	for run := 0; run < 200; run++ {
		m := testModel(t, idx, "")
		n := rng.Intn(30)
		for i := 0; i < n; i++ {
			m, _ = send(t, m, events[rng.Intn(len(events))])

			assert.Equal(t, search.Rank(idx, m.query), m.candidates)
			if len(m.candidates) == 0 {
				assert.Equal(t, 0, m.selected)
			} else {
				assert.GreaterOrEqual(t, m.selected, 0)
				assert.Less(t, m.selected, len(m.candidates))
			}
		}
	}
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "pending", OutcomePending.String())
	assert.Equal(t, "selected", OutcomeSelected.String())
	assert.Equal(t, "no_match", OutcomeNoMatch.String())
	assert.Equal(t, "cancelled", OutcomeCancelled.String())
}
