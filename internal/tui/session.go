package tui

import (
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/NeverVane/histpick/internal/apperrors"
	"github.com/NeverVane/histpick/internal/logger"
)

// Sequences written by Leave when the program could not restore the
// screen itself.
const (
	seqShowCursor     = "\x1b[?25h"
	seqExitAltScreen  = "\x1b[?1049l"
	seqRestoreDisplay = seqShowCursor + seqExitAltScreen
)

// Session owns the terminal for the lifetime of one picker run: raw mode,
// the alternate screen and the hidden cursor. Only one session may be
// active per process.
//
// Enter snapshots the terminal mode, Run hands the terminal to the event
// loop, and Leave puts everything back. Leave is safe to call any number
// of times from any exit path, including ones that never reached Enter.
type Session struct {
	in  *os.File
	out *os.File

	log   *logger.Logger
	saved *term.State

	// runProgram drives the event loop; tests replace it
	runProgram func(m tea.Model) (tea.Model, error)

	entered bool
	clean   bool

	leaveOnce sync.Once
	leaveErr  error
}

// NewSession creates a session reading from in and drawing on out
func NewSession(in, out *os.File) *Session {
	s := &Session{
		in:  in,
		out: out,
		log: logger.GetLogger().Terminal(),
	}
	s.runProgram = s.runTea
	return s
}

// DefaultSession draws on stdout, or on stderr when stdout is redirected
// so that the chosen command stays alone on stdout.
func DefaultSession() *Session {
	out := os.Stdout
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		out = os.Stderr
	}
	return NewSession(os.Stdin, out)
}

// Output returns the file the session draws on
func (s *Session) Output() io.Writer {
	return s.out
}

// Enter verifies the input is a terminal and records its current mode
// so Leave can restore it no matter how the loop ends.
func (s *Session) Enter() error {
	if s.entered {
		return apperrors.Terminal("enter terminal", "terminal session already active", nil)
	}

	fd := int(s.in.Fd())
	if !term.IsTerminal(fd) {
		return apperrors.Terminal("enter terminal", "standard input is not a terminal", nil)
	}

	state, err := term.GetState(fd)
	if err != nil {
		return apperrors.Terminal("enter terminal", "failed to read terminal state", err)
	}

	s.saved = state
	s.entered = true
	s.log.Debug().Str("output", s.out.Name()).Msg("Terminal state saved")
	return nil
}

// Run switches the terminal to raw mode and the alternate screen with the
// cursor hidden, drives m until it quits, then switches back.
func (s *Session) Run(m tea.Model) (tea.Model, error) {
	if !s.entered {
		return nil, apperrors.Terminal("run terminal", "terminal session not entered", nil)
	}

	final, err := s.runProgram(m)
	if err != nil {
		return final, apperrors.Terminal("run terminal", "terminal session failed", err)
	}

	s.clean = true
	return final, nil
}

func (s *Session) runTea(m tea.Model) (tea.Model, error) {
	program := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithInput(s.in),
		tea.WithOutput(s.out),
	)
	return program.Run()
}

// Leave restores the terminal. After a clean Run the program has already
// left the alternate screen, so only the saved mode is reapplied; after a
// failure or panic the screen is restored as well.
func (s *Session) Leave() error {
	s.leaveOnce.Do(func() {
		if !s.entered {
			return
		}

		if !s.clean {
			if _, err := io.WriteString(s.out, seqRestoreDisplay); err != nil {
				s.leaveErr = apperrors.Terminal("leave terminal", "failed to restore screen", err)
			}
		}

		if err := term.Restore(int(s.in.Fd()), s.saved); err != nil && s.leaveErr == nil {
			s.leaveErr = apperrors.Terminal("leave terminal", "failed to restore terminal mode", err)
		}

		if s.leaveErr != nil {
			s.log.WithError(s.leaveErr).Error().Msg("Terminal restoration incomplete")
			return
		}
		s.log.Debug().Bool("clean", s.clean).Msg("Terminal restored")
	})
	return s.leaveErr
}
