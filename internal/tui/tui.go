package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/NeverVane/histpick/internal/apperrors"
	"github.com/NeverVane/histpick/internal/index"
	"github.com/NeverVane/histpick/internal/logger"
)

// Options configures the picker
type Options struct {
	InitialQuery string
	NoColor      bool
}

// Outcome describes how the picker ended
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeSelected
	OutcomeNoMatch
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSelected:
		return "selected"
	case OutcomeNoMatch:
		return "no_match"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "pending"
	}
}

// Result is the final picker state. Command is set only for OutcomeSelected.
type Result struct {
	Outcome Outcome
	Command string
}

// Launch enters the terminal session, runs the picker over idx and always
// leaves the session before returning, whatever the outcome.
func Launch(session *Session, idx *index.Index, opts *Options) (result *Result, err error) {
	if opts == nil {
		opts = &Options{}
	}

	log := logger.GetLogger().TUI().WithSessionID(uuid.NewString())
	log.Info().
		Int("unique_commands", idx.Len()).
		Str("initial_query", opts.InitialQuery).
		Msg("Launching picker")

	if err := session.Enter(); err != nil {
		return nil, err
	}
	defer func() {
		if leaveErr := session.Leave(); leaveErr != nil && err == nil {
			err = leaveErr
		}
	}()

	m := newModel(idx, opts, lipgloss.NewRenderer(session.Output()), log)

	final, err := session.Run(m)
	if err != nil {
		return nil, err
	}

	fm, ok := final.(model)
	if !ok {
		return nil, apperrors.Terminal("run picker", fmt.Sprintf("unexpected model type %T", final), nil)
	}
	if !fm.done {
		// The program only stops early when the terminal is torn down under it
		return &Result{Outcome: OutcomeCancelled}, nil
	}

	log.Info().Str("outcome", fm.result.Outcome.String()).Msg("Picker closed")
	return &fm.result, nil
}
