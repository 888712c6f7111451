package main

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/NeverVane/histpick/internal/apperrors"
	"github.com/NeverVane/histpick/internal/buildinfo"
	"github.com/NeverVane/histpick/internal/config"
	"github.com/NeverVane/histpick/internal/index"
	"github.com/NeverVane/histpick/internal/logger"
	"github.com/NeverVane/histpick/internal/output"
	"github.com/NeverVane/histpick/internal/stats"
	"github.com/NeverVane/histpick/internal/tui"
	"github.com/NeverVane/histpick/pkg/history"
	"github.com/NeverVane/histpick/pkg/security"
)

const (
	msgCancelled = "Exited."
	msgNoMatch   = "No matching commands found."
)

// Swapped out in tests
var (
	copyToClipboard = clipboard.WriteAll
	openSession     = tui.DefaultSession
	launchPicker    = tui.Launch
)

// loadIndex reads the configured history file and builds its frequency index
func (a *app) loadIndex(cfg *config.Config) (*index.Index, string, error) {
	log := logger.GetLogger().History()

	path, err := cfg.HistoryPath()
	if err != nil {
		return nil, "", err
	}

	start := time.Now()
	imported, err := history.ImportFile(path)
	if err != nil {
		return nil, path, apperrors.Config("load history", "failed to read history", err)
	}

	idx := index.Build(imported.Commands)
	log.Performance("load_history", time.Since(start), map[string]interface{}{
		"path":          path,
		"lines":         imported.TotalLines,
		"skipped_lines": imported.SkippedLines,
		"unique":        idx.Len(),
	})
	a.formatter.Verbose("Loaded %d commands (%d unique) from %s", idx.Total(), idx.Len(), path)

	return idx, path, nil
}

// pick runs the interactive picker and reports its outcome
func (a *app) pick(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.TUI.InitialQuery = args[0]
	}

	idx, _, err := a.loadIndex(cfg)
	if err != nil {
		return err
	}

	result, err := a.launch(idx, &tui.Options{
		InitialQuery: cfg.TUI.InitialQuery,
		NoColor:      cfg.TUI.NoColor,
	})
	if err != nil {
		return err
	}

	switch result.Outcome {
	case tui.OutcomeSelected:
		return a.deliver(cfg, result.Command)
	case tui.OutcomeNoMatch:
		a.formatter.Notice(msgNoMatch)
	default:
		a.formatter.Notice(msgCancelled)
	}
	return nil
}

// launch owns the terminal for the picker. Console logs are held back
// until it returns, since they would draw over the frame.
func (a *app) launch(idx *index.Index, opts *tui.Options) (*tui.Result, error) {
	restoreLogs := logger.DetachConsole()
	defer restoreLogs()

	a.session = a.newSession()
	return launchPicker(a.session, idx, opts)
}

// deliver prints the chosen command and hands it to the optional sinks
func (a *app) deliver(cfg *config.Config, command string) error {
	a.formatter.Result(command)

	if cfg.TUI.OutputFile != "" {
		if err := security.NewPermissionEnforcer().WriteSecureFile(cfg.TUI.OutputFile, []byte(command)); err != nil {
			return fmt.Errorf("failed to write selected command to %s: %w", cfg.TUI.OutputFile, err)
		}
		a.formatter.Verbose("Selected command written to %s", cfg.TUI.OutputFile)
	}

	if cfg.TUI.CopyToClipboard {
		// The command already reached stdout, so a missing clipboard is not fatal
		if err := copyToClipboard(command); err != nil {
			logger.GetLogger().WithError(err).Warn().Msg("Clipboard copy failed")
			a.formatter.Warning("failed to copy to clipboard: %v", err)
		} else {
			a.formatter.Verbose("Command copied to clipboard")
		}
	}

	return nil
}

func statsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Display command frequency statistics",
		Long: `Display statistics about your shell history, ranked the same way the
picker ranks commands: most frequent first, ties broken alphabetically.

Examples:
  histpick stats                 # Top 10 commands
  histpick stats --top=25        # Top 25 commands
  histpick stats --filter=git    # Only commands containing "git"
  histpick stats --base          # Also rank base commands (git, ls, ...)
  histpick stats --format=json   # Output as JSON (also yaml, toml)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			top, _ := cmd.Flags().GetInt("top")
			filter, _ := cmd.Flags().GetString("filter")
			minOccurrences, _ := cmd.Flags().GetInt("min")
			includeBase, _ := cmd.Flags().GetBool("base")
			format, _ := cmd.Flags().GetString("format")

			switch format {
			case output.FormatText, output.FormatJSON, output.FormatYAML, output.FormatTOML:
			default:
				return apperrors.Configf("stats", "invalid format: %s (must be: text, json, yaml, toml)", format)
			}
			if top < 1 {
				return apperrors.Configf("stats", "--top must be at least 1, got %d", top)
			}

			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}

			idx, path, err := a.loadIndex(cfg)
			if err != nil {
				return err
			}

			engine := stats.NewStatsEngine(idx, path)
			result := engine.GenerateStats(&stats.StatsOptions{
				TopN:           top,
				MinOccurrences: minOccurrences,
				CommandFilter:  filter,
				IncludeBase:    includeBase,
			})

			if format == output.FormatText {
				fmt.Fprint(a.out, a.formatter.StatsText(result))
				return nil
			}
			return a.formatter.Encode(format, result)
		},
	}

	cmd.Flags().Int("top", stats.DefaultOptions().TopN, "Number of top commands to show")
	cmd.Flags().String("filter", "", "Only count commands containing this text")
	cmd.Flags().Int("min", 1, "Minimum occurrences to include")
	cmd.Flags().Bool("base", false, "Also rank base commands")
	cmd.Flags().String("format", output.FormatText, "Output format (text, json, yaml, toml)")

	return cmd
}

func configCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}

			if cfg.HistoryFile == "" {
				// Show where the history will actually be read from
				if cfg.HistoryFile, err = cfg.HistoryPath(); err != nil {
					return err
				}
			}

			text, err := cfg.EncodeTOML()
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, text)
			return nil
		},
	}
}

func versionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := buildinfo.Get()
			if err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("format")
			if format == output.FormatText {
				a.formatter.Result("histpick " + info.String())
				return nil
			}
			return a.formatter.Encode(format, info)
		},
	}

	cmd.Flags().String("format", output.FormatText, "Output format (text, json, yaml, toml)")

	return cmd
}
