package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/NeverVane/histpick/internal/apperrors"
	"github.com/NeverVane/histpick/internal/buildinfo"
	"github.com/NeverVane/histpick/internal/config"
	"github.com/NeverVane/histpick/internal/logger"
	"github.com/NeverVane/histpick/internal/output"
	"github.com/NeverVane/histpick/internal/tui"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv))
}

// app carries what every command needs, plus the terminal session so the
// top level can restore it on any exit path
type app struct {
	out    io.Writer
	errOut io.Writer
	lookup config.LookupFunc

	formatter  *output.Formatter
	newSession func() *tui.Session
	session    *tui.Session

	logConfig *logger.Config
}

// run executes the CLI and returns the process exit code
func run(args []string, stdout, stderr io.Writer, lookup config.LookupFunc) (code int) {
	a := &app{
		out:        stdout,
		errOut:     stderr,
		lookup:     lookup,
		formatter:  output.NewFormatterTo(stdout, stderr, false),
		newSession: openSession,
		logConfig:  logger.DefaultConfig(),
	}

	defer func() {
		if r := recover(); r != nil {
			a.leaveSession()
			logger.Error().Str("stack", string(debug.Stack())).Msgf("panic: %v", r)
			fmt.Fprintf(stderr, "histpick encountered a fatal error: %v\n", r)
			code = 1
		}
	}()
	defer a.leaveSession()

	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		return a.exitCode(err)
	}
	return 0
}

// exitCode reports err and maps it to the process exit code
func (a *app) exitCode(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindTerminal:
		a.leaveSession()
		logger.WithError(err).Error().Msg("Terminal session failed")
	case apperrors.KindConfig:
		logger.WithError(err).Debug().Msg("Configuration rejected")
	}

	a.formatter.Error("%v", err)
	return 1
}

func (a *app) leaveSession() {
	if a.session == nil {
		return
	}
	// Leave logs its own failures; nothing more can be done here
	_ = a.session.Leave()
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "histpick [query]",
		Short: "Interactive shell history picker",
		Long: `histpick loads your shell history, lets you narrow it down with a
case-insensitive substring query and prints the command you choose.

The ten most frequent matching commands are shown, most used first.
The chosen command is printed to stdout, so it can be captured:

  cmd=$(histpick) && eval "$cmd"

Keys:
  type        refine the query
  ↑/↓         move the selection
  Enter       choose the selected command
  Esc/Ctrl+C  exit without choosing`,
		Version:       buildinfo.Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initLogging(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.pick(cmd, args)
		},
	}

	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().String("log-file", "", "Write logs to this file instead of stderr")
	rootCmd.PersistentFlags().String("history-file", "", "Read history from this file instead of the shell default")

	rootCmd.Flags().Bool("copy", false, "Copy the chosen command to the clipboard")
	rootCmd.Flags().String("output-file", "", "Also write the chosen command to this file")

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(statsCmd(a))
	rootCmd.AddCommand(configCmd(a))
	rootCmd.AddCommand(versionCmd(a))

	return rootCmd
}

// initLogging configures the global logger and formatter from the
// persistent flags. It runs before the environment is consulted.
func (a *app) initLogging(cmd *cobra.Command) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	noColor, _ := cmd.Flags().GetBool("no-color")
	logFile, _ := cmd.Flags().GetString("log-file")

	if _, ok := a.lookup(config.EnvNoColor); ok {
		noColor = true
	}
	a.formatter.SetFlags(verbose, false, noColor)

	if verbose {
		a.logConfig.Level = "debug"
	}
	if logFile != "" {
		a.logConfig.Output = logFile
	}
	a.logConfig.Color = !noColor

	if err := logger.Init(a.logConfig); err != nil {
		return apperrors.Config("initialize logger", "invalid logging options", err)
	}
	return nil
}

// loadConfig builds and validates the configuration from the environment
// and the flags of cmd. Flags a command does not define are left unset.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.FromEnv(a.lookup)
	if err != nil {
		return nil, err
	}

	cfg.Log = *a.logConfig

	flags := cmd.Flags()
	if noColor, _ := flags.GetBool("no-color"); noColor {
		cfg.TUI.NoColor = true
	}
	cfg.HistoryFile, _ = flags.GetString("history-file")
	if flags.Lookup("copy") != nil {
		cfg.TUI.CopyToClipboard, _ = flags.GetBool("copy")
	}
	if flags.Lookup("output-file") != nil {
		cfg.TUI.OutputFile, _ = flags.GetString("output-file")
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.GetLogger().Config().Debug().
		Str("shell", cfg.Shell).
		Str("history_file", cfg.HistoryFile).
		Bool("no_color", cfg.TUI.NoColor).
		Msg("Configuration loaded")
	return cfg, nil
}
