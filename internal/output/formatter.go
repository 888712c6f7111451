package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/NeverVane/histpick/internal/search"
	"github.com/NeverVane/histpick/internal/stats"
)

// Supported structured formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Formatter provides a high-level interface for CLI output formatting.
// Results go to out; notices and errors go to errOut so that stdout only
// ever carries the chosen command or a report.
type Formatter struct {
	out            io.Writer
	errOut         io.Writer
	colorFormatter *ColorFormatter
	errColor       *ColorFormatter
	verboseMode    bool
	quietMode      bool
}

// NewFormatterTo creates a formatter with explicit destinations
func NewFormatterTo(out, errOut io.Writer, noColor bool) *Formatter {
	return &Formatter{
		out:            out,
		errOut:         errOut,
		colorFormatter: NewColorFormatter(out, noColor),
		errColor:       NewColorFormatter(errOut, noColor),
	}
}

// SetFlags configures the formatter based on command line flags
func (f *Formatter) SetFlags(verbose, quiet, noColor bool) {
	f.verboseMode = verbose
	f.quietMode = quiet
	f.colorFormatter.SetNoColor(noColor)
	f.errColor.SetNoColor(noColor)
}

// Result prints a plain result line on the result stream
func (f *Formatter) Result(text string) {
	fmt.Fprintln(f.out, text)
}

// Notice prints a status notice on the notice stream (shown unless quiet)
func (f *Formatter) Notice(format string, args ...interface{}) {
	if !f.quietMode {
		fmt.Fprintln(f.errOut, fmt.Sprintf(format, args...))
	}
}

// Warning prints a warning message (shown unless quiet)
func (f *Formatter) Warning(format string, args ...interface{}) {
	if !f.quietMode {
		message := fmt.Sprintf(format, args...)
		fmt.Fprintln(f.errOut, f.errColor.Colorize("[WARN]", StatusWarning)+" "+message)
	}
}

// Error prints an error message (always shown)
func (f *Formatter) Error(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	fmt.Fprintln(f.errOut, f.errColor.Colorize("[FAIL]", StatusError)+" "+message)
}

// Verbose prints a verbose message (only shown in verbose mode)
func (f *Formatter) Verbose(format string, args ...interface{}) {
	if f.verboseMode && !f.quietMode {
		message := fmt.Sprintf(format, args...)
		fmt.Fprintln(f.errOut, f.errColor.Colorize("[INFO]", StatusInfo)+" "+message)
	}
}

// Encode writes v to the result stream in the given structured format
func (f *Formatter) Encode(format string, v interface{}) error {
	return Encode(f.out, format, v)
}

// Encode writes v to w as JSON, YAML or TOML
func Encode(w io.Writer, format string, v interface{}) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("failed to encode as JSON: %w", err)
		}
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("failed to encode as YAML: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("failed to encode as YAML: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(v); err != nil {
			return fmt.Errorf("failed to encode as TOML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q (supported: text, json, yaml, toml)", format)
	}
	return nil
}

// StatsText renders a statistics report for humans
func (f *Formatter) StatsText(result *stats.StatsResult) string {
	cf := f.colorFormatter
	var b strings.Builder

	b.WriteString(cf.Colorize("[STATS]", StatusStats) + " " + cf.Bold("Command history statistics") + "\n")
	b.WriteString(cf.Muted("History file: "+result.HistoryFile) + "\n")
	if result.Filter != "" {
		b.WriteString(cf.Muted("Filter: "+result.Filter) + "\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Total commands:   %d\n", result.Overall.TotalCommands)
	fmt.Fprintf(&b, "Unique commands:  %d\n", result.Overall.UniqueCommands)
	fmt.Fprintf(&b, "Repeat ratio:     %.1f%%\n", result.Overall.RepeatRatio*100)

	writeRanking := func(title string, entries []search.Candidate) {
		b.WriteString("\n" + cf.Bold(title) + "\n")
		if len(entries) == 0 {
			b.WriteString(cf.Muted("  (none)") + "\n")
			return
		}
		width := len(fmt.Sprint(entries[0].Count))
		for i, e := range entries {
			fmt.Fprintf(&b, "%3d. %*d  %s\n", i+1, width, e.Count, e.Command)
		}
	}

	writeRanking("Top commands", result.TopCommands)
	if result.TopBaseCommands != nil {
		writeRanking("Top base commands", result.TopBaseCommands)
	}

	return b.String()
}
