package history

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Shell identifies a supported shell history convention
type Shell string

const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// MaxLineSize bounds a single history line. Longer lines fail the read
// instead of being silently truncated.
const MaxLineSize = 1024 * 1024

// SupportedShells lists the shells in the order they are reported to users
var SupportedShells = []Shell{ShellBash, ShellZsh, ShellFish}

// ImportResult contains the result of reading a history file
type ImportResult struct {
	// Non-empty trimmed lines, in file order
	Commands []string

	// Lines read, including blank ones
	TotalLines int

	// Blank lines and lines that are not valid UTF-8
	SkippedLines int
}

// ParseShell maps a shell identifier such as the value of $SHELL to a
// supported shell. Both bare names ("zsh") and paths ("/usr/bin/zsh") work.
func ParseShell(identifier string) (Shell, error) {
	name := strings.ToLower(filepath.Base(strings.TrimSpace(identifier)))
	for _, shell := range SupportedShells {
		if name == string(shell) {
			return shell, nil
		}
	}
	return "", fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish)", identifier)
}

// HistoryPath returns the conventional history file of the shell under home
func (s Shell) HistoryPath(home string) string {
	switch s {
	case ShellZsh:
		return filepath.Join(home, ".zsh_history")
	case ShellFish:
		return filepath.Join(home, ".local", "share", "fish", "fish_history")
	default:
		return filepath.Join(home, ".bash_history")
	}
}

// ImportFile reads the history file at filePath
func ImportFile(filePath string) (*ImportResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history file at %s: %w", filePath, err)
	}
	defer file.Close()

	result, err := Import(file)
	if err != nil {
		return nil, fmt.Errorf("error reading history file %s: %w", filePath, err)
	}
	return result, nil
}

// Import reads newline-delimited history from r. Every non-blank line is
// trimmed and kept verbatim; no shell specific metadata is parsed.
func Import(r io.Reader) (*ImportResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	result := &ImportResult{}
	for scanner.Scan() {
		result.TotalLines++

		raw := scanner.Text()
		if !utf8.ValidString(raw) {
			result.SkippedLines++
			continue
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			result.SkippedLines++
			continue
		}

		result.Commands = append(result.Commands, line)
	}

	if err := scanner.Err(); err != nil {
		return result, err
	}

	return result, nil
}
