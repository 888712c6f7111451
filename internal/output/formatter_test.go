package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/NeverVane/histpick/internal/search"
	"github.com/NeverVane/histpick/internal/stats"
)

func sampleResult() *stats.StatsResult {
	return &stats.StatsResult{
		Overall: &stats.OverallStats{TotalCommands: 12, UniqueCommands: 3, RepeatRatio: 0.75},
		TopCommands: []search.Candidate{
			{Command: "git status", Count: 10},
			{Command: "ls", Count: 1},
		},
		HistoryFile: "/home/alice/.bash_history",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newTestFormatter() (*Formatter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewFormatterTo(&out, &errOut, true), &out, &errOut
}

func TestFormatter_Streams(t *testing.T) {
	f, out, errOut := newTestFormatter()

	f.Result("git status")
	f.Notice("Exited.")
	f.Error("history file %s is unreadable", "/x")
	f.Warning("careful")
	f.Verbose("hidden unless verbose")

	assert.Equal(t, "git status\n", out.String())
	assert.Equal(t, "Exited.\n[FAIL] history file /x is unreadable\n[WARN] careful\n", errOut.String())
}

func TestFormatter_QuietAndVerbose(t *testing.T) {
	f, _, errOut := newTestFormatter()

	f.SetFlags(true, false, true)
	f.Verbose("loaded %d lines", 3)
	assert.Equal(t, "[INFO] loaded 3 lines\n", errOut.String())

	errOut.Reset()
	f.SetFlags(false, true, true)
	f.Notice("Exited.")
	f.Warning("skipped")
	f.Error("still shown")
	assert.Equal(t, "[FAIL] still shown\n", errOut.String())
}

func TestColorFormatter_Disabled(t *testing.T) {
	cf := NewColorFormatter(&bytes.Buffer{}, true)

	assert.Equal(t, "[WARN]", cf.Colorize("[WARN]", StatusWarning))
	assert.Equal(t, "dim", cf.Muted("dim"))
	assert.Equal(t, "loud", cf.Bold("loud"))
}

func TestStatsText(t *testing.T) {
	f, _, _ := newTestFormatter()

	text := f.StatsText(sampleResult())
	lines := strings.Split(text, "\n")

	assert.Equal(t, "[STATS] Command history statistics", lines[0])
	assert.Equal(t, "History file: /home/alice/.bash_history", lines[1])
	assert.Contains(t, text, "Total commands:   12\n")
	assert.Contains(t, text, "Unique commands:  3\n")
	assert.Contains(t, text, "Repeat ratio:     75.0%\n")
	assert.Contains(t, text, "Top commands\n  1. 10  git status\n  2.  1  ls\n")
	assert.NotContains(t, text, "Top base commands")
}

func TestStatsText_EmptyAndBase(t *testing.T) {
	f, _, _ := newTestFormatter()

	result := sampleResult()
	result.TopCommands = nil
	result.TopBaseCommands = []search.Candidate{{Command: "git", Count: 4}}
	result.Filter = "gi"

	text := f.StatsText(result)
	assert.Contains(t, text, "Filter: gi\n")
	assert.Contains(t, text, "Top commands\n  (none)\n")
	assert.Contains(t, text, "Top base commands\n  1. 4  git\n")
}

func TestEncode(t *testing.T) {
	result := sampleResult()

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, FormatJSON, result))

		var decoded stats.StatsResult
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, result.TopCommands, decoded.TopCommands)
		assert.Equal(t, 12, decoded.Overall.TotalCommands)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, FormatYAML, result))
		assert.Contains(t, buf.String(), "top_commands:")

		var decoded stats.StatsResult
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, result.TopCommands, decoded.TopCommands)
	})

	t.Run("toml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, FormatTOML, result))
		assert.Contains(t, buf.String(), "[[top_commands]]")

		var decoded stats.StatsResult
		_, err := toml.Decode(buf.String(), &decoded)
		require.NoError(t, err)
		assert.Equal(t, result.TopCommands, decoded.TopCommands)
	})

	t.Run("unsupported", func(t *testing.T) {
		err := Encode(&bytes.Buffer{}, "xml", result)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported format")
	})
}
