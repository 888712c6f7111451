package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/NeverVane/histpick/internal/index"
	"github.com/NeverVane/histpick/internal/logger"
	"github.com/NeverVane/histpick/internal/search"
)

// OverallStats represents totals for the whole history
type OverallStats struct {
	TotalCommands  int     `json:"total_commands" yaml:"total_commands" toml:"total_commands"`
	UniqueCommands int     `json:"unique_commands" yaml:"unique_commands" toml:"unique_commands"`
	RepeatRatio    float64 `json:"repeat_ratio" yaml:"repeat_ratio" toml:"repeat_ratio"`
}

// StatsOptions provides configuration for statistics generation
type StatsOptions struct {
	TopN           int    `json:"top_n"`
	MinOccurrences int    `json:"min_occurrences"`
	CommandFilter  string `json:"command_filter"`
	IncludeBase    bool   `json:"include_base"`
}

// StatsResult contains all generated statistics
type StatsResult struct {
	Overall         *OverallStats      `json:"overall" yaml:"overall" toml:"overall"`
	TopCommands     []search.Candidate `json:"top_commands" yaml:"top_commands" toml:"top_commands"`
	TopBaseCommands []search.Candidate `json:"top_base_commands,omitempty" yaml:"top_base_commands,omitempty" toml:"top_base_commands,omitempty"`
	Filter          string             `json:"filter,omitempty" yaml:"filter,omitempty" toml:"filter,omitempty"`
	HistoryFile     string             `json:"history_file" yaml:"history_file" toml:"history_file"`
	GeneratedAt     time.Time          `json:"generated_at" yaml:"generated_at" toml:"generated_at"`
}

// StatsEngine provides statistical analysis of a frequency index
type StatsEngine struct {
	idx         *index.Index
	historyFile string
	logger      *logger.Logger
	now         func() time.Time
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() *StatsOptions {
	return &StatsOptions{
		TopN:           search.MaxCandidates,
		MinOccurrences: 1,
	}
}

// NewStatsEngine creates a new statistics engine
func NewStatsEngine(idx *index.Index, historyFile string) *StatsEngine {
	return &StatsEngine{
		idx:         idx,
		historyFile: historyFile,
		logger:      logger.GetLogger().WithComponent("stats"),
		now:         time.Now,
	}
}

// GenerateStats generates statistics for the index
func (se *StatsEngine) GenerateStats(opts *StatsOptions) *StatsResult {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.MinOccurrences < 1 {
		opts.MinOccurrences = 1
	}

	start := se.now()

	overall := &OverallStats{
		TotalCommands:  se.idx.Total(),
		UniqueCommands: se.idx.Len(),
	}
	if overall.TotalCommands > 0 {
		overall.RepeatRatio = 1 - float64(overall.UniqueCommands)/float64(overall.TotalCommands)
	}

	// Rank uncapped so the occurrence floor applies before the top-N cut
	ranked := search.RankN(se.idx, opts.CommandFilter, 0)
	top := filterMinOccurrences(ranked, opts.MinOccurrences)
	if opts.TopN > 0 && len(top) > opts.TopN {
		top = top[:opts.TopN]
	}

	result := &StatsResult{
		Overall:     overall,
		TopCommands: top,
		Filter:      opts.CommandFilter,
		HistoryFile: se.historyFile,
		GeneratedAt: start,
	}

	if opts.IncludeBase {
		result.TopBaseCommands = se.sortBaseCommands(ranked, opts)
	}

	se.logger.Debug().
		Int("total", overall.TotalCommands).
		Int("unique", overall.UniqueCommands).
		Int("top", len(result.TopCommands)).
		Str("filter", opts.CommandFilter).
		Msg("Generated history statistics")

	return result
}

func filterMinOccurrences(candidates []search.Candidate, min int) []search.Candidate {
	out := make([]search.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Count >= min {
			out = append(out, c)
		}
	}
	return out
}

// sortBaseCommands aggregates counts by base command and ranks them like
// the picker does: descending count, then ascending name.
func (se *StatsEngine) sortBaseCommands(ranked []search.Candidate, opts *StatsOptions) []search.Candidate {
	baseCounts := make(map[string]int)
	for _, c := range ranked {
		base := extractBaseCommand(c.Command)
		if base == "" {
			continue
		}
		baseCounts[base] += c.Count
	}

	bases := make([]search.Candidate, 0, len(baseCounts))
	for base, count := range baseCounts {
		if count >= opts.MinOccurrences {
			bases = append(bases, search.Candidate{Command: base, Count: count})
		}
	}

	sort.Slice(bases, func(i, j int) bool {
		if bases[i].Count != bases[j].Count {
			return bases[i].Count > bases[j].Count
		}
		return bases[i].Command < bases[j].Command
	})

	if opts.TopN > 0 && len(bases) > opts.TopN {
		bases = bases[:opts.TopN]
	}
	return bases
}

// extractBaseCommand extracts the base command from a full command line
func extractBaseCommand(command string) string {
	parts := strings.Fields(strings.TrimSpace(command))
	if len(parts) == 0 {
		return ""
	}

	baseCmd := parts[0]

	// Handle common patterns
	if baseCmd == "sudo" && len(parts) > 1 {
		baseCmd = parts[1]
	}

	// Remove path components for commands with full paths
	if strings.Contains(baseCmd, "/") {
		pathParts := strings.Split(baseCmd, "/")
		return pathParts[len(pathParts)-1]
	}

	return baseCmd
}
