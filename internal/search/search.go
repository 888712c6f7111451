package search

import (
	"sort"
	"strings"

	"github.com/NeverVane/histpick/internal/index"
)

// MaxCandidates caps the list shown by the picker
const MaxCandidates = 10

// Candidate is a command currently eligible for display with its count
type Candidate struct {
	Command string `json:"command" yaml:"command" toml:"command"`
	Count   int    `json:"count" yaml:"count" toml:"count"`
}

// Rank returns the top MaxCandidates commands of idx matching query
func Rank(idx *index.Index, query string) []Candidate {
	return RankN(idx, query, MaxCandidates)
}

// RankN filters idx by a case-insensitive substring match on query, orders
// the matches by descending count then ascending command text, and keeps
// the first limit entries. A limit <= 0 keeps every match.
//
// The whole index is scanned and sorted on every call; truncation happens
// only after the full sort.
func RankN(idx *index.Index, query string, limit int) []Candidate {
	needle := strings.ToLower(query)

	candidates := make([]Candidate, 0)
	idx.Each(func(command string, count int) bool {
		if needle == "" || strings.Contains(strings.ToLower(command), needle) {
			candidates = append(candidates, Candidate{Command: command, Count: count})
		}
		return true
	})

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Count != candidates[j].Count {
			return candidates[i].Count > candidates[j].Count
		}
		return candidates[i].Command < candidates[j].Command
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates
}
