package index

// Index maps distinct command text to its occurrence count. It is built
// once and never mutated; every count is at least 1.
type Index struct {
	counts map[string]int
	total  int
}

// Build counts occurrences of each command. Empty strings are ignored.
func Build(commands []string) *Index {
	counts := make(map[string]int, len(commands))
	total := 0
	for _, cmd := range commands {
		if cmd == "" {
			continue
		}
		counts[cmd]++
		total++
	}
	return &Index{counts: counts, total: total}
}

// Len returns the number of distinct commands
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.counts)
}

// Total returns the number of command lines the index was built from
func (idx *Index) Total() int {
	if idx == nil {
		return 0
	}
	return idx.total
}

// Each calls fn for every entry in unspecified order. Iteration stops
// when fn returns false.
func (idx *Index) Each(fn func(command string, count int) bool) {
	if idx == nil {
		return
	}
	for cmd, count := range idx.counts {
		if !fn(cmd, count) {
			return
		}
	}
}
