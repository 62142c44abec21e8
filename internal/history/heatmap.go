// Package history tracks completed practice counts per calendar day.
package history

import (
	"sort"
	"time"
)

// DateFormat is the key format for heatmap entries.
const DateFormat = "2006-01-02"

// Heatmap maps ISO dates (YYYY-MM-DD) to completed practice counts.
// Entries only ever grow; completions append, nothing rewrites.
type Heatmap struct {
	Counts map[string]int `json:"counts"`
}

// New returns an empty heatmap.
func New() *Heatmap {
	return &Heatmap{Counts: make(map[string]int)}
}

// Add records count completions on the given day.
func (h *Heatmap) Add(day time.Time, count int) {
	if count <= 0 {
		return
	}
	if h.Counts == nil {
		h.Counts = make(map[string]int)
	}
	h.Counts[day.Format(DateFormat)] += count
}

// Count returns the completions recorded on day.
func (h *Heatmap) Count(day time.Time) int {
	return h.Counts[day.Format(DateFormat)]
}

// Total returns the sum of all entries.
func (h *Heatmap) Total() int {
	total := 0
	for _, c := range h.Counts {
		total += c
	}
	return total
}

// Dates returns the recorded dates in ascending order.
func (h *Heatmap) Dates() []string {
	out := make([]string, 0, len(h.Counts))
	for d := range h.Counts {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Level buckets a day's count into intensity levels 0-4 for display.
func Level(count int) int {
	switch {
	case count == 0:
		return 0
	case count <= 2:
		return 1
	case count <= 5:
		return 2
	case count <= 10:
		return 3
	default:
		return 4
	}
}
