package visual

import (
	"strconv"
	"strings"
)

// Filter decides which roof segments' shapes are attached to the map surface.
// A non-empty allow-list decides alone; otherwise the ShowAll flag does.
type Filter struct {
	ShowAll bool
	allowed map[int]bool
}

// NewFilter builds a filter from a show-all flag and an explicit allow-list
// of segment indices
func NewFilter(showAll bool, allowed []int) Filter {
	f := Filter{ShowAll: showAll}
	if len(allowed) > 0 {
		f.allowed = make(map[int]bool, len(allowed))
		for _, idx := range allowed {
			f.allowed[idx] = true
		}
	}
	return f
}

// ParseSegmentFilter parses a comma-separated list of segment indices,
// ignoring unparseable tokens.
func ParseSegmentFilter(raw string) []int {
	var indices []int
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		idx, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		indices = append(indices, idx)
	}
	return indices
}

// Visible reports whether shapes belonging to the given segment index should
// currently be shown
func (f Filter) Visible(segmentIndex int) bool {
	if len(f.allowed) > 0 {
		return f.allowed[segmentIndex]
	}
	return f.ShowAll
}
