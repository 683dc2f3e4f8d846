// Package highlight parses fenced code info strings and renders code blocks
// as per-line token containers.
package highlight

import (
	"sort"
	"strconv"
	"strings"
)

// MaxLine bounds range expansion in highlight specs.
const MaxLine = 10000

// Info is the parsed info string of a fenced code block.
type Info struct {
	Language  string
	Raw       bool
	Highlight LineSet
}

// LineSet is a set of 1-indexed line numbers.
type LineSet map[int]struct{}

// Has reports whether line n is in the set.
func (s LineSet) Has(n int) bool {
	_, ok := s[n]
	return ok
}

// Sorted returns the line numbers in ascending order.
func (s LineSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// ParseInfo tokenizes an info string such as "js raw highlight=1,3-4".
// The first token is the language; when several highlight directives are
// present the last one wins.
func ParseInfo(info string) Info {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return Info{Highlight: LineSet{}}
	}

	out := Info{Language: fields[0]}
	spec := ""
	for _, f := range fields[1:] {
		switch {
		case f == "raw":
			out.Raw = true
		case strings.HasPrefix(f, "highlight="):
			spec = strings.TrimPrefix(f, "highlight=")
		}
	}
	out.Highlight = ParseSpec(spec)
	return out
}

// ParseSpec expands a comma-separated list of line numbers and inclusive
// ranges ("2,4-6") into a set. Fragments that are not positive integers or
// ascending ranges are ignored.
func ParseSpec(spec string) LineSet {
	set := LineSet{}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		if !isRange {
			hi = lo
		}
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil || start < 1 {
			continue
		}
		end, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil || end < start {
			continue
		}
		end = min(end, MaxLine)
		for n := start; n <= end; n++ {
			set[n] = struct{}{}
		}
	}
	return set
}
