package render

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
)

// Slugify lowercases s, drops punctuation and turns each whitespace rune
// into a hyphen.
func Slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r), r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte('-')
		}
	}
	return b.String()
}

// headingIDs hands out unique heading ids within one document. A repeated
// slug gets a numeric suffix: x, x-1, x-2.
type headingIDs struct {
	used   map[string]struct{}
	counts map[string]int
}

var _ parser.IDs = (*headingIDs)(nil)

func newHeadingIDs() *headingIDs {
	return &headingIDs{used: map[string]struct{}{}, counts: map[string]int{}}
}

func (h *headingIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	base := Slugify(string(value))
	if base == "" {
		base = "heading"
	}
	id := base
	for n := h.counts[base]; ; n++ {
		if n > 0 {
			id = base + "-" + strconv.Itoa(n)
		}
		if _, taken := h.used[id]; !taken {
			h.counts[base] = n + 1
			break
		}
	}
	h.used[id] = struct{}{}
	return []byte(id)
}

func (h *headingIDs) Put(value []byte) {
	h.used[string(value)] = struct{}{}
}
