package render

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var checkboxType = regexp.MustCompile(`^checkbox$`)

// newPolicy allows the markup produced by the node renderers and the GFM
// defaults. Raw HTML written in a document is dropped by the parser and
// anything else that slips through is stripped here.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.RequireNoFollowOnLinks(false)
	p.AllowRelativeURLs(true)

	p.AllowElements(
		"p", "br", "hr", "blockquote", "pre", "code",
		"em", "strong", "del", "sup", "sub",
		"ul", "ol", "li",
		"table", "thead", "tbody", "tr", "th", "td",
		"h1", "h2", "h3", "h4", "h5", "h6",
	)
	p.AllowNoAttrs().OnElements("span", "div")

	p.AllowAttrs("href", "title", "target", "rel").OnElements("a")
	p.AllowAttrs("id").OnElements("a", "h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("src", "alt", "title").OnElements("img")
	p.AllowAttrs("start").OnElements("ol")
	p.AllowAttrs("type").Matching(checkboxType).OnElements("input")
	p.AllowAttrs("disabled", "checked").OnElements("input")
	p.AllowAttrs("align").Matching(bluemonday.CellAlign).OnElements("th", "td")
	p.AllowStyles("text-align").MatchingEnum("left", "center", "right").OnElements("th", "td")
	p.AllowAttrs("class").Globally()
	return p
}
