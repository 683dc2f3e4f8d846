package render

import (
	"bytes"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/renderer"
	goldhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/starford/lexicon/internal/metrics"
	"github.com/starford/lexicon/internal/render/codefmt"
	"github.com/starford/lexicon/internal/render/highlight"
)

// nodeRenderer overrides the goldmark output for the node kinds it
// registers. Every other kind falls through to the defaults.
type nodeRenderer struct {
	linkClass string
	logger    *slog.Logger
	recorder  metrics.Recorder
}

func (r *nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHeading, r.renderHeading)
	reg.Register(ast.KindLink, r.renderLink)
	reg.Register(ast.KindAutoLink, r.renderAutoLink)
	reg.Register(ast.KindListItem, r.renderListItem)
	reg.Register(extast.KindTaskCheckBox, r.renderTaskCheckBox)
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCode)
}

// <hN><a href="#id" id="id" class="header-link">text</a></hN>
func (r *nodeRenderer) renderHeading(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	level := strconv.Itoa(n.Level)
	if !entering {
		_, _ = w.WriteString("</a></h" + level + ">\n")
		return ast.WalkContinue, nil
	}

	id := headingID(n)
	_, _ = w.WriteString("<h" + level + `><a href="#`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(id, false)))
	_, _ = w.WriteString(`" id="`)
	_, _ = w.Write(util.EscapeHTML(id))
	_, _ = w.WriteString(`" class="header-link">`)
	return ast.WalkContinue, nil
}

func headingID(n ast.Node) []byte {
	v, ok := n.AttributeString("id")
	if !ok {
		return nil
	}
	switch id := v.(type) {
	case []byte:
		return id
	case string:
		return []byte(id)
	}
	return nil
}

func (r *nodeRenderer) renderLink(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Link)
	if !entering {
		_, _ = w.WriteString("</a>")
		return ast.WalkContinue, nil
	}
	r.openAnchor(w, n.Destination, n.Title)
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderAutoLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.AutoLink)
	if !entering {
		return ast.WalkContinue, nil
	}
	url := n.URL(source)
	if n.AutoLinkType == ast.AutoLinkEmail && !bytes.HasPrefix(bytes.ToLower(url), []byte("mailto:")) {
		url = append([]byte("mailto:"), url...)
	}
	r.openAnchor(w, url, nil)
	_, _ = w.Write(util.EscapeHTML(n.Label(source)))
	_, _ = w.WriteString("</a>")
	return ast.WalkContinue, nil
}

// openAnchor writes the opening tag shared by links and autolinks. Every
// link opens in a new tab.
func (r *nodeRenderer) openAnchor(w util.BufWriter, dest, title []byte) {
	_, _ = w.WriteString(`<a href="`)
	if !goldhtml.IsDangerousURL(dest) {
		_, _ = w.Write(util.EscapeHTML(util.URLEscape(dest, true)))
	}
	_ = w.WriteByte('"')
	if len(title) > 0 {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(title))
		_ = w.WriteByte('"')
	}
	_, _ = w.WriteString(` target="_blank" rel="noopener noreferrer"`)
	if r.linkClass != "" {
		_, _ = w.WriteString(` class="`)
		_, _ = w.Write(util.EscapeHTML([]byte(r.linkClass)))
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
}

func (r *nodeRenderer) renderListItem(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	box := taskCheckBox(node)
	if !entering {
		if box != nil {
			_, _ = w.WriteString("</span>")
		}
		_, _ = w.WriteString("</li>\n")
		return ast.WalkContinue, nil
	}

	if box == nil {
		_, _ = w.WriteString("<li>")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<li class="reset"><span class="check">&#8203;<input type="checkbox" disabled`)
	if box.IsChecked {
		_, _ = w.WriteString(" checked")
	}
	_, _ = w.WriteString(" /></span><span>")
	return ast.WalkContinue, nil
}

// taskCheckBox returns the checkbox that opens a task list item, or nil.
func taskCheckBox(item ast.Node) *extast.TaskCheckBox {
	first := item.FirstChild()
	if first == nil {
		return nil
	}
	box, _ := first.FirstChild().(*extast.TaskCheckBox)
	return box
}

// The list item already emitted the checkbox.
func (r *nodeRenderer) renderTaskCheckBox(util.BufWriter, []byte, ast.Node, bool) (ast.WalkStatus, error) {
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderFencedCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var info string
	if n.Info != nil {
		info = string(n.Info.Segment.Value(source))
	}
	var code strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	block := highlight.ParseInfo(info)
	if block.Language == "" {
		_, _ = w.WriteString("<pre><code>")
		_, _ = w.Write(util.EscapeHTML([]byte(code.String())))
		_, _ = w.WriteString("</code></pre>\n")
		return ast.WalkSkipChildren, nil
	}

	text := code.String()
	if !block.Raw {
		text = r.format(block.Language, text)
	}

	_, _ = w.WriteString("<pre>")
	if err := highlight.Write(w, block.Language, text, block.Highlight); err != nil {
		return ast.WalkStop, err
	}
	_, _ = w.WriteString("</pre>\n")
	return ast.WalkSkipChildren, nil
}

// format runs the code formatter and falls back to the input on failure.
func (r *nodeRenderer) format(lang, code string) string {
	out, err := codefmt.Format(lang, code)
	switch {
	case err == nil:
		return out
	case errors.Is(err, codefmt.ErrUnsupported):
		return code
	default:
		r.logger.Debug("code block left unformatted",
			slog.String("lang", lang),
			slog.String("error", err.Error()),
		)
		r.recorder.IncFormatFallback(lang)
		return code
	}
}
