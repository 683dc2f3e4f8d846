// Package render converts term bodies from Markdown to sanitized HTML.
package render

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	goldhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/starford/lexicon/internal/metrics"
)

// Renderer turns Markdown into an HTML fragment. It is safe for concurrent
// use.
type Renderer struct {
	md        goldmark.Markdown
	policy    *bluemonday.Policy
	linkClass string
	logger    *slog.Logger
	recorder  metrics.Recorder
}

// New returns a Renderer for page output. Pass WithLinkClass("") for the
// feed variant.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		linkClass: DefaultLinkClass,
		logger:    slog.Default(),
		recorder:  metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}

	nodes := &nodeRenderer{
		linkClass: r.linkClass,
		logger:    r.logger,
		recorder:  r.recorder,
	}
	r.md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(
			goldhtml.WithHardWraps(),
			goldhtml.WithXHTML(),
			// Lower value wins: ahead of the html defaults and the task list
			// checkbox renderer.
			renderer.WithNodeRenderers(util.Prioritized(nodes, 100)),
		),
	)
	r.policy = newPolicy()
	return r
}

// Render converts body to HTML. Errors come only from the underlying writer;
// a code block whose formatter fails is emitted unformatted.
func (r *Renderer) Render(body []byte) (string, error) {
	start := time.Now()
	defer func() { r.recorder.ObserveRenderDuration(time.Since(start)) }()

	var buf bytes.Buffer
	ctx := parser.NewContext(parser.WithIDs(newHeadingIDs()))
	if err := r.md.Convert(body, &buf, parser.WithContext(ctx)); err != nil {
		return "", fmt.Errorf("render: convert: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}
