package render

import (
	"log/slog"

	"github.com/starford/lexicon/internal/metrics"
)

// DefaultLinkClass is the class added to links in page output.
const DefaultLinkClass = "underline"

// Option configures a Renderer.
type Option func(*Renderer)

// WithLinkClass sets the class added to every link. An empty class omits the
// attribute, which is what feed output uses.
func WithLinkClass(class string) Option {
	return func(r *Renderer) { r.linkClass = class }
}

// WithLogger sets the logger used for formatter fallbacks.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Renderer) {
		if rec != nil {
			r.recorder = rec
		}
	}
}
