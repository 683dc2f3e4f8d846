// Package metrics defines the observability hooks used by the repository,
// renderer and feed builder.
package metrics

import "time"

// Document load outcomes.
const (
	OutcomeLoaded      = "loaded"
	OutcomeMalformed   = "malformed"
	OutcomeUnpublished = "unpublished"
	OutcomeDuplicate   = "duplicate"
	OutcomeUnreadable  = "unreadable"
)

// Feed build outcomes.
const (
	FeedSuccess = "success"
	FeedFailed  = "failed"
)

// Recorder receives counters and timings. Implementations must be safe for
// concurrent use.
type Recorder interface {
	IncDocument(partition, outcome string)
	IncFormatFallback(lang string)
	ObserveRenderDuration(d time.Duration)
	IncFeedBuild(outcome string)
}

// NoopRecorder discards everything. It is the default when metrics are off.
type NoopRecorder struct{}

func (NoopRecorder) IncDocument(string, string)          {}
func (NoopRecorder) IncFormatFallback(string)            {}
func (NoopRecorder) ObserveRenderDuration(time.Duration) {}
func (NoopRecorder) IncFeedBuild(string)                 {}

// PartitionLabel maps a partition key to a metric label. The primary
// partition has an empty key.
func PartitionLabel(lang string) string {
	if lang == "" {
		return "primary"
	}
	return lang
}
