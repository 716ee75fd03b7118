// Package metrics provides the observability hooks for conversion runs.
// Components receive a Recorder by injection; the default NoopRecorder
// costs nothing, and a Prometheus-backed implementation activates when the
// metrics endpoint is configured.
package metrics

import "time"

// Outcome enumerates per-entity conversion results.
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeErrored   Outcome = "errored"
)

// Recorder defines the hooks a conversion run reports through. All methods
// must be safe on a NoopRecorder so injection stays optional.
type Recorder interface {
	IncEntity(outcome Outcome)
	IncDocumentWritten()
	IncDiagnostic(severity string)
	ObserveRunDuration(d time.Duration)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) IncEntity(Outcome)                {}
func (NoopRecorder) IncDocumentWritten()              {}
func (NoopRecorder) IncDiagnostic(string)             {}
func (NoopRecorder) ObserveRunDuration(time.Duration) {}
