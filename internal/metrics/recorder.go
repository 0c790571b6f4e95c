package metrics

import "time"

// Outcome labels a resolution or a reload.
type Outcome string

const (
	OutcomeFound    Outcome = "found"
	OutcomeNotFound Outcome = "not_found"
	OutcomeError    Outcome = "error"
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
)

// Recorder defines the observability hooks of resolution and reloads.
type Recorder interface {
	IncResolution(intent string, outcome Outcome)
	ObserveResolveDuration(intent string, d time.Duration)
	ObserveReloadDuration(d time.Duration, outcome Outcome)
	SetGeneration(gen uint64)
	SetContentCounts(entities, posts int)
	IncLiveReloadBroadcast(clients int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not enabled).
type NoopRecorder struct{}

func (NoopRecorder) IncResolution(string, Outcome)                {}
func (NoopRecorder) ObserveResolveDuration(string, time.Duration) {}
func (NoopRecorder) ObserveReloadDuration(time.Duration, Outcome) {}
func (NoopRecorder) SetGeneration(uint64)                         {}
func (NoopRecorder) SetContentCounts(int, int)                    {}
func (NoopRecorder) IncLiveReloadBroadcast(int)                   {}
