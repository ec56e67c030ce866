// Package trace records per-stage and per-file timing as JSON-lines events,
// adapted from internal/indexer/timing.go's timingRecorder — same event
// shape and enable-by-env-var convention, generalized from "lint pipeline
// phases" to "discover/parse/index/resolve/order stages".
package trace

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// Event is one recorded span.
type Event struct {
	Stage      string  `json:"stage"`
	Kind       string  `json:"kind"` // "stage" or "file"
	File       string  `json:"file,omitempty"`
	Status     string  `json:"status,omitempty"`
	StartMS    float64 `json:"start_ms"`
	DurationMS float64 `json:"duration_ms"`
	EndMS      float64 `json:"end_ms"`
}

// Recorder writes events to an optional JSON-lines sink.
type Recorder struct {
	start   time.Time
	mu      sync.Mutex
	events  []Event
	file    *os.File
	enc     *json.Encoder
	enabled bool
	err     error
}

// New creates a recorder. If path is empty, the recorder stays disabled and
// every call becomes a no-op — callers never need to branch on whether
// tracing was requested.
func New(path string) *Recorder {
	r := &Recorder{start: time.Now()}
	if path == "" {
		return r
	}
	f, err := os.Create(path)
	if err != nil {
		r.err = err
		return r
	}
	r.enabled = true
	r.file = f
	r.enc = json.NewEncoder(f)
	return r
}

// PathFromEnv resolves the trace sink path: an explicit path wins, then
// $VHDEPS_TRACE_JSONL.
func PathFromEnv(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return os.Getenv("VHDEPS_TRACE_JSONL")
}

func (r *Recorder) Enabled() bool { return r != nil && r.enabled }
func (r *Recorder) Err() error {
	if r == nil {
		return nil
	}
	return r.err
}

func (r *Recorder) Close() {
	if r == nil || r.file == nil {
		return
	}
	_ = r.file.Close()
}

func (r *Recorder) record(stage, kind, file, status string, start time.Time, duration time.Duration) {
	if r == nil {
		return
	}
	startMS := msOf(start.Sub(r.start))
	durationMS := msOf(duration)
	event := Event{
		Stage:      stage,
		Kind:       kind,
		File:       file,
		Status:     status,
		StartMS:    startMS,
		DurationMS: durationMS,
		EndMS:      startMS + durationMS,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if r.enc != nil {
		_ = r.enc.Encode(event)
	}
}

// Stage records one pipeline stage's wall-clock span.
func (r *Recorder) Stage(stage, status string, start time.Time, duration time.Duration) {
	r.record(stage, "stage", "", status, start, duration)
}

// File records one file's per-file work within a stage (parsing, typically).
func (r *Recorder) File(stage, file, status string, start time.Time, duration time.Duration) {
	r.record(stage, "file", file, status, start, duration)
}

// Events returns every recorded event, regardless of whether a sink file
// was configured — useful for tests and for callers that want an in-memory
// summary without writing to disk.
func (r *Recorder) Events() []Event {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func msOf(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1_000_000.0
}
