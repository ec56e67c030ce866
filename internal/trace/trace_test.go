package trace

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRecorderCollectsEventsWithoutSink(t *testing.T) {
	r := New("")
	if r.Enabled() {
		t.Fatal("expected recorder without a path to be disabled")
	}
	start := time.Now()
	r.Stage("discover", "ok", start, 5*time.Millisecond)
	events := r.Events()
	if len(events) != 1 || events[0].Stage != "discover" {
		t.Fatalf("expected one discover event, got %+v", events)
	}
}

func TestRecorderWritesJSONLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.jsonl")
	r := New(path)
	if !r.Enabled() {
		t.Fatalf("expected recorder to be enabled, err=%v", r.Err())
	}
	r.File("parse", "a.vhd", "ok", time.Now(), time.Millisecond)
	r.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty trace file")
	}
}

func TestPathFromEnvPrefersExplicit(t *testing.T) {
	t.Setenv("VHDEPS_TRACE_JSONL", "/tmp/env.jsonl")
	if got := PathFromEnv("explicit.jsonl"); got != "explicit.jsonl" {
		t.Fatalf("expected explicit path to win, got %q", got)
	}
	if got := PathFromEnv(""); got != "/tmp/env.jsonl" {
		t.Fatalf("expected env path, got %q", got)
	}
}
