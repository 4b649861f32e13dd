package devserver

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDelaySinceClampsNegativeToZero(t *testing.T) {
	earlier := Frame{AtMillis: 100}
	later := Frame{AtMillis: 50}
	if d := later.DelaySince(earlier); d != 0 {
		t.Fatalf("expected clamped delay of 0, got %v", d)
	}
}

func TestDelaySinceComputesMillisecondGap(t *testing.T) {
	a := Frame{AtMillis: 0}
	b := Frame{AtMillis: 250}
	if d := b.DelaySince(a); d != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", d)
	}
}

func TestLoadTraceParsesFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.json")
	if err := os.WriteFile(path, []byte(`[{"atMillis":0,"payload":{"a":1}},{"atMillis":10,"payload":{"a":2}}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	frames, err := LoadTrace(path)
	if err != nil {
		t.Fatalf("LoadTrace: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
}

func TestLoadTraceMissingFile(t *testing.T) {
	if _, err := LoadTrace(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected an error for a missing trace file")
	}
}
