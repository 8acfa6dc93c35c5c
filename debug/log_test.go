package debug

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogDisabledWritesNothing(t *testing.T) {
	Disable()
	var buf bytes.Buffer
	Log("test", "hello %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
	if Enabled() {
		t.Fatal("expected logging to be disabled")
	}
}

func TestLogWritesCategoryAndMessage(t *testing.T) {
	var buf bytes.Buffer
	EnableTo(&buf)
	defer Disable()

	Log("transport", "step %d", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected start banner and one line, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "transport") || !strings.HasSuffix(lines[1], "step 3") {
		t.Fatalf("unexpected log line %q", lines[1])
	}
}

func TestLogEveryThrottles(t *testing.T) {
	var buf bytes.Buffer
	EnableTo(&buf)
	defer Disable()

	for i := 0; i < 10; i++ {
		LogEvery(4, "dispatch", "fired")
	}

	got := strings.Count(buf.String(), "fired (every 4")
	if got != 2 {
		t.Fatalf("expected 2 throttled lines, got %d:\n%s", got, buf.String())
	}
}
