package widgets

import (
	"errors"
	"strings"
	"testing"

	"go-drumseq/instrument"
	"go-drumseq/sequencer"
	"go-drumseq/transport"
)

func newTestGrid(t *testing.T, beats int) (*Grid, *sequencer.Session) {
	t.Helper()
	reg, err := instrument.NewRegistry(
		&instrument.Func{Name: "kick"},
		&instrument.Func{Name: "snare"},
	)
	if err != nil {
		t.Fatal(err)
	}
	tracks, err := sequencer.NewTracks(reg, beats)
	if err != nil {
		t.Fatal(err)
	}
	s := sequencer.NewSession(tracks, sequencer.NewController(transport.New(nil), reg, beats))
	return NewGrid(s.Tracks, s.OnBeatToggled, nil), s
}

func press(t *testing.T, g *Grid, keys ...string) {
	t.Helper()
	for _, k := range keys {
		if err := g.HandleKey(k); err != nil {
			t.Fatalf("key %q: %v", k, err)
		}
	}
}

func TestGridCursorStaysInBounds(t *testing.T) {
	g, _ := newTestGrid(t, 4)
	press(t, g, "h", "k", "up", "left")
	if tr, b := g.Cursor(); tr != 0 || b != 0 {
		t.Fatalf("cursor moved past the top left: %d,%d", tr, b)
	}
	press(t, g, "l", "l", "l", "l", "right", "j", "j", "down")
	if tr, b := g.Cursor(); tr != 1 || b != 3 {
		t.Fatalf("expected cursor at 1,3, got %d,%d", tr, b)
	}
}

func TestGridToggleGoesThroughSession(t *testing.T) {
	g, s := newTestGrid(t, 8)
	press(t, g, "l", "l", " ", "j", "enter", "enter")

	if !s.Tracks().At(0).IsActive(2) {
		t.Fatal("space should toggle kick beat 2")
	}
	if s.Tracks().At(1).IsActive(2) {
		t.Fatal("enter twice should leave snare beat 2 off")
	}
}

func TestGridReportsRejectedToggle(t *testing.T) {
	g, _ := newTestGrid(t, 8)
	boom := errors.New("boom")
	g.OnBeatToggled = func(track, beat int) error { return boom }
	if err := g.HandleKey(" "); !errors.Is(err, boom) {
		t.Fatalf("expected toggle error, got %v", err)
	}
	if err := g.HandleKey("x"); err != nil {
		t.Fatalf("unknown keys are ignored, got %v", err)
	}
}

func TestGridView(t *testing.T) {
	g, s := newTestGrid(t, 4)
	s.OnBeatToggled(0, 1)
	s.OnBeatToggled(1, 3)
	g.SetPlayhead(2)

	lines := strings.Split(strings.TrimRight(g.View(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 tracks, got %d lines:\n%s", len(lines), g.View())
	}
	if !strings.Contains(lines[1], "kick") || !strings.Contains(lines[2], "snare") {
		t.Fatalf("track labels missing:\n%s", g.View())
	}
	// cursor on kick beat 0, kick beat 1 on, playhead on beat 2
	for _, want := range []string{"○", "●", "▶"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("kick row %q missing %q", lines[1], want)
		}
	}
	if strings.Count(lines[2], "●") != 1 {
		t.Errorf("snare row %q should have one active beat", lines[2])
	}

	g.SetPlayhead(-1)
	if strings.Contains(g.View(), "▶") {
		t.Error("playhead should be hidden")
	}
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{GridKeys})
	if !strings.HasPrefix(out, "grid\n") || !strings.Contains(out, "space") {
		t.Fatalf("unexpected help:\n%s", out)
	}
}
