package sequencer

import (
	"errors"
	"reflect"
	"testing"

	"go-drumseq/instrument"
)

func testRegistry(t *testing.T, ids ...string) *instrument.Registry {
	t.Helper()
	insts := make([]instrument.Instrument, len(ids))
	for i, id := range ids {
		insts[i] = &instrument.Func{Name: id}
	}
	reg, err := instrument.NewRegistry(insts...)
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func testTracks(t *testing.T, beatsPerLoop int, ids ...string) Tracks {
	t.Helper()
	ts, err := NewTracks(testRegistry(t, ids...), beatsPerLoop)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func TestNewTracksOnePerInstrument(t *testing.T) {
	ts := testTracks(t, 8, "kick", "snare", "hat")
	if ts.Len() != 3 || ts.BeatsPerLoop() != 8 {
		t.Fatalf("got %d tracks of %d beats", ts.Len(), ts.BeatsPerLoop())
	}
	for i, id := range []string{"kick", "snare", "hat"} {
		tr := ts.At(i)
		if tr.Instrument().ID() != id || len(tr.ActiveBeats()) != 0 {
			t.Fatalf("track %d: %s with beats %v", i, tr.Instrument().ID(), tr.ActiveBeats())
		}
	}
	if _, err := NewTracks(testRegistry(t, "kick"), 0); err == nil {
		t.Fatal("expected error for zero beats per loop")
	}
}

func TestToggleBeatIsItsOwnInverse(t *testing.T) {
	base := testTracks(t, 8, "kick", "snare")
	base, _ = base.WithBeats(0, 0, 4)
	for track := 0; track < base.Len(); track++ {
		for beat := 0; beat < base.BeatsPerLoop(); beat++ {
			once, err := base.ToggleBeat(track, beat)
			if err != nil {
				t.Fatal(err)
			}
			twice, err := once.ToggleBeat(track, beat)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(twice.At(track).ActiveBeats(), base.At(track).ActiveBeats()) {
				t.Fatalf("track %d beat %d: %v after two toggles, want %v",
					track, beat, twice.At(track).ActiveBeats(), base.At(track).ActiveBeats())
			}
		}
	}
}

func TestToggleEmptyHiHatTwice(t *testing.T) {
	ts := testTracks(t, 8, "kick", "snare", "hihat")
	once, _ := ts.ToggleBeat(2, 3)
	if !once.At(2).IsActive(3) {
		t.Fatal("beat 3 should be active after one toggle")
	}
	twice, _ := once.ToggleBeat(2, 3)
	if got := twice.At(2).ActiveBeats(); len(got) != 0 {
		t.Fatalf("expected empty set, got %v", got)
	}
}

func TestToggleKeepsBeatsSorted(t *testing.T) {
	ts := testTracks(t, 8, "kick")
	for _, b := range []int{6, 1, 4, 0} {
		ts, _ = ts.ToggleBeat(0, b)
	}
	if got := ts.At(0).ActiveBeats(); !reflect.DeepEqual(got, []int{0, 1, 4, 6}) {
		t.Fatalf("expected ascending beats, got %v", got)
	}
}

func TestToggleDoesNotMutateReceiver(t *testing.T) {
	before := testTracks(t, 8, "kick", "snare")
	before, _ = before.WithBeats(0, 2)
	after, _ := before.ToggleBeat(0, 5)

	if got := before.At(0).ActiveBeats(); !reflect.DeepEqual(got, []int{2}) {
		t.Fatalf("receiver changed: %v", got)
	}
	if got := after.At(0).ActiveBeats(); !reflect.DeepEqual(got, []int{2, 5}) {
		t.Fatalf("unexpected result %v", got)
	}

	// copies handed out must not alias internal state either
	beats := after.At(0).ActiveBeats()
	beats[0] = 7
	if after.At(0).IsActive(7) {
		t.Fatal("ActiveBeats returned internal storage")
	}
}

func TestToggleRejectsOutOfRangeBeat(t *testing.T) {
	ts := testTracks(t, 8, "kick")
	for _, beat := range []int{-1, 8, 100} {
		got, err := ts.ToggleBeat(0, beat)
		var ierr *InvalidBeatIndexError
		if !errors.As(err, &ierr) {
			t.Fatalf("beat %d: expected InvalidBeatIndexError, got %v", beat, err)
		}
		if ierr.Beat != beat || ierr.BeatsPerLoop != 8 {
			t.Fatalf("unexpected error fields %+v", ierr)
		}
		if len(got.At(0).ActiveBeats()) != 0 {
			t.Fatalf("beat %d was clamped into %v", beat, got.At(0).ActiveBeats())
		}
	}
}

func TestToggleRejectsUnknownTrack(t *testing.T) {
	ts := testTracks(t, 8, "kick")
	_, err := ts.ToggleBeat(1, 0)
	var uerr *UnknownTrackError
	if !errors.As(err, &uerr) || uerr.Track != 1 || uerr.Len != 1 {
		t.Fatalf("expected UnknownTrackError, got %v", err)
	}
}

func TestWithBeatsAndClear(t *testing.T) {
	ts := testTracks(t, 8, "kick", "snare")
	ts, err := ts.WithBeats(1, 6, 2, 6, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := ts.At(1).ActiveBeats(); !reflect.DeepEqual(got, []int{0, 2, 6}) {
		t.Fatalf("expected deduplicated ascending beats, got %v", got)
	}
	if _, err := ts.WithBeats(0, 8); err == nil {
		t.Fatal("expected error for beat 8")
	}
	ts, _ = ts.ClearTrack(1)
	if len(ts.At(1).ActiveBeats()) != 0 {
		t.Fatal("track should be empty after clear")
	}
}

func TestIndexByInstrument(t *testing.T) {
	ts := testTracks(t, 8, "kick", "snare")
	if i, ok := ts.Index("snare"); !ok || i != 1 {
		t.Fatalf("expected snare at 1, got %d %v", i, ok)
	}
	if _, ok := ts.Index("cowbell"); ok {
		t.Fatal("unexpected cowbell")
	}
}
