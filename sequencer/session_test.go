package sequencer

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"go-drumseq/transport"
)

func TestSessionKeepsScheduleInSyncWithTracks(t *testing.T) {
	reg := testRegistry(t, "kick", "snare")
	ctrl := NewController(transport.New(nil), reg, 8)
	tracks, _ := NewTracks(reg, 8)
	s := NewSession(tracks, ctrl)

	for _, edit := range [][2]int{{0, 0}, {1, 2}, {0, 4}, {1, 6}, {0, 4}} {
		if err := s.OnBeatToggled(edit[0], edit[1]); err != nil {
			t.Fatal(err)
		}
		if got, want := flatten(ctrl.Schedule()), flatten(BuildSchedule(s.Tracks())); !reflect.DeepEqual(got, want) {
			t.Fatalf("after %v: controller has %v, tracks give %v", edit, got, want)
		}
	}
	want := []beatOf{{0, "kick"}, {2, "snare"}, {6, "snare"}}
	if got := flatten(ctrl.Schedule()); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if err := s.ClearTrack(1); err != nil {
		t.Fatal(err)
	}
	if got := flatten(ctrl.Schedule()); !reflect.DeepEqual(got, []beatOf{{0, "kick"}}) {
		t.Fatalf("unexpected schedule after clear: %v", got)
	}
}

func TestSessionRejectsBadEdits(t *testing.T) {
	reg := testRegistry(t, "kick")
	ctrl := NewController(transport.New(nil), reg, 4)
	tracks, _ := NewTracks(reg, 4)
	s := NewSession(tracks, ctrl)
	s.OnBeatToggled(0, 1)

	var ierr *InvalidBeatIndexError
	if err := s.OnBeatToggled(0, 4); !errors.As(err, &ierr) {
		t.Fatalf("expected InvalidBeatIndexError, got %v", err)
	}
	var uerr *UnknownTrackError
	if err := s.ClearTrack(3); !errors.As(err, &uerr) {
		t.Fatalf("expected UnknownTrackError, got %v", err)
	}
	if got := s.Tracks().At(0).ActiveBeats(); !reflect.DeepEqual(got, []int{1}) {
		t.Fatalf("rejected edits changed the tracks: %v", got)
	}
}

func TestSessionSerializesConcurrentToggles(t *testing.T) {
	reg := testRegistry(t, "kick", "snare", "hat", "clap")
	ctrl := NewController(transport.New(nil), reg, 16)
	tracks, _ := NewTracks(reg, 16)
	s := NewSession(tracks, ctrl)

	// every beat on every track is toggled by exactly one goroutine; a lost
	// update would leave a beat off
	var wg sync.WaitGroup
	for track := 0; track < 4; track++ {
		for beat := 0; beat < 16; beat++ {
			wg.Add(1)
			go func(track, beat int) {
				defer wg.Done()
				if err := s.OnBeatToggled(track, beat); err != nil {
					t.Error(err)
				}
			}(track, beat)
		}
	}
	wg.Wait()

	for i, tr := range s.Tracks().All() {
		if got := len(tr.ActiveBeats()); got != 16 {
			t.Fatalf("track %d has %d active beats, want 16", i, got)
		}
	}
	if got := len(ctrl.Schedule()); got != 64 {
		t.Fatalf("expected 64 scheduled events, got %d", got)
	}
	if got, want := flatten(ctrl.Schedule()), flatten(BuildSchedule(s.Tracks())); !reflect.DeepEqual(got, want) {
		t.Fatal("installed schedule lags the final tracks")
	}
}
