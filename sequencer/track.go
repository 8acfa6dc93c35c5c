package sequencer

import (
	"errors"
	"slices"

	"go-drumseq/instrument"
)

// Track pairs an instrument with the beats it plays on. Active beats are kept
// ascending and unique. A Track is never modified after construction.
type Track struct {
	inst  instrument.Instrument
	beats []int
}

// Instrument returns the track's instrument.
func (t Track) Instrument() instrument.Instrument { return t.inst }

// ActiveBeats returns a copy of the active beats in ascending order.
func (t Track) ActiveBeats() []int { return slices.Clone(t.beats) }

// IsActive reports whether beat is active.
func (t Track) IsActive(beat int) bool {
	_, found := slices.BinarySearch(t.beats, beat)
	return found
}

// Tracks is the immutable track set: one track per registry instrument, in
// declaration order. Edits return a new Tracks and leave the receiver alone,
// so readers holding an older value never see a partial update.
type Tracks struct {
	beatsPerLoop int
	tracks       []Track
}

// NewTracks creates an empty track for every instrument in reg.
func NewTracks(reg *instrument.Registry, beatsPerLoop int) (Tracks, error) {
	if beatsPerLoop < 1 {
		return Tracks{}, errors.New("beats per loop must be at least 1")
	}
	insts := reg.Instruments()
	ts := Tracks{beatsPerLoop: beatsPerLoop, tracks: make([]Track, len(insts))}
	for i, inst := range insts {
		ts.tracks[i] = Track{inst: inst}
	}
	return ts, nil
}

// BeatsPerLoop returns the loop length in beats.
func (ts Tracks) BeatsPerLoop() int { return ts.beatsPerLoop }

// Len returns the number of tracks.
func (ts Tracks) Len() int { return len(ts.tracks) }

// At returns track i. It panics if i is out of range, like a slice index.
func (ts Tracks) At(i int) Track { return ts.tracks[i] }

// All returns the tracks in declaration order.
func (ts Tracks) All() []Track { return slices.Clone(ts.tracks) }

// Index returns the position of the track playing instrument id.
func (ts Tracks) Index(id string) (int, bool) {
	for i, t := range ts.tracks {
		if t.inst.ID() == id {
			return i, true
		}
	}
	return -1, false
}

func (ts Tracks) checkTrack(track int) error {
	if track < 0 || track >= len(ts.tracks) {
		return &UnknownTrackError{Track: track, Len: len(ts.tracks)}
	}
	return nil
}

func (ts Tracks) checkBeat(beat int) error {
	if beat < 0 || beat >= ts.beatsPerLoop {
		return &InvalidBeatIndexError{Beat: beat, BeatsPerLoop: ts.beatsPerLoop}
	}
	return nil
}

// with returns a copy of ts whose track i has the given beats.
func (ts Tracks) with(i int, beats []int) Tracks {
	if len(beats) == 0 {
		beats = nil
	}
	next := Tracks{beatsPerLoop: ts.beatsPerLoop, tracks: slices.Clone(ts.tracks)}
	next.tracks[i] = Track{inst: ts.tracks[i].inst, beats: beats}
	return next
}

// ToggleBeat removes beat from track if it is active and adds it otherwise.
func (ts Tracks) ToggleBeat(track, beat int) (Tracks, error) {
	if err := ts.checkTrack(track); err != nil {
		return ts, err
	}
	if err := ts.checkBeat(beat); err != nil {
		return ts, err
	}
	beats := slices.Clone(ts.tracks[track].beats)
	if pos, found := slices.BinarySearch(beats, beat); found {
		beats = slices.Delete(beats, pos, pos+1)
	} else {
		beats = slices.Insert(beats, pos, beat)
	}
	return ts.with(track, beats), nil
}

// ClearTrack deactivates every beat of track.
func (ts Tracks) ClearTrack(track int) (Tracks, error) {
	if err := ts.checkTrack(track); err != nil {
		return ts, err
	}
	return ts.with(track, nil), nil
}

// WithBeats replaces the active beats of track. Duplicates collapse.
func (ts Tracks) WithBeats(track int, beats ...int) (Tracks, error) {
	if err := ts.checkTrack(track); err != nil {
		return ts, err
	}
	for _, b := range beats {
		if err := ts.checkBeat(b); err != nil {
			return ts, err
		}
	}
	sorted := slices.Clone(beats)
	slices.Sort(sorted)
	return ts.with(track, slices.Compact(sorted)), nil
}
