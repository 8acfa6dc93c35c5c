package sequencer

import (
	"slices"

	"go-drumseq/instrument"
)

// ScheduledEvent is one trigger in a loop pass.
type ScheduledEvent struct {
	Beat       int
	Instrument instrument.Instrument
}

// Schedule is the trigger list for one loop pass: tracks in declaration
// order, beats ascending within a track. It is not sorted by beat across
// tracks; events sharing a beat fire at the same time.
type Schedule []ScheduledEvent

// BuildSchedule flattens tracks into a Schedule. Identical input always
// gives an identical, identically ordered result.
func BuildSchedule(tracks Tracks) Schedule {
	var sched Schedule
	for _, t := range tracks.tracks {
		beats := slices.Clone(t.beats)
		slices.Sort(beats)
		for _, b := range beats {
			sched = append(sched, ScheduledEvent{Beat: b, Instrument: t.inst})
		}
	}
	return sched
}

// Beats returns the beat of every event, in schedule order.
func (s Schedule) Beats() []int {
	beats := make([]int, len(s))
	for i, ev := range s {
		beats[i] = ev.Beat
	}
	return beats
}
