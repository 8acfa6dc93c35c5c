package sequencer

import "fmt"

// InvalidBeatIndexError is returned for a beat outside [0, BeatsPerLoop).
// It indicates a caller bug; the beat is never clamped or wrapped.
type InvalidBeatIndexError struct {
	Beat         int
	BeatsPerLoop int
}

func (e *InvalidBeatIndexError) Error() string {
	return fmt.Sprintf("beat index %d out of range [0, %d)", e.Beat, e.BeatsPerLoop)
}

// UnknownTrackError is returned for a track index that does not exist.
type UnknownTrackError struct {
	Track int
	Len   int
}

func (e *UnknownTrackError) Error() string {
	return fmt.Sprintf("track %d out of range [0, %d)", e.Track, e.Len)
}

// NotReadyError is returned by Controller.Start when the playback resource
// has not been initialized. The controller stays stopped; the caller can
// resume the resource and retry.
type NotReadyError struct {
	Err error
}

func (e *NotReadyError) Error() string {
	if e.Err == nil {
		return "playback not ready"
	}
	return fmt.Sprintf("playback not ready: %v", e.Err)
}

func (e *NotReadyError) Unwrap() error { return e.Err }
