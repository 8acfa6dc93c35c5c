package sequencer

import (
	"sync"

	"go-drumseq/debug"
)

// Session funnels grid edits into the track set one at a time and hands
// every new set to the controller. It is the only writer of the tracks.
type Session struct {
	mu     sync.Mutex
	tracks Tracks
	ctrl   *Controller
}

// NewSession installs tracks on ctrl and returns a session editing them.
func NewSession(tracks Tracks, ctrl *Controller) *Session {
	ctrl.OnTracksChanged(tracks)
	return &Session{tracks: tracks, ctrl: ctrl}
}

// Tracks returns the current track set.
func (s *Session) Tracks() Tracks {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracks
}

// OnBeatToggled toggles beat on track and reinstalls the schedule.
func (s *Session) OnBeatToggled(track, beat int) error {
	return s.apply(func(ts Tracks) (Tracks, error) { return ts.ToggleBeat(track, beat) })
}

// ClearTrack deactivates every beat on track.
func (s *Session) ClearTrack(track int) error {
	return s.apply(func(ts Tracks) (Tracks, error) { return ts.ClearTrack(track) })
}

// apply holds the lock across the controller swap so schedules are
// installed in the same order as the edits that produced them.
func (s *Session) apply(edit func(Tracks) (Tracks, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := edit(s.tracks)
	if err != nil {
		debug.Log("session", "edit rejected: %v", err)
		return err
	}
	s.tracks = next
	s.ctrl.OnTracksChanged(next)
	return nil
}
