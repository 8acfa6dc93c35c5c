// Package transport is the loop clock. It advances musical time in whole
// beats, dispatching the installed part's events as their beats come due.
package transport

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-drumseq/debug"
)

// ErrNotReady is returned by Start while the playback resource has not been
// resumed.
var ErrNotReady = errors.New("playback resource not ready")

// Resource is the output the clock drives, e.g. the audio context or a MIDI
// port. It must be resumed, usually after a user gesture, before playback.
type Resource interface {
	Resume() error
	Ready() bool
}

// Tempo limits
const (
	MinTempo     = 20
	MaxTempo     = 300
	DefaultTempo = 120
)

const defaultResolution = 2 * time.Millisecond

// part is one installed schedule: the beat of every event, and the callback
// that fires event i.
type part struct {
	beats []int
	fire  func(i int, at time.Time)
}

// Transport is the clock. Callbacks run on whichever goroutine calls Tick,
// with the transport locked; they must not call back into the transport.
type Transport struct {
	res        Resource
	now        func() time.Time
	resolution time.Duration
	lookahead  time.Duration

	mu          sync.Mutex
	tempo       int
	loopStart   int
	loopEnd     int
	loopEnabled bool
	playing     bool
	t0          time.Time // wall time of step zero
	next        int64     // next absolute step to dispatch
	part        *part
}

// Option configures a Transport.
type Option func(*Transport)

// WithTempo sets the initial tempo in beats per minute.
func WithTempo(bpm int) Option {
	return func(t *Transport) { t.tempo = clampTempo(bpm) }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Transport) { t.now = now }
}

// WithResolution sets how often Run polls for due steps.
func WithResolution(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.resolution = d
		}
	}
}

// WithLookahead dispatches steps up to d before they are due. Callbacks still
// get the step's own time, so an output that can schedule ahead (the synth
// mixer) starts the sound on time instead of at the next poll.
func WithLookahead(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.lookahead = d
		}
	}
}

// New creates a stopped transport with a one-beat loop. res may be nil when
// nothing needs resuming.
func New(res Resource, opts ...Option) *Transport {
	t := &Transport{
		res:         res,
		now:         time.Now,
		resolution:  defaultResolution,
		tempo:       DefaultTempo,
		loopEnd:     1,
		loopEnabled: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func clampTempo(bpm int) int {
	if bpm < MinTempo {
		return MinTempo
	}
	if bpm > MaxTempo {
		return MaxTempo
	}
	return bpm
}

// Resume initializes the playback resource.
func (t *Transport) Resume() error {
	if t.res == nil {
		return nil
	}
	return t.res.Resume()
}

// Ready reports whether the playback resource can be used.
func (t *Transport) Ready() bool {
	return t.res == nil || t.res.Ready()
}

// SetLoop sets the loop bounds in beats. With looping disabled playback stops
// after end.
func (t *Transport) SetLoop(start, end int, enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if start < 0 {
		start = 0
	}
	if end <= start {
		end = start + 1
	}
	t.loopStart, t.loopEnd, t.loopEnabled = start, end, enabled
}

// Loop returns the loop bounds.
func (t *Transport) Loop() (start, end int, enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loopStart, t.loopEnd, t.loopEnabled
}

// Start begins playback from the loop start. It is a no-op while playing.
func (t *Transport) Start() error {
	if !t.Ready() {
		return ErrNotReady
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.playing {
		return nil
	}
	t.playing = true
	t.t0 = t.now()
	t.next = 0
	debug.Log("transport", "start tempo=%d loop=[%d,%d) enabled=%v", t.tempo, t.loopStart, t.loopEnd, t.loopEnabled)
	t.dispatch()
	return nil
}

// Stop halts playback. Nothing fires after Stop returns.
func (t *Transport) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.playing {
		return
	}
	t.playing = false
	debug.Log("transport", "stop at step %d", t.next)
}

// Playing reports whether the clock is running.
func (t *Transport) Playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playing
}

// Schedule installs a part, replacing the previous one. Events whose beat
// already passed in the current loop pass wait for the next pass; events of
// the replaced part never fire once Schedule returns.
func (t *Transport) Schedule(beats []int, fire func(i int, at time.Time)) {
	p := &part{beats: append([]int(nil), beats...), fire: fire}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.part = p
	debug.Log("transport", "installed part with %d events", len(p.beats))
}

// Clear removes the installed part.
func (t *Transport) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.part = nil
}

// SetTempo changes the tempo. While playing, the next step keeps its wall
// time so the change does not skip or repeat beats.
func (t *Transport) SetTempo(bpm int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	bpm = clampTempo(bpm)
	if bpm == t.tempo {
		return
	}
	if t.playing {
		due := t.stepTime(t.next)
		t.tempo = bpm
		t.t0 = due.Add(-time.Duration(t.next) * t.stepDur())
		return
	}
	t.tempo = bpm
}

// Tempo returns the tempo in beats per minute.
func (t *Transport) Tempo() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tempo
}

// Position returns the beat most recently dispatched, or -1 when stopped.
func (t *Transport) Position() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.playing || t.next == 0 {
		return -1
	}
	beat, _ := t.beatAt(t.next - 1)
	return beat
}

// Tick dispatches every step that has come due.
func (t *Transport) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dispatch()
}

// Run drives Tick until ctx is done.
func (t *Transport) Run(ctx context.Context) {
	ticker := time.NewTicker(t.resolution)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-ticker.C:
			t.Tick()
		}
	}
}

func (t *Transport) stepDur() time.Duration {
	return time.Minute / time.Duration(t.tempo)
}

func (t *Transport) stepTime(step int64) time.Time {
	return t.t0.Add(time.Duration(step) * t.stepDur())
}

// beatAt maps an absolute step to a beat in the loop. ok is false once a
// non-looping transport runs past the end.
func (t *Transport) beatAt(step int64) (beat int, ok bool) {
	span := int64(t.loopEnd - t.loopStart)
	if t.loopEnabled {
		return t.loopStart + int(step%span), true
	}
	if step >= span {
		return t.loopEnd - 1, false
	}
	return t.loopStart + int(step), true
}

// dispatch expects mu to be held.
func (t *Transport) dispatch() {
	if !t.playing {
		return
	}
	now := t.now()
	horizon := now.Add(t.lookahead)
	dur := t.stepDur()
	for {
		at := t.stepTime(t.next)
		if at.After(horizon) {
			return
		}
		beat, ok := t.beatAt(t.next)
		if !ok {
			t.playing = false
			debug.Log("transport", "reached loop end, stopping")
			return
		}
		if now.Sub(at) >= dur {
			// more than a step behind, the sound would be audibly late
			debug.LogEvery(16, "transport", "skipped late step %d (beat %d)", t.next, beat)
			t.next++
			continue
		}
		if p := t.part; p != nil {
			for i, b := range p.beats {
				if b == beat {
					p.fire(i, at)
				}
			}
		}
		t.next++
	}
}
