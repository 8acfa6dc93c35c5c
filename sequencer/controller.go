package sequencer

import (
	"sync"
	"time"

	"go-drumseq/debug"
	"go-drumseq/instrument"
)

// Clock is the transport the controller drives. transport.Transport
// implements it. After Stop, Schedule or Clear returns, no callback from the
// superseded installation may run.
type Clock interface {
	Ready() bool
	Start() error
	Stop()
	SetLoop(start, end int, enabled bool)
	Schedule(beats []int, fire func(i int, at time.Time))
	Clear()
	Position() int
}

// State is the playback state.
type State int

const (
	Stopped State = iota
	Playing
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "STOP"
	case Playing:
		return "PLAY"
	}
	return "UNKNOWN"
}

// Controller owns playback: the loop lifecycle and the one live schedule.
type Controller struct {
	clock        Clock
	registry     *instrument.Registry
	beatsPerLoop int

	mu       sync.Mutex
	state    State
	schedule Schedule

	// OnTriggerError, if set, is told about every failed trigger. It runs on
	// the clock's dispatch goroutine and must not call back into the clock.
	OnTriggerError func(err error)
}

// NewController creates a stopped controller with an empty schedule.
func NewController(clock Clock, reg *instrument.Registry, beatsPerLoop int) *Controller {
	c := &Controller{
		clock:        clock,
		registry:     reg,
		beatsPerLoop: beatsPerLoop,
	}
	clock.SetLoop(0, beatsPerLoop, true)
	return c
}

// Start begins looping from beat zero. If the playback resource is not ready
// it returns *NotReadyError and the controller stays stopped.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Playing {
		return nil
	}
	if !c.clock.Ready() {
		return &NotReadyError{}
	}
	c.clock.SetLoop(0, c.beatsPerLoop, true)
	if err := c.clock.Start(); err != nil {
		return &NotReadyError{Err: err}
	}
	c.state = Playing
	debug.Log("playback", "playing %d events", len(c.schedule))
	return nil
}

// Stop halts the loop; pending events of this pass are dropped.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Stopped {
		return
	}
	c.clock.Stop()
	c.state = Stopped
	debug.Log("playback", "stopped")
}

// Toggle starts a stopped controller and stops a playing one.
func (c *Controller) Toggle() error {
	if c.State() == Playing {
		c.Stop()
		return nil
	}
	return c.Start()
}

// OnTracksChanged rebuilds the schedule from tracks and swaps it in. Events
// that already fired this pass stay fired; pending ones of the old schedule
// are cancelled.
func (c *Controller) OnTracksChanged(tracks Tracks) {
	sched := BuildSchedule(tracks)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.schedule = sched
	if len(sched) == 0 {
		c.clock.Clear()
		return
	}
	c.clock.Schedule(sched.Beats(), func(i int, at time.Time) {
		c.fire(sched[i], at)
	})
}

func (c *Controller) fire(ev ScheduledEvent, at time.Time) {
	debug.LogEvery(32, "dispatch", "beat=%d instrument=%s", ev.Beat, ev.Instrument.ID())
	if err := c.registry.Trigger(ev.Instrument, at); err != nil && c.OnTriggerError != nil {
		c.OnTriggerError(err)
	}
}

// State returns the playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Schedule returns the live schedule.
func (c *Controller) Schedule() Schedule {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.schedule
}

// Position returns the beat last dispatched, or -1 when stopped.
func (c *Controller) Position() int {
	if c.State() != Playing {
		return -1
	}
	return c.clock.Position()
}

// BeatsPerLoop returns the loop length in beats.
func (c *Controller) BeatsPerLoop() int { return c.beatsPerLoop }
