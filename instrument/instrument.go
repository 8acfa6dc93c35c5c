// Package instrument holds the fixed catalog of sounds a drum track can
// trigger, and the error isolation around each trigger.
package instrument

import (
	"fmt"
	"time"
)

// Instrument is a named sound. Trigger must not touch sequencer state; it
// only produces output. A zero at means "now".
type Instrument interface {
	ID() string
	Trigger(at time.Time) error
}

// TriggerError reports a single failed trigger. It is isolated to the event
// that caused it.
type TriggerError struct {
	Instrument string
	Err        error
}

func (e *TriggerError) Error() string {
	return fmt.Sprintf("instrument %q: trigger failed: %v", e.Instrument, e.Err)
}

func (e *TriggerError) Unwrap() error { return e.Err }

// Func adapts a plain function to an Instrument. Use it by pointer so
// registry identity checks stay comparable.
type Func struct {
	Name string
	Fn   func(at time.Time) error
}

func (f *Func) ID() string { return f.Name }

func (f *Func) Trigger(at time.Time) error {
	if f.Fn == nil {
		return nil
	}
	return f.Fn(at)
}
