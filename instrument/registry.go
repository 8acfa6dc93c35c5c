package instrument

import (
	"errors"
	"fmt"
	"time"

	"go-drumseq/debug"
)

var errNilInstrument = errors.New("nil instrument")

// Registry is the catalog of instruments, fixed once built. It is shared
// read-only by everything downstream.
type Registry struct {
	order []Instrument
	byID  map[string]Instrument
}

// NewRegistry builds a registry. Order is kept as declared; ids must be
// unique and non-empty.
func NewRegistry(insts ...Instrument) (*Registry, error) {
	r := &Registry{byID: make(map[string]Instrument, len(insts))}
	for _, inst := range insts {
		if inst == nil {
			return nil, errNilInstrument
		}
		id := inst.ID()
		if id == "" {
			return nil, errors.New("instrument with empty id")
		}
		if _, exists := r.byID[id]; exists {
			return nil, fmt.Errorf("duplicate instrument id %q", id)
		}
		r.byID[id] = inst
		r.order = append(r.order, inst)
	}
	return r, nil
}

// Len returns the number of instruments.
func (r *Registry) Len() int { return len(r.order) }

// Instruments returns the instruments in declaration order.
func (r *Registry) Instruments() []Instrument {
	return append([]Instrument(nil), r.order...)
}

// IDs returns the instrument ids in declaration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	for i, inst := range r.order {
		ids[i] = inst.ID()
	}
	return ids
}

// Lookup finds an instrument by id.
func (r *Registry) Lookup(id string) (Instrument, bool) {
	inst, ok := r.byID[id]
	return inst, ok
}

// Contains reports whether inst is the registered instrument for its id.
func (r *Registry) Contains(inst Instrument) bool {
	if inst == nil {
		return false
	}
	got, ok := r.byID[inst.ID()]
	return ok && got == inst
}

// Trigger fires inst at the given time. Failures, including panics, come back
// as *TriggerError and never escape further.
func (r *Registry) Trigger(inst Instrument, at time.Time) (err error) {
	id := "?"
	defer func() {
		if p := recover(); p != nil {
			err = &TriggerError{Instrument: id, Err: fmt.Errorf("panic: %v", p)}
		}
		if err != nil {
			debug.Log("trigger", "%v", err)
		}
	}()
	if inst == nil {
		return &TriggerError{Instrument: id, Err: errNilInstrument}
	}
	id = inst.ID()
	if terr := inst.Trigger(at); terr != nil {
		return &TriggerError{Instrument: id, Err: terr}
	}
	return nil
}
