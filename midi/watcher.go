package midi

import (
	"context"
	"slices"
	"sync"
	"time"

	"go-drumseq/debug"
)

// PortEvent is emitted when an output port appears or goes away
type PortEvent struct {
	Type PortEventType
	Name string
}

type PortEventType int

const (
	PortConnected PortEventType = iota
	PortDisconnected
)

func (t PortEventType) String() string {
	if t == PortConnected {
		return "connected"
	}
	return "disconnected"
}

// Watcher polls the output port list for hot-plug changes
type Watcher struct {
	mu       sync.RWMutex
	seen     map[string]bool
	events   chan PortEvent
	pollRate time.Duration
	list     func() ([]string, error)
}

// NewWatcher creates a watcher that scans once a second
func NewWatcher() *Watcher {
	return &Watcher{
		seen:     make(map[string]bool),
		events:   make(chan PortEvent, 16),
		pollRate: time.Second,
		list:     func() ([]string, error) { return OutPortNames(DefaultScanTimeout) },
	}
}

// Events returns a channel of port connect/disconnect events. It is closed
// when Run returns.
func (w *Watcher) Events() <-chan PortEvent {
	return w.events
}

// Present reports whether name was in the last scan
func (w *Watcher) Present(name string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.seen[name]
}

// Run starts the polling loop (blocking - run in goroutine)
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollRate)
	defer ticker.Stop()
	defer close(w.events)

	w.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *Watcher) scan(ctx context.Context) {
	names, err := w.list()
	if err != nil {
		// CoreMIDI is hung - skip this scan
		debug.LogEvery(10, "midi", "port scan failed: %v", err)
		return
	}

	now := make(map[string]bool, len(names))
	for _, n := range names {
		now[n] = true
	}

	w.mu.Lock()
	var changes []PortEvent
	for _, n := range names {
		if !w.seen[n] {
			changes = append(changes, PortEvent{Type: PortConnected, Name: n})
		}
	}
	var gone []string
	for n := range w.seen {
		if !now[n] {
			gone = append(gone, n)
		}
	}
	slices.Sort(gone)
	for _, n := range gone {
		changes = append(changes, PortEvent{Type: PortDisconnected, Name: n})
	}
	w.seen = now
	w.mu.Unlock()

	for _, ev := range changes {
		debug.Log("midi", "port %s %s", ev.Name, ev.Type)
		select {
		case w.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}
