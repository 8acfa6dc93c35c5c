package midi

import (
	"errors"
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-drumseq/debug"
)

var (
	// ErrNotReady is returned by Send before the port has been opened.
	ErrNotReady = errors.New("midi port not open")
	// ErrPortNotFound is returned by Resume when no output matches the name.
	ErrPortNotFound = errors.New("midi output port not found")
	// ErrTimeout is returned when the driver does not list its ports in time.
	ErrTimeout = errors.New("timed out listing midi ports")
	// ErrInvalidEvent is returned by Send for an event with no wire form, such
	// as a channel outside 1-16.
	ErrInvalidEvent = errors.New("invalid midi event")
)

// DefaultScanTimeout bounds port listing (CoreMIDI can hang)
const DefaultScanTimeout = 3 * time.Second

// OutPorts lists output ports, giving up after timeout.
func OutPorts(timeout time.Duration) ([]drivers.Out, error) {
	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- gomidi.GetOutPorts()
	}()

	select {
	case outs := <-ch:
		return outs, nil
	case <-time.After(timeout):
		// User needs to run: sudo killall coreaudiod midiserver
		return nil, ErrTimeout
	}
}

// OutPortNames returns the names of all output ports.
func OutPortNames(timeout time.Duration) ([]string, error) {
	outs, err := OutPorts(timeout)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(outs))
	for i, o := range outs {
		names[i] = o.String()
	}
	return names, nil
}

// Port is a named output port that is opened on first Resume.
type Port struct {
	name    string
	timeout time.Duration

	mu   sync.RWMutex
	out  drivers.Out
	send func(gomidi.Message) error
}

// NewPort returns an unopened port. An empty name selects the first output.
func NewPort(name string) *Port {
	return &Port{name: name, timeout: DefaultScanTimeout}
}

// Name returns the configured port name.
func (p *Port) Name() string { return p.name }

// Resume finds and opens the output port. Calling it again is a no-op.
func (p *Port) Resume() error {
	p.mu.RLock()
	opened := p.send != nil
	p.mu.RUnlock()
	if opened {
		return nil
	}

	outs, err := OutPorts(p.timeout)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring write lock
	if p.send != nil {
		return nil
	}
	for _, out := range outs {
		if p.name != "" && out.String() != p.name {
			continue
		}
		send, err := gomidi.SendTo(out)
		if err != nil {
			return fmt.Errorf("open output %q: %w", out.String(), err)
		}
		p.out = out
		p.send = send
		debug.Log("midi", "opened output port %q", out.String())
		return nil
	}
	return fmt.Errorf("%w: %q", ErrPortNotFound, p.name)
}

// Ready reports whether the port is open.
func (p *Port) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.send != nil
}

// Send writes the event's messages to the port.
func (p *Port) Send(e Event) error {
	p.mu.RLock()
	send := p.send
	p.mu.RUnlock()
	if send == nil {
		return ErrNotReady
	}
	msgs := e.Messages()
	if len(msgs) == 0 {
		return fmt.Errorf("%w: type %d on channel %d", ErrInvalidEvent, e.Type, e.Channel)
	}
	for _, msg := range msgs {
		if err := send(msg); err != nil {
			return fmt.Errorf("send %s: %w", msg, err)
		}
	}
	return nil
}

// Close closes the underlying output.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.out == nil {
		return nil
	}
	err := p.out.Close()
	p.out = nil
	p.send = nil
	return err
}
