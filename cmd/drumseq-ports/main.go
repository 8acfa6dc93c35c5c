// drumseq-ports lists MIDI output ports and can ping one with a drum note,
// to check the wiring before starting the sequencer.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"go-drumseq/instrument"
	"go-drumseq/midi"
)

func main() {
	var (
		timeout time.Duration
		ping    bool
		port    string
		channel uint8
		kit     string
		inst    string
	)
	pflag.DurationVar(&timeout, "timeout", midi.DefaultScanTimeout, "give up listing ports after this long")
	pflag.BoolVar(&ping, "ping", false, "send one note to --port")
	pflag.StringVarP(&port, "port", "p", "", "output port name (default first port)")
	pflag.Uint8Var(&channel, "channel", 10, "midi channel 1-16")
	pflag.StringVarP(&kit, "kit", "k", instrument.DefaultKit, "kit used to pick the note")
	pflag.StringVarP(&inst, "instrument", "i", instrument.Kick, "instrument to ping")
	pflag.Parse()

	if err := listPorts(timeout); err != nil {
		fail(err)
	}
	if ping {
		if err := pingPort(port, channel, instrument.GetKit(kit), inst); err != nil {
			fail(err)
		}
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if err == midi.ErrTimeout {
		fmt.Fprintln(os.Stderr, "CoreMIDI may be hung. Fix: sudo killall coreaudiod midiserver")
	}
	os.Exit(1)
}

func listPorts(timeout time.Duration) error {
	fmt.Println("=== MIDI Output Ports ===")
	names, err := midi.OutPortNames(timeout)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("  (none)")
	}
	for i, name := range names {
		fmt.Printf("  %d: %s\n", i, name)
	}
	return nil
}

func pingPort(name string, channel uint8, kit instrument.DrumKit, id string) error {
	if channel < 1 || channel > 16 {
		return fmt.Errorf("midi channel %d out of range 1-16", channel)
	}
	note, ok := kit.Note(id)
	if !ok {
		return fmt.Errorf("kit %s has no note for %q", kit.Name, id)
	}

	p := midi.NewPort(name)
	if err := p.Resume(); err != nil {
		return err
	}
	defer p.Close()

	fmt.Printf("\nSending %s (note %d) on channel %d to %q\n", id, note, channel, p.Name())
	return p.Send(midi.Event{Type: midi.Trigger, Channel: channel, Note: note, Velocity: 100})
}
