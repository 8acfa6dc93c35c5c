package midi

import gomidi "gitlab.com/gomidi/midi/v2"

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
	Trigger uint8 = 0x01 // note on immediately followed by note off
)

// Event is a note event headed for an output port
type Event struct {
	Type     uint8 // NoteOn, NoteOff, Trigger
	Channel  uint8 // 1-16
	Note     uint8
	Velocity uint8
}

// Messages converts the event into wire messages. Unknown types and channels
// outside 1-16 yield nil.
func (e Event) Messages() []gomidi.Message {
	if e.Channel < 1 || e.Channel > 16 {
		return nil
	}
	ch := e.Channel - 1
	switch e.Type {
	case NoteOn:
		return []gomidi.Message{gomidi.NoteOn(ch, e.Note, e.Velocity)}
	case NoteOff:
		return []gomidi.Message{gomidi.NoteOff(ch, e.Note)}
	case Trigger:
		return []gomidi.Message{
			gomidi.NoteOn(ch, e.Note, e.Velocity),
			gomidi.NoteOff(ch, e.Note),
		}
	}
	return nil
}
