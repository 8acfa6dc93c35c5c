package instrument

import (
	"fmt"
	"time"

	"go-drumseq/midi"
	"go-drumseq/synth"
)

// Catalog ids, in the order tracks are declared.
const (
	Kick        = "kick"
	Snare       = "snare"
	HiHatOpen   = "hihat-open"
	HiHatClosed = "hihat-closed"
)

// CatalogIDs lists the built-in instruments in declaration order.
var CatalogIDs = []string{Kick, Snare, HiHatOpen, HiHatClosed}

// VoicePlayer renders synth voices at a scheduled time. A voice with a
// non-empty group cuts the sounding voices of the same group. oto.Output is
// the real one.
type VoicePlayer interface {
	PlayVoice(fn synth.VoiceFunc, group string, at time.Time) error
}

// NoteSender delivers MIDI events. midi.Port is the real one.
type NoteSender interface {
	Send(e midi.Event) error
}

// Synth triggers a synthesized voice.
type Synth struct {
	id    string
	voice synth.VoiceFunc
	group string
	out   VoicePlayer
}

// NewSynth returns an instrument that plays voice on out.
func NewSynth(id string, voice synth.VoiceFunc, out VoicePlayer) *Synth {
	return &Synth{id: id, voice: voice, out: out}
}

// Choke puts s in a choke group and returns it.
func (s *Synth) Choke(group string) *Synth {
	s.group = group
	return s
}

func (s *Synth) ID() string { return s.id }

func (s *Synth) Trigger(at time.Time) error {
	return s.out.PlayVoice(s.voice, s.group, at)
}

// MIDI triggers a note on an external device.
type MIDI struct {
	id       string
	channel  uint8
	note     uint8
	velocity uint8
	out      NoteSender
}

// NewMIDI returns an instrument that sends note on channel (1-16).
func NewMIDI(id string, channel, note uint8, out NoteSender) *MIDI {
	return &MIDI{id: id, channel: channel, note: note, velocity: 100, out: out}
}

func (m *MIDI) ID() string { return m.id }

// Note returns the MIDI note this instrument plays.
func (m *MIDI) Note() uint8 { return m.note }

// Trigger sends the note right away; the transport already waited for at.
func (m *MIDI) Trigger(at time.Time) error {
	return m.out.Send(midi.Event{
		Type:     midi.Trigger,
		Channel:  m.channel,
		Note:     m.note,
		Velocity: m.velocity,
	})
}

// SynthVoices maps the catalog to its synth voices. The open and closed hi
// hats use the same metal voice and differ only in length.
func SynthVoices() map[string]synth.VoiceFunc {
	return map[string]synth.VoiceFunc{
		Kick:        synth.Kick,
		Snare:       synth.Snare,
		HiHatOpen:   synth.Metal(500 * time.Millisecond),
		HiHatClosed: synth.Metal(10 * time.Millisecond),
	}
}

// ChokeGroups maps catalog ids to their choke group. Both hi hats are one
// group so a closed hat silences a ringing open hat.
var ChokeGroups = map[string]string{
	HiHatOpen:   "hihat",
	HiHatClosed: "hihat",
}

// NewSynthRegistry builds the catalog on a synth output.
func NewSynthRegistry(out VoicePlayer) (*Registry, error) {
	voices := SynthVoices()
	insts := make([]Instrument, 0, len(CatalogIDs))
	for _, id := range CatalogIDs {
		insts = append(insts, NewSynth(id, voices[id], out).Choke(ChokeGroups[id]))
	}
	return NewRegistry(insts...)
}

// NewMIDIRegistry builds the catalog on a MIDI output using kit's notes.
func NewMIDIRegistry(out NoteSender, channel uint8, kit DrumKit) (*Registry, error) {
	if channel < 1 || channel > 16 {
		return nil, fmt.Errorf("midi channel %d out of range 1-16", channel)
	}
	insts := make([]Instrument, 0, len(CatalogIDs))
	for _, id := range CatalogIDs {
		note, ok := kit.Note(id)
		if !ok {
			return nil, fmt.Errorf("kit %q has no note for %q", kit.Name, id)
		}
		insts = append(insts, NewMIDI(id, channel, note, out))
	}
	return NewRegistry(insts...)
}
