package midi

import (
	"errors"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestEventMessages(t *testing.T) {
	var ch, key, vel uint8

	msgs := Event{Type: NoteOn, Channel: 10, Note: 36, Velocity: 100}.Messages()
	if len(msgs) != 1 || !msgs[0].GetNoteOn(&ch, &key, &vel) {
		t.Fatalf("expected a single note on, got %v", msgs)
	}
	if ch != 9 || key != 36 || vel != 100 {
		t.Fatalf("got channel=%d key=%d vel=%d", ch, key, vel)
	}

	msgs = Event{Type: Trigger, Channel: 1, Note: 42, Velocity: 90}.Messages()
	if len(msgs) != 2 {
		t.Fatalf("trigger should produce note on + note off, got %v", msgs)
	}
	if !msgs[0].GetNoteOn(&ch, &key, &vel) || key != 42 {
		t.Fatalf("first message should be note on 42, got %v", msgs[0])
	}
	if !msgs[1].GetNoteOff(&ch, &key, &vel) || key != 42 {
		t.Fatalf("second message should be note off 42, got %v", msgs[1])
	}
}

func TestEventMessagesRejectsBadChannel(t *testing.T) {
	for _, c := range []uint8{0, 17} {
		if msgs := (Event{Type: NoteOn, Channel: c, Note: 36}).Messages(); msgs != nil {
			t.Fatalf("channel %d should produce no messages, got %v", c, msgs)
		}
	}
}

func TestSendBeforeResume(t *testing.T) {
	p := NewPort("nowhere")
	if p.Ready() {
		t.Fatal("new port should not be ready")
	}
	if err := p.Send(Event{Type: NoteOn, Channel: 1, Note: 36}); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("closing an unopened port should be a no-op, got %v", err)
	}
}

func TestSendRejectsEventWithoutMessages(t *testing.T) {
	var sent []gomidi.Message
	p := NewPort("test")
	p.send = func(msg gomidi.Message) error {
		sent = append(sent, msg)
		return nil
	}

	for _, c := range []uint8{0, 17} {
		err := p.Send(Event{Type: Trigger, Channel: c, Note: 36, Velocity: 100})
		if !errors.Is(err, ErrInvalidEvent) {
			t.Fatalf("channel %d: expected ErrInvalidEvent, got %v", c, err)
		}
	}
	if len(sent) != 0 {
		t.Fatalf("nothing should reach the port, got %v", sent)
	}

	if err := p.Send(Event{Type: Trigger, Channel: 10, Note: 36, Velocity: 100}); err != nil {
		t.Fatal(err)
	}
	if len(sent) != 2 {
		t.Fatalf("expected note on + note off, got %v", sent)
	}
}
