package synth

import (
	"testing"
	"time"
)

const testRate = 8000

func drain(t *testing.T, v Voice, limit int) int {
	t.Helper()
	for i := 0; i < limit; i++ {
		s, done := v.Sample()
		if done {
			return i
		}
		if s < -1 || s > 1 {
			t.Fatalf("sample %d out of range: %f", i, s)
		}
	}
	t.Fatalf("voice did not finish within %d samples", limit)
	return 0
}

func TestVoicesFinish(t *testing.T) {
	cases := []struct {
		name string
		fn   VoiceFunc
		want int
	}{
		{"kick", Kick, testRate * 300 / 1000},
		{"snare", Snare, testRate * 200 / 1000},
		{"closed hat", Metal(10 * time.Millisecond), testRate * 50 / 1000},
		{"open hat", Metal(500 * time.Millisecond), testRate * 540 / 1000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := drain(t, tc.fn(testRate), testRate*2)
			if got != tc.want {
				t.Fatalf("expected %d samples, got %d", tc.want, got)
			}
		})
	}
}

type constVoice struct {
	left int
	val  float64
}

func (c *constVoice) Sample() (float64, bool) {
	if c.left == 0 {
		return 0, true
	}
	c.left--
	return c.val, false
}

func sampleAt(buf []byte, i int) int16 {
	return int16(uint16(buf[2*i]) | uint16(buf[2*i+1])<<8)
}

func TestMixerDelaysVoice(t *testing.T) {
	m := NewMixer()
	m.Schedule(&constVoice{left: 2, val: 0.5}, 3)

	buf := make([]byte, 2*8)
	n, err := m.Read(buf)
	if err != nil || n != len(buf) {
		t.Fatalf("Read = %d, %v", n, err)
	}
	for i := 0; i < 3; i++ {
		if sampleAt(buf, i) != 0 {
			t.Fatalf("sample %d should be silent before the voice starts", i)
		}
	}
	if sampleAt(buf, 3) == 0 || sampleAt(buf, 4) == 0 {
		t.Fatal("voice should sound at samples 3 and 4")
	}
	if m.Active() != 0 {
		t.Fatalf("finished voice should be removed, %d left", m.Active())
	}
	if m.Pos() != 8 {
		t.Fatalf("expected position 8, got %d", m.Pos())
	}
}

func TestMixerClamps(t *testing.T) {
	m := NewMixer()
	m.Schedule(&constVoice{left: 1, val: 0.9}, 0)
	m.Schedule(&constVoice{left: 1, val: 0.9}, 0)

	buf := make([]byte, 2)
	m.Read(buf)
	if got := sampleAt(buf, 0); got != 32767 {
		t.Fatalf("expected clamped sample 32767, got %d", got)
	}
}

func TestMixerChokeGroup(t *testing.T) {
	m := NewMixer()
	open := &constVoice{left: 100, val: 0.5}
	m.ScheduleChoke(open, 0, "hihat")
	m.Schedule(&constVoice{left: 100, val: 0.25}, 0)

	buf := make([]byte, 2*4)
	m.Read(buf)
	if m.Active() != 2 {
		t.Fatalf("expected 2 voices, got %d", m.Active())
	}

	m.ScheduleChoke(&constVoice{left: 2, val: 0.5}, 2, "hihat")
	m.Read(buf)
	// the open voice sounds until the closed one starts two samples later
	if open.left != 94 {
		t.Fatalf("open voice rendered %d samples after the first read, want 2", 96-open.left)
	}
	mixed := 0.75
	if got := sampleAt(buf, 2); got != int16(mixed*32767) {
		t.Fatalf("sample 2 should mix closed and ungrouped voices, got %d", got)
	}

	m.Read(buf)
	if m.Active() != 1 {
		t.Fatalf("only the ungrouped voice should remain, got %d", m.Active())
	}
}
