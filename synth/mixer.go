package synth

import "sync"

// Mixer mixes multiple voices into a single 16-bit little-endian mono PCM
// stream. It implements io.Reader so an audio player can pull from it.
type Mixer struct {
	mu     sync.Mutex
	voices []*voiceState
	pos    int
}

type voiceState struct {
	start int
	cut   int // sample the voice is silenced at, -1 for never
	group string
	v     Voice
}

// NewMixer returns an empty mixer positioned at sample zero.
func NewMixer() *Mixer {
	return &Mixer{}
}

// Schedule adds a voice to start after delaySamples have elapsed.
func (m *Mixer) Schedule(v Voice, delaySamples int) {
	m.ScheduleChoke(v, delaySamples, "")
}

// ScheduleChoke is Schedule with a choke group. When the new voice starts it
// silences every other voice of the same group, the way a closed hi hat cuts
// an open one. An empty group chokes nothing.
func (m *Mixer) ScheduleChoke(v Voice, delaySamples int, group string) {
	if delaySamples < 0 {
		delaySamples = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	start := m.pos + delaySamples
	if group != "" {
		for _, vs := range m.voices {
			if vs.group == group && vs.start < start && (vs.cut < 0 || vs.cut > start) {
				vs.cut = start
			}
		}
	}
	m.voices = append(m.voices, &voiceState{start: start, cut: -1, group: group, v: v})
}

// Active returns how many voices are queued or sounding.
func (m *Mixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// Pos returns the number of samples rendered so far.
func (m *Mixer) Pos() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

// Read implements io.Reader.
func (m *Mixer) Read(p []byte) (int, error) {
	samples := len(p) / 2
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < samples; i++ {
		var sum float64
		for idx := 0; idx < len(m.voices); idx++ {
			vs := m.voices[idx]
			if vs.cut >= 0 && m.pos >= vs.cut {
				m.voices = append(m.voices[:idx], m.voices[idx+1:]...)
				idx--
				continue
			}
			if m.pos < vs.start {
				continue
			}
			val, done := vs.v.Sample()
			sum += val
			if done {
				m.voices = append(m.voices[:idx], m.voices[idx+1:]...)
				idx--
			}
		}
		if sum > 1 {
			sum = 1
		} else if sum < -1 {
			sum = -1
		}
		v := int16(sum * 32767)
		p[2*i] = byte(v)
		p[2*i+1] = byte(v >> 8)
		m.pos++
	}
	return samples * 2, nil
}
