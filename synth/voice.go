// Package synth renders the drum sounds as PCM and mixes them into a single
// stream for an audio output to pull from.
package synth

import (
	"math"
	"math/rand"
	"time"
)

// Voice generates PCM samples in the range [-1,1].
type Voice interface {
	// Sample returns the next sample and whether the voice has finished.
	Sample() (float64, bool)
}

// VoiceFunc builds a fresh voice for the given sample rate. Every trigger
// needs its own voice since voices are stateful.
type VoiceFunc func(sampleRate int) Voice

func samplesFor(d time.Duration, sampleRate int) int {
	n := int(math.Round(float64(sampleRate) * d.Seconds()))
	if n < 1 {
		n = 1
	}
	return n
}

// Kick is a sine with a downward pitch bend, loosely a membrane synth at C0.
func Kick(sampleRate int) Voice {
	return &kickVoice{n: samplesFor(300*time.Millisecond, sampleRate), sr: float64(sampleRate)}
}

type kickVoice struct {
	i, n  int
	sr    float64
	phase float64
}

func (k *kickVoice) Sample() (float64, bool) {
	if k.i >= k.n {
		return 0, true
	}
	t := float64(k.i) / float64(k.n)
	freq := 40 + 110*math.Exp(-12*t)
	k.phase += 2 * math.Pi * freq / k.sr
	env := math.Exp(-5 * t)
	k.i++
	return math.Sin(k.phase) * env, false
}

// Snare is a short burst of white noise.
func Snare(sampleRate int) Voice {
	return &noiseVoice{n: samplesFor(200*time.Millisecond, sampleRate), decay: 8}
}

type noiseVoice struct {
	i, n  int
	decay float64
}

func (s *noiseVoice) Sample() (float64, bool) {
	if s.i >= s.n {
		return 0, true
	}
	env := math.Exp(-s.decay * float64(s.i) / float64(s.n))
	s.i++
	return (rand.Float64()*2 - 1) * env * 0.7, false
}

// metalRatios are the inharmonic partials of a cymbal-ish metal synth.
var metalRatios = [...]float64{1, 1.483, 1.932, 2.546, 2.630, 3.897}

// Metal returns a VoiceFunc for a metallic hit that rings for length. The
// open and closed hi hats use it with different lengths.
func Metal(length time.Duration) VoiceFunc {
	return func(sampleRate int) Voice {
		// release tail so very short hits are still audible
		n := samplesFor(length+40*time.Millisecond, sampleRate)
		return &metalVoice{
			n:    n,
			hold: samplesFor(length, sampleRate),
			sr:   float64(sampleRate),
			base: 1046.5, // C6
		}
	}
}

type metalVoice struct {
	i, n, hold int
	sr, base   float64
	phases     [len(metalRatios)]float64
}

func (m *metalVoice) Sample() (float64, bool) {
	if m.i >= m.n {
		return 0, true
	}
	var sum float64
	for p, r := range metalRatios {
		m.phases[p] += m.base * r / m.sr
		m.phases[p] -= math.Floor(m.phases[p])
		if m.phases[p] < 0.5 {
			sum++
		} else {
			sum--
		}
	}
	sum /= float64(len(metalRatios))

	var env float64
	if m.i < m.hold {
		env = math.Exp(-3 * float64(m.i) / float64(m.hold))
	} else {
		tail := float64(m.i-m.hold) / float64(m.n-m.hold)
		env = math.Exp(-3) * (1 - tail)
	}
	m.i++
	return sum * env * 0.3, false
}
