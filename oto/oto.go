// Package oto plays synth voices on the system audio device.
package oto

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"go-drumseq/debug"
	"go-drumseq/synth"
)

// ErrNotReady is returned by PlayVoice before Resume has succeeded.
var ErrNotReady = errors.New("audio output not resumed")

const (
	DefaultSampleRate = 44100
	bufferSize10ms    = DefaultSampleRate / 100 * 2 // 10ms of 16-bit mono audio
)

// Output owns the audio context and the mixer feeding it. The context is
// created lazily by Resume, which stands in for the user gesture browsers
// require before audio may start.
type Output struct {
	sampleRate int

	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
	mix    *synth.Mixer
}

// NewOutput creates an output; nothing touches the audio device until Resume.
func NewOutput(sampleRate int) *Output {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Output{sampleRate: sampleRate, mix: synth.NewMixer()}
}

// Resume creates the audio context on first use and resumes it afterwards.
func (o *Output) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ctx != nil {
		if err := o.ctx.Resume(); err != nil {
			return fmt.Errorf("cannot resume audio context: %w", err)
		}
		return nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   o.sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready

	p := ctx.NewPlayer(o.mix)
	p.SetBufferSize(bufferSize10ms)
	p.Play()

	o.ctx = ctx
	o.player = p
	debug.Log("audio", "oto context ready at %d Hz", o.sampleRate)
	return nil
}

// Ready reports whether Resume has succeeded.
func (o *Output) Ready() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ctx != nil
}

// PlayVoice renders a new voice from fn starting at the given time. A zero
// time plays immediately. A voice in a non-empty choke group cuts the
// previous voices of that group when it starts.
func (o *Output) PlayVoice(fn synth.VoiceFunc, group string, at time.Time) error {
	o.mu.Lock()
	ctx := o.ctx
	o.mu.Unlock()
	if ctx == nil {
		return ErrNotReady
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("audio context failed: %w", err)
	}
	delay := 0
	if !at.IsZero() {
		if d := time.Until(at); d > 0 {
			delay = int(d.Seconds() * float64(o.sampleRate))
		}
	}
	o.mix.ScheduleChoke(fn(o.sampleRate), delay, group)
	return nil
}

// Close suspends the context and disposes of the player.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ctx == nil {
		return nil
	}
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	if err := o.ctx.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}
