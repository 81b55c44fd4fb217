package main

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

// Tone settings.
const (
	sampleRate = 22050
	toneHz     = 440

	// samples queued ahead while the tone plays
	toneLead = sampleRate / 20
)

// Tone plays a square wave on an SDL audio device while the sound timer
// is running.
type Tone struct {
	dev sdl.AudioDeviceID

	// position within the wave period, carried between queues
	phase int
	on    bool
}

// NewTone opens the default audio device for 8-bit mono output.
func NewTone() (*Tone, error) {
	spec := sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  512,
	}

	dev, err := sdl.OpenAudioDevice("", false, &spec, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}

	// start playing, the queue is empty until the tone is on
	sdl.PauseAudioDevice(dev, false)

	return &Tone{dev: dev}, nil
}

// Tone turns the square wave on or off. It is called once per frame.
func (t *Tone) Tone(on bool) {
	if !on {
		if t.on {
			sdl.ClearQueuedAudio(t.dev)
			t.on = false
		}
		return
	}

	t.on = true

	// keep the queue topped up without running far ahead
	queued := int(sdl.GetQueuedAudioSize(t.dev))
	if queued >= toneLead {
		return
	}

	samples := make([]byte, toneLead-queued)
	period := sampleRate / toneHz

	for i := range samples {
		if t.phase < period/2 {
			samples[i] = 0xC0
		} else {
			samples[i] = 0x40
		}

		t.phase = (t.phase + 1) % period
	}

	_ = sdl.QueueAudio(t.dev, samples)
}

// Close stops and closes the audio device.
func (t *Tone) Close() {
	sdl.ClearQueuedAudio(t.dev)
	sdl.CloseAudioDevice(t.dev)
}
