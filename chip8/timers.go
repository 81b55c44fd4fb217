package chip8

// Timers are the delay and sound countdown registers. Both count down
// once per Tick, which the scheduler calls at 60 Hz.
type Timers struct {
	Delay byte
	Sound byte
}

// Reset stops both timers.
func (t *Timers) Reset() {
	t.Delay = 0
	t.Sound = 0
}

// Tick decrements each nonzero timer by one.
func (t *Timers) Tick() {
	if t.Delay > 0 {
		t.Delay--
	}
	if t.Sound > 0 {
		t.Sound--
	}
}

// SoundActive is true while the tone should be playing.
func (t *Timers) SoundActive() bool {
	return t.Sound > 0
}
