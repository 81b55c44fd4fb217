package chip8

// Presenter shows the display. The scheduler calls it once per timer
// tick; the display must not be retained after Present returns.
type Presenter interface {
	Present(d *Display) error
}

// Input supplies key state. The scheduler samples it once per timer
// tick, before running the CPU. ok is false when nothing changed.
type Input interface {
	Sample() (s KeyState, ok bool)
}

// Audio plays the CHIP-8 tone. The scheduler calls Tone once per timer
// tick with the state of the sound timer.
type Audio interface {
	Tone(on bool)
}

// PresenterFunc adapts a function to the Presenter interface.
type PresenterFunc func(d *Display) error

// Present calls f(d).
func (f PresenterFunc) Present(d *Display) error {
	return f(d)
}

// AudioFunc adapts a function to the Audio interface.
type AudioFunc func(on bool)

// Tone calls f(on).
func (f AudioFunc) Tone(on bool) {
	f(on)
}
