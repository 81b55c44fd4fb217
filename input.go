package main

import (
	"github.com/massung/chip8vm/chip8"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

// speedStep is how much [ and ] change the CPU rate.
const speedStep = 60

var (
	// KeyMap maps a modern keyboard to the CHIP-8 keys.
	KeyMap = map[sdl.Scancode]uint{
		sdl.SCANCODE_X: 0x0,
		sdl.SCANCODE_1: 0x1,
		sdl.SCANCODE_2: 0x2,
		sdl.SCANCODE_3: 0x3,
		sdl.SCANCODE_Q: 0x4,
		sdl.SCANCODE_W: 0x5,
		sdl.SCANCODE_E: 0x6,
		sdl.SCANCODE_A: 0x7,
		sdl.SCANCODE_S: 0x8,
		sdl.SCANCODE_D: 0x9,
		sdl.SCANCODE_Z: 0xA,
		sdl.SCANCODE_C: 0xB,
		sdl.SCANCODE_4: 0xC,
		sdl.SCANCODE_R: 0xD,
		sdl.SCANCODE_F: 0xE,
		sdl.SCANCODE_V: 0xF,
	}
)

// Keyboard collects SDL key events into a key snapshot and handles the
// emulator control keys.
type Keyboard struct {
	logger *log.Logger
	sched  *chip8.Scheduler

	keys    chip8.KeyState
	changed bool

	// err is the fault hit while single stepping
	err error
}

// NewKeyboard returns a keyboard with no keys held.
func NewKeyboard(logger *log.Logger) *Keyboard {
	return &Keyboard{logger: logger}
}

// Sample returns the keys held, and whether they changed since the last
// sample.
func (k *Keyboard) Sample() (chip8.KeyState, bool) {
	changed := k.changed
	k.changed = false

	return k.keys, changed
}

// Err returns the fault that stopped event processing, if any.
func (k *Keyboard) Err() error {
	return k.err
}

// ProcessEvents drains the SDL event queue. It returns false once the
// emulator should quit.
func (k *Keyboard) ProcessEvents() bool {
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch ev := e.(type) {
		case *sdl.QuitEvent:
			return false
		case *sdl.KeyboardEvent:
			if key, ok := KeyMap[ev.Keysym.Scancode]; ok {
				k.keys[key] = ev.Type == sdl.KEYDOWN
				k.changed = true
				continue
			}

			if ev.Type != sdl.KEYDOWN || ev.Repeat != 0 {
				continue
			}

			if !k.control(ev.Keysym) {
				return false
			}
		}
	}

	return true
}

// control handles an emulator key. It returns false to quit, or when a
// single step faults.
func (k *Keyboard) control(sym sdl.Keysym) bool {
	if k.sched == nil {
		return sym.Scancode != sdl.SCANCODE_ESCAPE
	}

	switch sym.Scancode {
	case sdl.SCANCODE_ESCAPE:
		return false
	case sdl.SCANCODE_BACKSPACE:
		k.sched.Reset()

		// holding control during reset will reboot paused
		if sym.Mod&sdl.KMOD_CTRL != 0 {
			k.sched.Pause()
		}
	case sdl.SCANCODE_H, sdl.SCANCODE_F1:
		logHelp(k.logger)
	case sdl.SCANCODE_LEFTBRACKET:
		k.sched.SetSpeed(k.sched.Speed() - speedStep)
	case sdl.SCANCODE_RIGHTBRACKET:
		k.sched.SetSpeed(k.sched.Speed() + speedStep)
	case sdl.SCANCODE_F5, sdl.SCANCODE_SPACE:
		if k.sched.Paused() {
			k.sched.Resume()
		} else {
			k.sched.Pause()
		}
	case sdl.SCANCODE_F6, sdl.SCANCODE_F10:
		if k.sched.Paused() {
			if err := k.sched.StepOnce(); err != nil {
				k.err = err
				return false
			}
			logState(k.logger, k.sched.VM())
		}
	case sdl.SCANCODE_F8:
		if k.sched.Paused() {
			logState(k.logger, k.sched.VM())
		}
	case sdl.SCANCODE_F9:
		if k.sched.Paused() {
			k.sched.ToggleBreakpoint()
		}
	}

	return true
}
