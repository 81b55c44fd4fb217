package chip8

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestTimersTick(t *testing.T) {
	timers := Timers{Delay: 5, Sound: 2}
	assert.True(t, timers.SoundActive())

	for i := 0; i < 5; i++ {
		timers.Tick()
	}

	assert.Equal(t, byte(0), timers.Delay)
	assert.Equal(t, byte(0), timers.Sound)
	assert.False(t, timers.SoundActive())

	// they stop at zero
	timers.Tick()
	assert.Equal(t, byte(0), timers.Delay)
	assert.Equal(t, byte(0), timers.Sound)
}

func TestTimersReset(t *testing.T) {
	timers := Timers{Delay: 9, Sound: 9}
	timers.Reset()

	assert.Equal(t, Timers{}, timers)
}
