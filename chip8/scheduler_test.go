package chip8

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// newBufferLogger returns a logger writing text records to buf. Faults are
// logged at error level, which fails tests using a test logger.
func newBufferLogger(buf *bytes.Buffer) *log.Logger {
	return log.NewWithConfig(log.Config{
		Handler: slog.NewTextHandler(buf, nil),
	})
}

// loop is a program that counts in V0 forever.
var loop = []uint16{0x7001, 0x1200}

func TestSchedulerFrame(t *testing.T) {
	vm := newTestVM(t, Quirks{}, loop...)

	presented, tones := 0, 0
	sched := NewScheduler(log.NewTestLogger(t), vm, DefaultConfig(),
		WithPresenter(PresenterFunc(func(d *Display) error {
			presented++
			return nil
		})),
		WithAudio(AudioFunc(func(on bool) {
			tones++
		})))

	assert.NoError(t, sched.Frame())

	// 480 Hz over 60 Hz is 8 steps
	assert.Equal(t, int64(8), vm.Cycles)
	assert.Equal(t, byte(4), vm.V[0])
	assert.Equal(t, 1, presented)
	assert.Equal(t, 1, tones)
	assert.Equal(t, int64(1), sched.Frames)
}

func TestSchedulerFractionalSteps(t *testing.T) {
	vm := newTestVM(t, Quirks{}, loop...)
	sched := NewScheduler(log.NewTestLogger(t), vm, Config{CPUHz: 500, TimerHz: 60})

	for i := 0; i < 6; i++ {
		assert.NoError(t, sched.Frame())
	}

	// 500/60 steps per frame, 50 in 6 frames
	assert.Equal(t, int64(50), vm.Cycles)
}

func TestSchedulerTimers(t *testing.T) {
	// ST = DT = 3, then spin
	vm := newTestVM(t, Quirks{}, 0x6003, 0xF015, 0xF018, 0x1206)

	var tones []bool
	sched := NewScheduler(log.NewTestLogger(t), vm, DefaultConfig(),
		WithAudio(AudioFunc(func(on bool) {
			tones = append(tones, on)
		})))

	for i := 0; i < 4; i++ {
		assert.NoError(t, sched.Frame())
	}

	assert.Equal(t, []bool{true, true, false, false}, tones)
	assert.Equal(t, byte(0), vm.Timers.Delay)
}

func TestSchedulerInput(t *testing.T) {
	// wait for a key into V5
	vm := newTestVM(t, Quirks{}, 0xF50A, 0x1202)

	feed := NewKeyFeed(4)
	sched := NewScheduler(log.NewTestLogger(t), vm, DefaultConfig(), WithInput(feed))

	assert.NoError(t, sched.Frame())
	assert.Equal(t, AwaitingKey, vm.Mode)

	feed.Send(KeyState{0x9: true})
	assert.NoError(t, sched.Frame())

	assert.Equal(t, Running, vm.Mode)
	assert.Equal(t, byte(0x9), vm.V[5])
	assert.True(t, vm.Keys.Pressed(0x9))

	// no new snapshot keeps the last one
	assert.NoError(t, sched.Frame())
	assert.True(t, vm.Keys.Pressed(0x9))
}

func TestSchedulerPause(t *testing.T) {
	vm := newTestVM(t, Quirks{}, 0x6003, 0xF015, 0x7001, 0x1204)

	presented := 0
	sched := NewScheduler(log.NewTestLogger(t), vm, DefaultConfig(),
		WithPresenter(PresenterFunc(func(d *Display) error {
			presented++
			return nil
		})))

	sched.Pause()
	assert.True(t, sched.Paused())

	assert.NoError(t, sched.Frame())
	assert.Equal(t, int64(0), vm.Cycles)
	assert.Equal(t, 1, presented)

	assert.NoError(t, sched.StepOnce())
	assert.NoError(t, sched.StepOnce())
	assert.Equal(t, int64(2), vm.Cycles)
	assert.Equal(t, byte(3), vm.Timers.Delay)

	// the timers only run with the CPU
	assert.NoError(t, sched.Frame())
	assert.Equal(t, byte(3), vm.Timers.Delay)

	sched.Resume()
	assert.NoError(t, sched.Frame())
	assert.Equal(t, int64(10), vm.Cycles)
	assert.Equal(t, byte(2), vm.Timers.Delay)

	// stepping only works while paused
	assert.NoError(t, sched.StepOnce())
	assert.Equal(t, int64(10), vm.Cycles)
}

func TestSchedulerBreakpoint(t *testing.T) {
	vm := newTestVM(t, Quirks{}, 0x6001, 0x6102, 0x6203, 0x1206)
	sched := NewScheduler(log.NewTestLogger(t), vm, DefaultConfig())

	sched.SetBreakpoint(0x204, "third")

	assert.NoError(t, sched.Frame())
	assert.True(t, sched.Paused())
	assert.Equal(t, uint16(0x204), vm.PC)
	assert.Equal(t, int64(2), vm.Cycles)

	reason, ok := sched.Breakpoint(0x204)
	assert.True(t, ok)
	assert.Equal(t, "third", reason)

	// resuming runs past the breakpoint
	sched.Resume()
	assert.NoError(t, sched.Frame())
	assert.False(t, sched.Paused())
	assert.Equal(t, byte(3), vm.V[2])

	sched.ClearBreakpoint(0x204)
	_, ok = sched.Breakpoint(0x204)
	assert.False(t, ok)
}

func TestSchedulerToggleBreakpoint(t *testing.T) {
	vm := newTestVM(t, Quirks{}, loop...)
	sched := NewScheduler(log.NewTestLogger(t), vm, DefaultConfig())

	sched.ToggleBreakpoint()
	_, ok := sched.Breakpoint(ProgramStart)
	assert.True(t, ok)

	sched.ToggleBreakpoint()
	_, ok = sched.Breakpoint(ProgramStart)
	assert.False(t, ok)
}

func TestSchedulerFault(t *testing.T) {
	vm := newTestVM(t, Quirks{}, 0x6001, 0x00EE)

	var logs bytes.Buffer
	presented := 0
	sched := NewScheduler(newBufferLogger(&logs), vm, DefaultConfig(), WithTrace(4),
		WithPresenter(PresenterFunc(func(d *Display) error {
			presented++
			return nil
		})))

	err := sched.Frame()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.Equal(t, Halted, vm.Mode)
	assert.True(t, sched.Paused())
	assert.Equal(t, 0, presented)

	lines := sched.Trace().Lines()
	assert.Equal(t, []string{"0200 - LD     V0, #01", "0202 - RET"}, lines)

	out := logs.String()
	assert.True(t, strings.Contains(out, `msg="Emulation halted"`))
	assert.True(t, strings.Contains(out, "pc=#0202"))
	assert.True(t, strings.Contains(out, "opcode=#00EE"))
}

func TestSchedulerSpeed(t *testing.T) {
	vm := newTestVM(t, Quirks{}, loop...)
	sched := NewScheduler(log.NewTestLogger(t), vm, Config{})

	assert.Equal(t, DefaultConfig(), sched.Config())

	sched.SetSpeed(1)
	assert.Equal(t, MinCPUHz, sched.Speed())

	sched.SetSpeed(1_000_000)
	assert.Equal(t, MaxCPUHz, sched.Speed())

	sched.SetSpeed(120)
	assert.NoError(t, sched.Frame())
	assert.Equal(t, int64(2), vm.Cycles)
}

func TestSchedulerReset(t *testing.T) {
	vm := newTestVM(t, Quirks{}, loop...)
	sched := NewScheduler(log.NewTestLogger(t), vm, DefaultConfig(), WithTrace(8))

	assert.NoError(t, sched.Frame())
	assert.Equal(t, 8, sched.Trace().Len())

	sched.Reset()
	assert.Equal(t, 0, sched.Trace().Len())
	assert.Equal(t, byte(0), vm.V[0])
	assert.Equal(t, uint16(ProgramStart), vm.PC)
}

func TestSchedulerRun(t *testing.T) {
	vm := newTestVM(t, Quirks{}, loop...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frames := 0
	sched := NewScheduler(log.NewTestLogger(t), vm, Config{CPUHz: 6000, TimerHz: 600},
		WithPresenter(PresenterFunc(func(d *Display) error {
			if frames++; frames == 3 {
				cancel()
			}
			return nil
		})))

	done := make(chan error, 1)
	go func() {
		done <- sched.Run(ctx)
	}()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	assert.True(t, vm.Cycles >= 30)
}

func TestSchedulerRunFault(t *testing.T) {
	vm := newTestVM(t, Quirks{}, 0x00EE)

	var logs bytes.Buffer
	sched := NewScheduler(newBufferLogger(&logs), vm, Config{CPUHz: 600, TimerHz: 600})

	err := sched.Run(context.Background())

	var fault *Fault
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, uint16(ProgramStart), fault.PC)
	assert.Equal(t, uint16(0x00EE), fault.Opcode)
	assert.True(t, strings.Contains(logs.String(), "pc=#0200 opcode=#00EE"))
}
