package chip8

import (
	"context"
	"fmt"
	"time"

	"github.com/retroenv/retrogolib/log"
)

// Scheduler rates.
const (
	DefaultCPUHz   = 480
	DefaultTimerHz = 60

	MinCPUHz = 60
	MaxCPUHz = 60000
)

// Config sets the scheduler rates. The CPU runs CPUHz/TimerHz steps per
// timer tick; a fractional remainder carries into the next tick.
type Config struct {
	CPUHz   int
	TimerHz int
}

// DefaultConfig runs 8 CPU steps per 60 Hz timer tick.
func DefaultConfig() Config {
	return Config{
		CPUHz:   DefaultCPUHz,
		TimerHz: DefaultTimerHz,
	}
}

// Scheduler owns a VM and drives it: CPU steps at the CPU rate, and at
// the timer rate the timers, input sampling, audio and presentation.
type Scheduler struct {
	vm     *VM
	cfg    Config
	logger *log.Logger

	present Presenter
	input   Input
	audio   Audio
	trace   *Trace

	// budget is the carried step remainder, in units of 1/TimerHz steps
	budget int

	paused      bool
	skipBreak   bool
	breakpoints map[uint16]string

	// Frames counts the timer ticks run.
	Frames int64
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithPresenter sets the display collaborator.
func WithPresenter(p Presenter) SchedulerOption {
	return func(s *Scheduler) {
		s.present = p
	}
}

// WithInput sets the key input collaborator.
func WithInput(in Input) SchedulerOption {
	return func(s *Scheduler) {
		s.input = in
	}
}

// WithAudio sets the tone collaborator.
func WithAudio(a Audio) SchedulerOption {
	return func(s *Scheduler) {
		s.audio = a
	}
}

// WithTrace records the last n executed instructions.
func WithTrace(n int) SchedulerOption {
	return func(s *Scheduler) {
		s.trace = NewTrace(n)
	}
}

// NewScheduler returns a scheduler driving vm. Zero rates in cfg are
// replaced by the defaults.
func NewScheduler(logger *log.Logger, vm *VM, cfg Config, opts ...SchedulerOption) *Scheduler {
	if cfg.TimerHz <= 0 {
		cfg.TimerHz = DefaultTimerHz
	}
	if cfg.CPUHz <= 0 {
		cfg.CPUHz = DefaultCPUHz
	}

	s := &Scheduler{
		vm:          vm,
		cfg:         cfg,
		logger:      logger,
		breakpoints: make(map[uint16]string),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// VM returns the machine being driven.
func (s *Scheduler) VM() *VM {
	return s.vm
}

// Trace returns the instruction trace, or nil if tracing is off.
func (s *Scheduler) Trace() *Trace {
	return s.trace
}

// Config returns the current rates.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// Speed returns the CPU rate in steps per second.
func (s *Scheduler) Speed() int {
	return s.cfg.CPUHz
}

// SetSpeed changes the CPU rate, clamped to [MinCPUHz, MaxCPUHz].
func (s *Scheduler) SetSpeed(hz int) {
	if hz < MinCPUHz {
		hz = MinCPUHz
	}
	if hz > MaxCPUHz {
		hz = MaxCPUHz
	}

	s.cfg.CPUHz = hz
	s.budget = 0

	s.logger.Debug("CPU speed changed", log.Int("hz", hz))
}

// Paused reports whether the CPU is stopped.
func (s *Scheduler) Paused() bool {
	return s.paused
}

// Pause stops running CPU steps and timers. Frames still sample input
// and present the display.
func (s *Scheduler) Pause() {
	if !s.paused {
		s.paused = true
		s.logger.Info("Paused", log.String("pc", fmt.Sprintf("#%04X", s.vm.PC)))
	}
}

// Resume continues after Pause or a breakpoint.
func (s *Scheduler) Resume() {
	if s.paused {
		s.paused = false
		s.skipBreak = true
		s.logger.Info("Resumed", log.String("pc", fmt.Sprintf("#%04X", s.vm.PC)))
	}
}

// StepOnce executes a single instruction while paused.
func (s *Scheduler) StepOnce() error {
	if !s.paused {
		return nil
	}

	s.skipBreak = true

	return s.step()
}

// Reset resets the VM and clears the trace. Breakpoints are kept.
func (s *Scheduler) Reset() {
	s.vm.Reset()
	s.budget = 0
	s.skipBreak = false

	if s.trace != nil {
		s.trace.Clear()
	}

	s.logger.Info("Reset")
}

// SetBreakpoint pauses the scheduler when PC reaches address.
func (s *Scheduler) SetBreakpoint(address uint16, reason string) {
	s.breakpoints[address] = reason
}

// ClearBreakpoint removes the breakpoint at address.
func (s *Scheduler) ClearBreakpoint(address uint16) {
	delete(s.breakpoints, address)
}

// ToggleBreakpoint sets or clears a breakpoint at the current PC.
func (s *Scheduler) ToggleBreakpoint() {
	pc := s.vm.PC

	if _, ok := s.breakpoints[pc]; ok {
		s.ClearBreakpoint(pc)
		return
	}

	s.SetBreakpoint(pc, "")
}

// Breakpoint returns the reason for the breakpoint at address.
func (s *Scheduler) Breakpoint(address uint16) (string, bool) {
	reason, ok := s.breakpoints[address]
	return reason, ok
}

// Frame runs one timer period: sample input, run the CPU for its share
// of steps, tick the timers, update the tone and present the display.
// A fault halts the VM; it is logged and returned.
func (s *Scheduler) Frame() error {
	if s.input != nil {
		if keys, ok := s.input.Sample(); ok {
			s.vm.Keys.Set(keys)
		}
	}

	if !s.paused {
		n := s.stepsThisFrame()

		for i := 0; i < n && !s.paused; i++ {
			if s.atBreakpoint() {
				break
			}

			if err := s.step(); err != nil {
				return err
			}
		}

		s.vm.Timers.Tick()
	}

	if s.audio != nil {
		s.audio.Tone(s.vm.Timers.SoundActive())
	}

	s.Frames++

	if s.present != nil {
		if err := s.present.Present(&s.vm.Display); err != nil {
			return fmt.Errorf("presenting display: %w", err)
		}
	}

	return nil
}

// Run calls Frame at the timer rate until ctx is done or Frame fails.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(s.cfg.TimerHz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Frame(); err != nil {
				return err
			}
		}
	}
}

// stepsThisFrame returns the CPU steps owed for one timer tick.
func (s *Scheduler) stepsThisFrame() int {
	s.budget += s.cfg.CPUHz

	n := s.budget / s.cfg.TimerHz
	s.budget -= n * s.cfg.TimerHz

	return n
}

// atBreakpoint pauses if PC is at a breakpoint that was not just
// resumed from.
func (s *Scheduler) atBreakpoint() bool {
	if s.skipBreak || s.vm.Mode != Running {
		return false
	}

	reason, ok := s.breakpoints[s.vm.PC]
	if !ok {
		return false
	}

	s.paused = true
	s.logger.Info("Breakpoint",
		log.String("pc", fmt.Sprintf("#%04X", s.vm.PC)),
		log.String("reason", reason))

	return true
}

// step runs one VM step, tracing it and logging a fault.
func (s *Scheduler) step() error {
	pc := s.vm.PC

	if s.trace != nil && s.vm.Mode == Running {
		s.trace.Add(s.vm.Disassemble(pc))
	}

	s.skipBreak = false

	if err := s.vm.Step(); err != nil {
		s.paused = true
		s.logFault(err)
		return err
	}

	return nil
}

func (s *Scheduler) logFault(err error) {
	pc, opcode := s.vm.PC, uint16(0)
	if f := s.vm.Fault(); f != nil {
		pc, opcode = f.PC, f.Opcode
	}

	s.logger.Error("Emulation halted",
		log.String("pc", fmt.Sprintf("#%04X", pc)),
		log.String("opcode", fmt.Sprintf("#%04X", opcode)),
		log.String("instruction", s.vm.Disassemble(pc)),
		log.String("error", err.Error()))
}
