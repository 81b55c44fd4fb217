// Package main implements a CHIP-8 emulator with an SDL window, audio and
// keyboard, or a terminal front end.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/massung/chip8vm/chip8"
	"github.com/retroenv/retrogolib/log"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	// SDL must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	logger := createLogger(opts.Debug, opts.Quiet)

	if err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			usageErr.ShowUsage()
		}
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		logger.Error("Invalid arguments", log.String("error", err.Error()))
		os.Exit(2)
	}

	if err := run(logger, opts); err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Error("Emulation failed", log.String("error", err.Error()))
			os.Exit(1)
		}
	}
}

// run loads the rom and runs it in the selected front end.
func run(logger *log.Logger, opts options) error {
	if opts.ROM == "" {
		if opts.Terminal {
			return errors.New("terminal mode needs a rom file")
		}

		file, err := pickROM()
		if err != nil {
			return err
		}
		opts.ROM = file
	}

	program, err := loadProgram(opts.ROM, opts.Assembly)
	if err != nil {
		return err
	}

	if opts.Disassemble {
		for _, line := range chip8.DisassembleProgram(program.ROM, chip8.ProgramStart) {
			fmt.Println(line)
		}
		return nil
	}

	vm := chip8.New(chip8.WithQuirks(opts.Quirks))
	if err := vm.Load(program.ROM); err != nil {
		return fmt.Errorf("loading %s: %w", opts.ROM, err)
	}

	logger.Info("Loaded ROM",
		log.String("file", opts.ROM),
		log.Int("size", len(program.ROM)),
		log.Int("hz", opts.CPUHz))

	cfg := chip8.Config{CPUHz: opts.CPUHz, TimerHz: opts.TimerHz}

	if opts.Terminal {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err = runTerminal(ctx, logger, vm, cfg, opts)
	} else {
		err = runWindow(logger, vm, cfg, opts, program.Breakpoints)
	}

	return err
}

// pickROM asks for a rom file with a dialog.
func pickROM() (string, error) {
	file, err := dialog.File().
		Title("Load CHIP-8 ROM").
		Filter("CHIP-8 ROM", "ch8", "c8", "rom").
		Filter("CHIP-8 assembly", "asm", "c8s").
		Load()
	if err != nil {
		if errors.Is(err, dialog.ErrCancelled) {
			return "", context.Canceled
		}
		return "", fmt.Errorf("selecting rom: %w", err)
	}
	return file, nil
}

// loadProgram reads a rom file, assembling it first if it is source.
func loadProgram(file string, assemble bool) (*chip8.Assembly, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading rom: %w", err)
	}

	switch strings.ToLower(filepath.Ext(file)) {
	case ".asm", ".c8s":
		assemble = true
	}

	if !assemble {
		return &chip8.Assembly{ROM: data}, nil
	}

	asm, err := chip8.Assemble(data)
	if err != nil {
		return nil, fmt.Errorf("assembling %s: %w", file, err)
	}
	return asm, nil
}

// newScheduler builds the scheduler shared by both front ends.
func newScheduler(logger *log.Logger, vm *chip8.VM, cfg chip8.Config, opts options,
	breakpoints []chip8.Breakpoint, collaborators ...chip8.SchedulerOption) *chip8.Scheduler {

	if opts.Trace > 0 {
		collaborators = append(collaborators, chip8.WithTrace(opts.Trace))
	}

	sched := chip8.NewScheduler(logger, vm, cfg, collaborators...)

	for _, bp := range breakpoints {
		sched.SetBreakpoint(bp.Address, bp.Reason)
	}

	if opts.Paused {
		sched.Pause()
	}

	return sched
}

// runWindow runs the emulator in an SDL window until it is closed.
func runWindow(logger *log.Logger, vm *chip8.VM, cfg chip8.Config, opts options, breakpoints []chip8.Breakpoint) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return fmt.Errorf("initializing SDL: %w", err)
	}
	defer sdl.Quit()

	screen, err := NewScreen(opts.Scale)
	if err != nil {
		return err
	}
	defer screen.Close()

	keyboard := NewKeyboard(logger)
	collaborators := []chip8.SchedulerOption{
		chip8.WithPresenter(screen),
		chip8.WithInput(keyboard),
	}

	// run silently if there is no audio device
	if tone, err := NewTone(); err != nil {
		logger.Warn("Audio unavailable", log.String("error", err.Error()))
	} else {
		defer tone.Close()
		collaborators = append(collaborators, chip8.WithAudio(tone))
	}

	sched := newScheduler(logger, vm, cfg, opts, breakpoints, collaborators...)
	keyboard.sched = sched

	name := filepath.Base(opts.ROM)

	// one frame per timer tick
	video := time.NewTicker(time.Second / time.Duration(cfg.TimerHz))
	defer video.Stop()

	for keyboard.ProcessEvents() {
		<-video.C

		if err := sched.Frame(); err != nil {
			reportHalt(logger, sched)
			return err
		}

		screen.SetTitle(status(name, sched))
	}

	if err := keyboard.Err(); err != nil {
		reportHalt(logger, sched)
		return err
	}

	return nil
}

// status is the window title.
func status(name string, sched *chip8.Scheduler) string {
	switch {
	case sched.VM().Mode == chip8.Halted:
		return fmt.Sprintf("CHIP-8 - %s [halted]", name)
	case sched.Paused():
		return fmt.Sprintf("CHIP-8 - %s [paused at #%04X]", name, sched.VM().PC)
	}
	return fmt.Sprintf("CHIP-8 - %s (%d Hz)", name, sched.Speed())
}
