package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/massung/chip8vm/chip8"
	"github.com/retroenv/retrogolib/log"
)

// options are the command line settings.
type options struct {
	// ROM is the program file to run. Empty opens a file dialog.
	ROM string

	// Assembly is true if ROM is assembly source to assemble first.
	Assembly bool

	// Disassemble prints a listing of ROM and exits.
	Disassemble bool

	CPUHz   int
	TimerHz int
	Scale   int

	Terminal bool
	Paused   bool
	Trace    int

	Debug bool
	Quiet bool

	Quirks chip8.Quirks
}

// usageError is returned when the arguments can't be used.
type usageError struct {
	flags *flag.FlagSet
	msg   string
	err   error
}

func (e *usageError) Error() string {
	return e.msg
}

func (e *usageError) Unwrap() error {
	return e.err
}

func (e *usageError) ShowUsage() {
	fmt.Fprintf(os.Stderr, "usage: chip8vm [options] [rom file]\n\n")
	e.flags.SetOutput(os.Stderr)
	e.flags.PrintDefaults()
	fmt.Fprintln(os.Stderr)
}

// parseFlags reads the options from args, not including the program name.
func parseFlags(args []string) (options, error) {
	flags := flag.NewFlagSet("chip8vm", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	opts := options{}

	flags.BoolVar(&opts.Assembly, "asm", false, "treat the input file as assembly source and assemble it before running")
	flags.BoolVar(&opts.Disassemble, "disasm", false, "print a disassembly of the rom and exit")
	flags.IntVar(&opts.CPUHz, "hz", chip8.DefaultCPUHz, "CPU instructions per second")
	flags.IntVar(&opts.TimerHz, "timer", chip8.DefaultTimerHz, "timer, display and input updates per second")
	flags.IntVar(&opts.Scale, "scale", 8, "window pixels per CHIP-8 pixel")
	flags.BoolVar(&opts.Terminal, "term", false, "render in the terminal instead of a window")
	flags.BoolVar(&opts.Paused, "paused", false, "start with emulation paused")
	flags.IntVar(&opts.Trace, "trace", 32, "number of executed instructions to report when halting")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debug logging")
	flags.BoolVar(&opts.Quiet, "q", false, "only log errors")

	flags.BoolVar(&opts.Quirks.FlagFirst, "quirk-flag-first", false, "write VF before the result of 8xy4-8xyE")
	flags.BoolVar(&opts.Quirks.ShiftVy, "quirk-shift-vy", false, "8xy6 and 8xyE shift Vy into Vx")
	flags.BoolVar(&opts.Quirks.LoadStoreIncrementsI, "quirk-loadstore-i", false, "Fx55 and Fx65 advance I")
	flags.BoolVar(&opts.Quirks.LogicResetsVF, "quirk-logic-vf", false, "8xy1, 8xy2 and 8xy3 clear VF")
	flags.BoolVar(&opts.Quirks.ClipSprites, "quirk-clip", false, "clip sprites at the display edges instead of wrapping")

	if err := flags.Parse(args); err != nil {
		return opts, &usageError{flags: flags, msg: err.Error(), err: err}
	}

	switch rest := flags.Args(); len(rest) {
	case 0:
	case 1:
		opts.ROM = rest[0]
	default:
		return opts, &usageError{flags: flags, msg: fmt.Sprintf("unexpected argument %s, pass a single rom file as the last argument", rest[1])}
	}

	if opts.CPUHz < chip8.MinCPUHz || opts.CPUHz > chip8.MaxCPUHz {
		return opts, &usageError{flags: flags, msg: fmt.Sprintf("-hz must be between %d and %d", chip8.MinCPUHz, chip8.MaxCPUHz)}
	}
	if opts.TimerHz <= 0 {
		return opts, &usageError{flags: flags, msg: "-timer must be positive"}
	}
	if opts.Scale < 1 {
		return opts, &usageError{flags: flags, msg: "-scale must be at least 1"}
	}
	if opts.Disassemble && opts.ROM == "" {
		return opts, &usageError{flags: flags, msg: "-disasm needs a rom file"}
	}

	return opts, nil
}

// createLogger creates a logger with appropriate settings.
func createLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
