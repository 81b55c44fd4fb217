//go:build !windows

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/massung/chip8vm/chip8"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// Terminals send no key release, so a key counts as held for a while
// after each press.
const termKeyHold = 150 * time.Millisecond

// termKeys maps typed characters to CHIP-8 keys, using the same layout
// as the window.
var termKeys = map[byte]uint{
	'x': 0x0, '1': 0x1, '2': 0x2, '3': 0x3,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'a': 0x7,
	's': 0x8, 'd': 0x9, 'z': 0xA, 'c': 0xB,
	'4': 0xC, 'r': 0xD, 'f': 0xE, 'v': 0xF,
}

// TermScreen presents the display on a terminal with half-block
// characters, two pixel rows per text row.
type TermScreen struct {
	w   io.Writer
	buf bytes.Buffer
}

// NewTermScreen checks that the terminal on fd is large enough.
func NewTermScreen(w io.Writer, fd int) (*TermScreen, error) {
	if !term.IsTerminal(fd) {
		return nil, errors.New("output is not a terminal")
	}

	cols, rows, err := term.GetSize(fd)
	if err != nil {
		return nil, fmt.Errorf("getting terminal size: %w", err)
	}
	if cols < chip8.DisplayWidth || rows < chip8.DisplayHeight/2+1 {
		return nil, fmt.Errorf("terminal is %dx%d, need at least %dx%d",
			cols, rows, chip8.DisplayWidth, chip8.DisplayHeight/2+1)
	}

	return &TermScreen{w: w}, nil
}

// Present redraws the display from the top left of the terminal.
func (s *TermScreen) Present(d *chip8.Display) error {
	s.buf.Reset()
	s.buf.WriteString("\x1b[H")

	for y := 0; y < chip8.DisplayHeight; y += 2 {
		for x := 0; x < chip8.DisplayWidth; x++ {
			top, bottom := d.Pixel(x, y), d.Pixel(x, y+1)

			switch {
			case top && bottom:
				s.buf.WriteString("█")
			case top:
				s.buf.WriteString("▀")
			case bottom:
				s.buf.WriteString("▄")
			default:
				s.buf.WriteByte(' ')
			}
		}

		// raw mode needs the carriage return
		s.buf.WriteString("\r\n")
	}

	_, err := s.w.Write(s.buf.Bytes())
	return err
}

// Open clears the terminal and hides the cursor.
func (s *TermScreen) Open() {
	_, _ = io.WriteString(s.w, "\x1b[2J\x1b[?25l")
}

// Close shows the cursor again below the display.
func (s *TermScreen) Close() {
	_, _ = io.WriteString(s.w, "\x1b[?25h\r\n")
}

// termKeyState returns the keys pressed within the hold time of now.
func termKeyState(pressed map[uint]time.Time, now time.Time) chip8.KeyState {
	var s chip8.KeyState

	for key, at := range pressed {
		if now.Sub(at) < termKeyHold {
			s[key] = true
		}
	}

	return s
}

// readTermKeys reads raw stdin until ctx is done, sending key snapshots
// to feed. ESC or Ctrl-C stop it with context.Canceled.
func readTermKeys(ctx context.Context, fd int, feed *chip8.KeyFeed) error {
	if err := syscall.SetNonblock(fd, true); err != nil {
		return fmt.Errorf("setting nonblocking stdin: %w", err)
	}
	defer func() {
		_ = syscall.SetNonblock(fd, false)
	}()

	pressed := make(map[uint]time.Time)
	last := chip8.KeyState{}
	buf := make([]byte, 16)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := syscall.Read(fd, buf)
		if err != nil && !errors.Is(err, syscall.EAGAIN) && !errors.Is(err, syscall.EWOULDBLOCK) {
			return fmt.Errorf("reading stdin: %w", err)
		}

		now := time.Now()

		// a lone escape is the key itself, not a sequence
		if n == 1 && buf[0] == 0x1b {
			return context.Canceled
		}

		for _, b := range buf[:max(n, 0)] {
			if b == 0x03 {
				return context.Canceled
			}

			if b >= 'A' && b <= 'Z' {
				b += 'a' - 'A'
			}

			if key, ok := termKeys[b]; ok {
				pressed[key] = now
			}
		}

		if state := termKeyState(pressed, now); state != last {
			feed.Send(state)
			last = state
		}

		time.Sleep(5 * time.Millisecond)
	}
}

// newHeldLogger returns a logger at the level of logger that writes to
// buf. Records written while the terminal is raw would land on the display.
func newHeldLogger(logger *log.Logger, buf *bytes.Buffer) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = logger.Level()
	cfg.Output = buf
	return log.NewWithConfig(cfg)
}

// runTerminal runs the emulator in the terminal until ESC, Ctrl-C or
// ctx is done.
func runTerminal(ctx context.Context, logger *log.Logger, vm *chip8.VM, cfg chip8.Config, opts options) error {
	screen, err := NewTermScreen(os.Stdout, int(os.Stdout.Fd()))
	if err != nil {
		return err
	}

	// there are no debugger keys in the terminal to resume with
	if opts.Paused {
		logger.Warn("Ignoring -paused in terminal mode")
		opts.Paused = false
	}

	fd := int(os.Stdin.Fd())

	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("setting raw mode: %w", err)
	}

	var held bytes.Buffer

	feed := chip8.NewKeyFeed(4)
	sched := newScheduler(newHeldLogger(logger, &held), vm, cfg, opts, nil,
		chip8.WithPresenter(screen),
		chip8.WithInput(feed))

	screen.Open()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return readTermKeys(ctx, fd, feed)
	})

	g.Go(func() error {
		err := sched.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	err = g.Wait()

	_ = term.Restore(fd, state)
	screen.Close()

	_, _ = held.WriteTo(os.Stdout)

	if vm.Mode == chip8.Halted {
		reportHalt(logger, sched)
	}

	return err
}
