//go:build !windows

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/massung/chip8vm/chip8"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestTermScreenPresent(t *testing.T) {
	var out bytes.Buffer
	screen := &TermScreen{w: &out}

	var d chip8.Display
	d.Set(0, 0, true)
	d.Set(1, 1, true)
	d.Set(2, 0, true)
	d.Set(2, 1, true)

	assert.NoError(t, screen.Present(&d))

	lines := strings.Split(strings.TrimPrefix(out.String(), "\x1b[H"), "\r\n")
	assert.Equal(t, chip8.DisplayHeight/2+1, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "▀▄█ "))
}

func TestTermKeyState(t *testing.T) {
	now := time.Now()
	pressed := map[uint]time.Time{
		0x1: now.Add(-time.Millisecond),
		0x2: now.Add(-time.Second),
	}

	state := termKeyState(pressed, now)
	assert.True(t, state[0x1])
	assert.False(t, state[0x2])
}

func TestHeldLogger(t *testing.T) {
	logger := log.NewWithConfig(log.Config{Level: log.ErrorLevel})

	var held bytes.Buffer
	l := newHeldLogger(logger, &held)

	l.Info("skipped")
	l.Error("Emulation halted", log.String("pc", "#0202"))

	out := held.String()
	assert.False(t, strings.Contains(out, "skipped"))
	assert.True(t, strings.Contains(out, "Emulation halted"))
	assert.True(t, strings.Contains(out, "#0202"))
}
