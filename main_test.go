package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestLoadProgram(t *testing.T) {
	dir := t.TempDir()

	rom := filepath.Join(dir, "test.ch8")
	assert.NoError(t, os.WriteFile(rom, []byte{0x00, 0xE0}, 0o644))

	prog, err := loadProgram(rom, false)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xE0}, prog.ROM)

	// source files are assembled by extension
	src := filepath.Join(dir, "test.asm")
	assert.NoError(t, os.WriteFile(src, []byte("  cls\n  break here\n  jp #200\n"), 0o644))

	prog, err = loadProgram(src, false)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xE0, 0x12, 0x00}, prog.ROM)
	assert.Len(t, prog.Breakpoints, 1)

	_, err = loadProgram(filepath.Join(dir, "missing.ch8"), false)
	assert.Error(t, err)
}
