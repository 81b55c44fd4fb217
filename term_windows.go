package main

import (
	"context"
	"errors"

	"github.com/massung/chip8vm/chip8"
	"github.com/retroenv/retrogolib/log"
)

func runTerminal(_ context.Context, _ *log.Logger, _ *chip8.VM, _ chip8.Config, _ options) error {
	return errors.New("terminal mode is not supported on windows")
}
