package chip8

import (
	"errors"
	"fmt"
)

// Machine errors. All of them are fatal to the running VM.
var (
	ErrMemoryOutOfBounds = errors.New("memory access out of bounds")
	ErrStackOverflow     = errors.New("stack overflow")
	ErrStackUnderflow    = errors.New("stack underflow")
	ErrUnknownOpcode     = errors.New("unknown opcode")
	ErrProgramTooLarge   = errors.New("program too large")
)

// Fault is returned by Step when the VM halts. It records the program
// counter and instruction word that caused the failure.
type Fault struct {
	PC     uint16
	Opcode uint16
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fault at #%04X (opcode #%04X): %v", f.PC, f.Opcode, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// addressError wraps ErrMemoryOutOfBounds with the offending address.
func addressError(addr int, detail string) error {
	if detail != "" {
		return fmt.Errorf("%w: #%04X (%s)", ErrMemoryOutOfBounds, addr, detail)
	}
	return fmt.Errorf("%w: #%04X", ErrMemoryOutOfBounds, addr)
}
