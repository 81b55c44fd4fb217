package chip8

import "fmt"

// StackDepth is the number of return addresses the call stack holds.
const StackDepth = 16

// Registers is the CPU working state.
type Registers struct {
	// V are the 16 general purpose registers. VF doubles as the carry,
	// borrow and collision flag.
	V [16]byte

	// I is the address register.
	I uint16

	// PC is the program counter. All programs begin at ProgramStart.
	PC uint16
}

// Reset zeroes all registers and points PC at the program start.
func (r *Registers) Reset() {
	r.V = [16]byte{}
	r.I = 0
	r.PC = ProgramStart
}

// Stack holds the return addresses of CALL instructions.
type Stack struct {
	entries [StackDepth]uint16

	// SP is the number of return addresses currently pushed.
	SP uint8
}

// Reset empties the stack.
func (s *Stack) Reset() {
	s.entries = [StackDepth]uint16{}
	s.SP = 0
}

// Push saves a return address.
func (s *Stack) Push(addr uint16) error {
	if int(s.SP) >= StackDepth {
		return fmt.Errorf("%w: %d return addresses already pushed", ErrStackOverflow, s.SP)
	}

	s.entries[s.SP] = addr
	s.SP++

	return nil
}

// Pop removes and returns the most recent return address.
func (s *Stack) Pop() (uint16, error) {
	if s.SP == 0 {
		return 0, ErrStackUnderflow
	}

	s.SP--

	return s.entries[s.SP], nil
}

// Depth returns the number of pushed return addresses.
func (s *Stack) Depth() int {
	return int(s.SP)
}

// Entries returns the pushed return addresses, oldest first.
func (s *Stack) Entries() []uint16 {
	return append([]uint16(nil), s.entries[:s.SP]...)
}
