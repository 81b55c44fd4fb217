// Package chip8 implements the CHIP-8 virtual machine: memory, registers,
// call stack, timers, display and keypad, the fetch-decode-execute cycle
// for the 35 base instructions, and the scheduler that drives it. It also
// contains an assembler and a disassembler for CHIP-8 programs.
package chip8

import (
	"math/bits"
	"math/rand/v2"
)

// Mode is the execution state of the VM.
type Mode uint8

// VM execution modes.
const (
	// Running fetches and executes an instruction on every step.
	Running Mode = iota

	// AwaitingKey is entered by Fx0A. Steps poll the keypad until a key
	// is pressed.
	AwaitingKey

	// Halted is entered on a fault. Steps return the fault.
	Halted
)

func (m Mode) String() string {
	switch m {
	case Running:
		return "running"
	case AwaitingKey:
		return "awaiting key"
	case Halted:
		return "halted"
	}
	return "unknown"
}

// VM is the CHIP-8 virtual machine. It is owned by a single goroutine;
// none of its methods are safe for concurrent use.
type VM struct {
	Registers

	// Memory is the 4K address space, font included.
	Memory Memory

	// Stack holds CALL return addresses.
	Stack Stack

	// Timers are the delay and sound timers.
	Timers Timers

	// Display is the 64x32 frame buffer.
	Display Display

	// Keys is the keypad state seen by the CPU.
	Keys Keypad

	// Quirks select interpreter variant behaviour.
	Quirks Quirks

	// Mode is the current execution state.
	Mode Mode

	// W is the register that receives the key while AwaitingKey.
	W uint8

	// Cycles counts the steps taken since the last reset.
	Cycles int64

	// held are the keys that were down when the key wait began
	held uint16

	fault   *Fault
	program []byte
	rand    *rand.Rand
}

// Option configures a VM.
type Option func(*VM)

// WithQuirks selects interpreter variant behaviour.
func WithQuirks(q Quirks) Option {
	return func(vm *VM) {
		vm.Quirks = q
	}
}

// WithRand sets the random source used by RND.
func WithRand(r *rand.Rand) Option {
	return func(vm *VM) {
		vm.rand = r
	}
}

// New returns a VM with an empty program loaded.
func New(opts ...Option) *VM {
	vm := &VM{}

	for _, opt := range opts {
		opt(vm)
	}

	if vm.rand == nil {
		vm.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	vm.Reset()

	return vm
}

// Load resets the VM and loads program at ProgramStart. The program is
// kept so that Reset can reload it. On error the VM is unchanged.
func (vm *VM) Load(program []byte) error {
	var scratch Memory

	// validate before touching any state
	if err := scratch.Load(program); err != nil {
		return err
	}

	vm.program = append(vm.program[:0], program...)
	vm.Reset()

	return nil
}

// Program returns the loaded program bytes.
func (vm *VM) Program() []byte {
	return vm.program
}

// Reset returns every part of the machine to its power-on state and
// reloads the program.
func (vm *VM) Reset() {
	vm.Memory.Reset()

	// the size was checked by Load
	_ = vm.Memory.Load(vm.program)

	vm.Registers.Reset()
	vm.Stack.Reset()
	vm.Timers.Reset()
	vm.Display.Clear()
	vm.Keys.Reset()

	vm.Mode = Running
	vm.W = 0
	vm.held = 0
	vm.Cycles = 0
	vm.fault = nil
}

// Fault returns the fault that halted the VM, if any.
func (vm *VM) Fault() *Fault {
	return vm.fault
}

// PressKey emulates a CHIP-8 key being pressed.
func (vm *VM) PressKey(key uint) {
	vm.Keys.Press(key)
}

// ReleaseKey emulates a CHIP-8 key being released.
func (vm *VM) ReleaseKey(key uint) {
	vm.Keys.Release(key)
}

// Step executes a single instruction. While awaiting a key it polls the
// keypad instead. Any error is a *Fault and halts the VM.
func (vm *VM) Step() error {
	switch vm.Mode {
	case Halted:
		return vm.fault
	case AwaitingKey:
		vm.awaitKey()
		vm.Cycles++
		return nil
	}

	pc := vm.PC

	// fetch the next instruction
	word, err := vm.Memory.ReadWord(int(pc))
	if err != nil {
		return vm.halt(pc, 0, err)
	}

	inst, err := Decode(word)
	if err != nil {
		return vm.halt(pc, word, err)
	}

	// advance past it; jumps and skips adjust PC themselves
	vm.PC += 2

	if err := vm.execute(inst); err != nil {
		return vm.halt(pc, word, err)
	}

	vm.Cycles++

	return nil
}

// halt records a fault and rewinds PC to the failing instruction.
func (vm *VM) halt(pc, word uint16, err error) error {
	vm.PC = pc
	vm.Mode = Halted
	vm.fault = &Fault{PC: pc, Opcode: word, Err: err}

	return vm.fault
}

// awaitKey completes a pending Fx0A once a key goes down. Keys that were
// held when the wait began only count after being released.
func (vm *VM) awaitKey() {
	state := vm.Keys.State().Mask()

	// forget keys that have been released
	vm.held &= state

	fresh := state &^ vm.held
	if fresh == 0 {
		return
	}

	vm.V[vm.W] = byte(bits.TrailingZeros16(fresh))
	vm.Mode = Running
	vm.PC += 2
}
