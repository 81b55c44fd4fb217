package chip8

import "fmt"

// Memory layout.
const (
	MemorySize     = 0x1000
	ProgramStart   = 0x200
	MaxProgramSize = MemorySize - ProgramStart

	// FontStart is where the hex digit sprites live; digit n begins at
	// FontStart + n*FontStride and is FontHeight bytes tall.
	FontStart  = 0x000
	FontStride = 0x10
	FontHeight = 5
)

// Font holds the sprites for the hex digits 0-F.
var Font = [16][FontHeight]byte{
	{0xF0, 0x90, 0x90, 0x90, 0xF0}, // 0
	{0x20, 0x60, 0x20, 0x20, 0x70}, // 1
	{0xF0, 0x10, 0xF0, 0x80, 0xF0}, // 2
	{0xF0, 0x10, 0xF0, 0x10, 0xF0}, // 3
	{0x90, 0x90, 0xF0, 0x10, 0x10}, // 4
	{0xF0, 0x80, 0xF0, 0x10, 0xF0}, // 5
	{0xF0, 0x80, 0xF0, 0x90, 0xF0}, // 6
	{0xF0, 0x10, 0x20, 0x40, 0x40}, // 7
	{0xF0, 0x90, 0xF0, 0x90, 0xF0}, // 8
	{0xF0, 0x90, 0xF0, 0x10, 0xF0}, // 9
	{0xF0, 0x90, 0xF0, 0x90, 0x90}, // A
	{0xE0, 0x90, 0xE0, 0x90, 0xE0}, // B
	{0xF0, 0x80, 0x80, 0x80, 0xF0}, // C
	{0xE0, 0x90, 0x90, 0x90, 0xE0}, // D
	{0xF0, 0x80, 0xF0, 0x80, 0xF0}, // E
	{0xF0, 0x80, 0xF0, 0x80, 0x80}, // F
}

// FontAddress returns the address of the sprite for hex digit d.
func FontAddress(d byte) uint16 {
	return FontStart + uint16(d&0xF)*FontStride
}

// Memory is the 4K address space of the CHIP-8. The first 512 bytes are
// reserved for the interpreter and hold the font sprites; programs may
// read them but never write them.
type Memory struct {
	bytes [MemorySize]byte
}

// Reset zeroes memory and reinstalls the font.
func (m *Memory) Reset() {
	m.bytes = [MemorySize]byte{}

	for d, sprite := range Font {
		copy(m.bytes[FontStart+d*FontStride:], sprite[:])
	}
}

// Load copies a program into memory at ProgramStart.
func (m *Memory) Load(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, at most %d fit", ErrProgramTooLarge, len(program), MaxProgramSize)
	}

	copy(m.bytes[ProgramStart:], program)

	return nil
}

// ReadByte returns the byte at addr.
func (m *Memory) ReadByte(addr int) (byte, error) {
	if addr < 0 || addr >= MemorySize {
		return 0, addressError(addr, "")
	}
	return m.bytes[addr], nil
}

// WriteByte stores b at addr. Writes into the reserved interpreter
// region fail.
func (m *Memory) WriteByte(addr int, b byte) error {
	if addr < 0 || addr >= MemorySize {
		return addressError(addr, "")
	}
	if addr < ProgramStart {
		return addressError(addr, "reserved region")
	}

	m.bytes[addr] = b

	return nil
}

// ReadWord returns the big-endian 16-bit word at addr.
func (m *Memory) ReadWord(addr int) (uint16, error) {
	if addr < 0 || addr+1 >= MemorySize {
		return 0, addressError(addr, "")
	}
	return uint16(m.bytes[addr])<<8 | uint16(m.bytes[addr+1]), nil
}

// Slice returns n bytes starting at addr. The slice aliases memory and
// must not be modified.
func (m *Memory) Slice(addr, n int) ([]byte, error) {
	if addr < 0 || n < 0 {
		return nil, addressError(addr, "")
	}
	if addr+n > MemorySize {
		return nil, addressError(addr+n-1, "")
	}
	return m.bytes[addr : addr+n], nil
}
