package chip8

import "fmt"

// Op identifies one of the 35 CHIP-8 instructions.
type Op uint8

// CHIP-8 instructions. The comment shows the encoding.
const (
	OpInvalid Op = iota
	OpSYS        // 0nnn
	OpCLS        // 00E0
	OpRET        // 00EE
	OpJP         // 1nnn
	OpCALL       // 2nnn
	OpSEByte     // 3xkk
	OpSNEByte    // 4xkk
	OpSEReg      // 5xy0
	OpLDByte     // 6xkk
	OpADDByte    // 7xkk
	OpLDReg      // 8xy0
	OpOR         // 8xy1
	OpAND        // 8xy2
	OpXOR        // 8xy3
	OpADDReg     // 8xy4
	OpSUB        // 8xy5
	OpSHR        // 8xy6
	OpSUBN       // 8xy7
	OpSHL        // 8xyE
	OpSNEReg     // 9xy0
	OpLDI        // Annn
	OpJPV0       // Bnnn
	OpRND        // Cxkk
	OpDRW        // Dxyn
	OpSKP        // Ex9E
	OpSKNP       // ExA1
	OpLDVxDT     // Fx07
	OpLDVxK      // Fx0A
	OpLDDTVx     // Fx15
	OpLDSTVx     // Fx18
	OpADDI       // Fx1E
	OpLDF        // Fx29
	OpLDB        // Fx33
	OpLDIVx      // Fx55
	OpLDVxI      // Fx65

	opCount
)

var mnemonics = [opCount]string{
	OpInvalid: "??",
	OpSYS:     "SYS",
	OpCLS:     "CLS",
	OpRET:     "RET",
	OpJP:      "JP",
	OpCALL:    "CALL",
	OpSEByte:  "SE",
	OpSNEByte: "SNE",
	OpSEReg:   "SE",
	OpLDByte:  "LD",
	OpADDByte: "ADD",
	OpLDReg:   "LD",
	OpOR:      "OR",
	OpAND:     "AND",
	OpXOR:     "XOR",
	OpADDReg:  "ADD",
	OpSUB:     "SUB",
	OpSHR:     "SHR",
	OpSUBN:    "SUBN",
	OpSHL:     "SHL",
	OpSNEReg:  "SNE",
	OpLDI:     "LD",
	OpJPV0:    "JP",
	OpRND:     "RND",
	OpDRW:     "DRW",
	OpSKP:     "SKP",
	OpSKNP:    "SKNP",
	OpLDVxDT:  "LD",
	OpLDVxK:   "LD",
	OpLDDTVx:  "LD",
	OpLDSTVx:  "LD",
	OpADDI:    "ADD",
	OpLDF:     "LD",
	OpLDB:     "LD",
	OpLDIVx:   "LD",
	OpLDVxI:   "LD",
}

// Mnemonic returns the assembler name of the instruction.
func (op Op) Mnemonic() string {
	if op >= opCount {
		return mnemonics[OpInvalid]
	}
	return mnemonics[op]
}

// Instruction is a decoded instruction word. Only the operand fields
// used by Op are meaningful, except for SHR and SHL which keep Y so the
// word can be re-encoded exactly.
type Instruction struct {
	Op  Op
	X   uint8  // register nibble, bits 8-11
	Y   uint8  // register nibble, bits 4-7
	N   uint8  // nibble, bits 0-3
	KK  uint8  // byte, bits 0-7
	NNN uint16 // address, bits 0-11
}

// Decode splits an instruction word into its operation and operands.
// Words that are not CHIP-8 instructions fail with ErrUnknownOpcode.
func Decode(word uint16) (Instruction, error) {
	inst := Instruction{
		X:   uint8(word >> 8 & 0xF),
		Y:   uint8(word >> 4 & 0xF),
		N:   uint8(word & 0xF),
		KK:  uint8(word & 0xFF),
		NNN: word & 0xFFF,
	}

	switch word & 0xF000 {
	case 0x0000:
		switch word {
		case 0x00E0:
			inst.Op = OpCLS
		case 0x00EE:
			inst.Op = OpRET
		default:
			inst.Op = OpSYS
		}
	case 0x1000:
		inst.Op = OpJP
	case 0x2000:
		inst.Op = OpCALL
	case 0x3000:
		inst.Op = OpSEByte
	case 0x4000:
		inst.Op = OpSNEByte
	case 0x5000:
		if inst.N == 0 {
			inst.Op = OpSEReg
		}
	case 0x6000:
		inst.Op = OpLDByte
	case 0x7000:
		inst.Op = OpADDByte
	case 0x8000:
		switch inst.N {
		case 0x0:
			inst.Op = OpLDReg
		case 0x1:
			inst.Op = OpOR
		case 0x2:
			inst.Op = OpAND
		case 0x3:
			inst.Op = OpXOR
		case 0x4:
			inst.Op = OpADDReg
		case 0x5:
			inst.Op = OpSUB
		case 0x6:
			inst.Op = OpSHR
		case 0x7:
			inst.Op = OpSUBN
		case 0xE:
			inst.Op = OpSHL
		}
	case 0x9000:
		if inst.N == 0 {
			inst.Op = OpSNEReg
		}
	case 0xA000:
		inst.Op = OpLDI
	case 0xB000:
		inst.Op = OpJPV0
	case 0xC000:
		inst.Op = OpRND
	case 0xD000:
		inst.Op = OpDRW
	case 0xE000:
		switch inst.KK {
		case 0x9E:
			inst.Op = OpSKP
		case 0xA1:
			inst.Op = OpSKNP
		}
	case 0xF000:
		switch inst.KK {
		case 0x07:
			inst.Op = OpLDVxDT
		case 0x0A:
			inst.Op = OpLDVxK
		case 0x15:
			inst.Op = OpLDDTVx
		case 0x18:
			inst.Op = OpLDSTVx
		case 0x1E:
			inst.Op = OpADDI
		case 0x29:
			inst.Op = OpLDF
		case 0x33:
			inst.Op = OpLDB
		case 0x55:
			inst.Op = OpLDIVx
		case 0x65:
			inst.Op = OpLDVxI
		}
	}

	if inst.Op == OpInvalid {
		return inst, fmt.Errorf("%w: #%04X", ErrUnknownOpcode, word)
	}

	return inst, nil
}

// Encode rebuilds the instruction word from the operation and operands.
func (inst Instruction) Encode() uint16 {
	x := uint16(inst.X&0xF) << 8
	y := uint16(inst.Y&0xF) << 4
	n := uint16(inst.N & 0xF)
	kk := uint16(inst.KK)
	nnn := inst.NNN & 0xFFF

	switch inst.Op {
	case OpSYS:
		return nnn
	case OpCLS:
		return 0x00E0
	case OpRET:
		return 0x00EE
	case OpJP:
		return 0x1000 | nnn
	case OpCALL:
		return 0x2000 | nnn
	case OpSEByte:
		return 0x3000 | x | kk
	case OpSNEByte:
		return 0x4000 | x | kk
	case OpSEReg:
		return 0x5000 | x | y
	case OpLDByte:
		return 0x6000 | x | kk
	case OpADDByte:
		return 0x7000 | x | kk
	case OpLDReg:
		return 0x8000 | x | y
	case OpOR:
		return 0x8001 | x | y
	case OpAND:
		return 0x8002 | x | y
	case OpXOR:
		return 0x8003 | x | y
	case OpADDReg:
		return 0x8004 | x | y
	case OpSUB:
		return 0x8005 | x | y
	case OpSHR:
		return 0x8006 | x | y
	case OpSUBN:
		return 0x8007 | x | y
	case OpSHL:
		return 0x800E | x | y
	case OpSNEReg:
		return 0x9000 | x | y
	case OpLDI:
		return 0xA000 | nnn
	case OpJPV0:
		return 0xB000 | nnn
	case OpRND:
		return 0xC000 | x | kk
	case OpDRW:
		return 0xD000 | x | y | n
	case OpSKP:
		return 0xE09E | x
	case OpSKNP:
		return 0xE0A1 | x
	case OpLDVxDT:
		return 0xF007 | x
	case OpLDVxK:
		return 0xF00A | x
	case OpLDDTVx:
		return 0xF015 | x
	case OpLDSTVx:
		return 0xF018 | x
	case OpADDI:
		return 0xF01E | x
	case OpLDF:
		return 0xF029 | x
	case OpLDB:
		return 0xF033 | x
	case OpLDIVx:
		return 0xF055 | x
	case OpLDVxI:
		return 0xF065 | x
	}

	return 0
}

// String returns the instruction in assembler syntax.
func (inst Instruction) String() string {
	m := inst.Op.Mnemonic()

	switch inst.Op {
	case OpCLS, OpRET:
		return m
	case OpSYS, OpJP, OpCALL:
		return fmt.Sprintf("%-6s #%03X", m, inst.NNN)
	case OpSEByte, OpSNEByte, OpLDByte, OpADDByte, OpRND:
		return fmt.Sprintf("%-6s V%X, #%02X", m, inst.X, inst.KK)
	case OpSEReg, OpSNEReg, OpLDReg, OpOR, OpAND, OpXOR, OpADDReg, OpSUB, OpSUBN:
		return fmt.Sprintf("%-6s V%X, V%X", m, inst.X, inst.Y)
	case OpSHR, OpSHL:
		if inst.X == inst.Y {
			return fmt.Sprintf("%-6s V%X", m, inst.X)
		}
		return fmt.Sprintf("%-6s V%X, V%X", m, inst.X, inst.Y)
	case OpLDI:
		return fmt.Sprintf("%-6s I, #%03X", m, inst.NNN)
	case OpJPV0:
		return fmt.Sprintf("%-6s V0, #%03X", m, inst.NNN)
	case OpDRW:
		return fmt.Sprintf("%-6s V%X, V%X, %d", m, inst.X, inst.Y, inst.N)
	case OpSKP, OpSKNP:
		return fmt.Sprintf("%-6s V%X", m, inst.X)
	case OpLDVxDT:
		return fmt.Sprintf("%-6s V%X, DT", m, inst.X)
	case OpLDVxK:
		return fmt.Sprintf("%-6s V%X, K", m, inst.X)
	case OpLDDTVx:
		return fmt.Sprintf("%-6s DT, V%X", m, inst.X)
	case OpLDSTVx:
		return fmt.Sprintf("%-6s ST, V%X", m, inst.X)
	case OpADDI:
		return fmt.Sprintf("%-6s I, V%X", m, inst.X)
	case OpLDF:
		return fmt.Sprintf("%-6s F, V%X", m, inst.X)
	case OpLDB:
		return fmt.Sprintf("%-6s B, V%X", m, inst.X)
	case OpLDIVx:
		return fmt.Sprintf("%-6s [I], V%X", m, inst.X)
	case OpLDVxI:
		return fmt.Sprintf("%-6s V%X, [I]", m, inst.X)
	}

	return m
}
