package chip8

import "fmt"

// Disassemble the instruction at address i in VM memory.
func (vm *VM) Disassemble(i uint16) string {
	inst, err := vm.Memory.ReadWord(int(i))
	if err != nil {
		return ""
	}

	return disassembleWord(i, inst)
}

// DisassembleProgram returns one line per instruction word of program,
// addressed as if loaded at base. A trailing odd byte is listed as data.
func DisassembleProgram(program []byte, base uint16) []string {
	lines := make([]string, 0, len(program)/2+1)

	for i := 0; i+1 < len(program); i += 2 {
		inst := uint16(program[i])<<8 | uint16(program[i+1])
		lines = append(lines, disassembleWord(base+uint16(i), inst))
	}

	if len(program)%2 == 1 {
		n := len(program) - 1
		lines = append(lines, fmt.Sprintf("%04X - BYTE   #%02X", base+uint16(n), program[n]))
	}

	return lines
}

func disassembleWord(i, inst uint16) string {
	// end of program memory?
	if inst == 0 {
		return fmt.Sprintf("%04X -", i)
	}

	decoded, err := Decode(inst)
	if err != nil {
		return fmt.Sprintf("%04X - ??     #%04X", i, inst)
	}

	return fmt.Sprintf("%04X - %s", i, decoded)
}
