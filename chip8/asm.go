/* Copyright (c) 2017 Jeffrey Massung
 *
 * This software is provided 'as-is', without any express or implied
 * warranty.  In no event will the authors be held liable for any damages
 * arising from the use of this software.
 *
 * Permission is granted to anyone to use this software for any purpose,
 * including commercial applications, and to alter it and redistribute it
 * freely, subject to the following restrictions:
 *
 * 1. The origin of this software must not be misrepresented; you must not
 *    claim that you wrote the original software. If you use this software
 *    in a product, an acknowledgment in the product documentation would be
 *    appreciated but is not required.
 *
 * 2. Altered source versions must be plainly marked as such, and must not be
 *    misrepresented as being the original software.
 *
 * 3. This notice may not be removed or altered from any source distribution.
 */

package chip8

import (
	"bufio"
	"bytes"
	"fmt"
)

// Assembly is a completely assembled source file.
type Assembly struct {
	// ROM is the final, assembled bytes to load at ProgramStart.
	ROM []byte

	// Breakpoints are the BREAK directives in the source.
	Breakpoints []Breakpoint

	// labels maps label names to literal or register tokens
	labels map[string]token

	// unresolved maps ROM addresses to forward label references
	unresolved map[int]string
}

// Breakpoint is an address the scheduler should pause at.
type Breakpoint struct {
	Address uint16
	Reason  string
}

// Assemble an input CHIP-8 source file.
//
// Labels start in the first column with a '.', everything else is
// indented. Literals are decimal, #hex or $binary (with '.' for 0).
// Constants are declared with ".NAME EQU value" before they are used;
// addresses may be referenced before they are defined.
func Assemble(program []byte) (out *Assembly, err error) {
	var line int

	out = &Assembly{
		ROM:         make([]byte, ProgramStart, MemorySize),
		Breakpoints: make([]Breakpoint, 0, 10),
		labels:      make(map[string]token),
		unresolved:  make(map[int]string),
	}

	// handle panics during assembly
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok {
				e = fmt.Errorf("%v", r)
			}

			if line > 0 {
				err = fmt.Errorf("line %d - %w", line, e)
			} else {
				err = e
			}

			out = nil
		}
	}()

	scanner := bufio.NewScanner(bytes.NewReader(bytes.ToUpper(program)))

	// parse and assemble
	for line = 1; scanner.Scan(); line++ {
		out.assemble(&tokenScanner{bytes: scanner.Bytes()})
	}

	if err := scanner.Err(); err != nil {
		panic(err)
	}

	// done with line numbers
	line = 0

	out.resolve()

	if len(out.ROM) > MemorySize {
		panic(fmt.Errorf("%w: %d bytes", ErrProgramTooLarge, len(out.ROM)-ProgramStart))
	}

	// drop the reserved interpreter region from the rom
	out.ROM = out.ROM[ProgramStart:]

	return out, nil
}

// Label returns the value of a label or constant.
func (a *Assembly) Label(name string) (int, bool) {
	t, ok := a.labels[name]
	if !ok || t.typ != tokenLit {
		return 0, false
	}
	return t.val.(int), true
}

// resolve patches every forward label reference.
func (a *Assembly) resolve() {
	for address, label := range a.unresolved {
		t, ok := a.labels[label]
		if !ok {
			panic(fmt.Errorf("unresolved label: %s", label))
		}
		if t.typ != tokenLit {
			panic(fmt.Errorf("label does not resolve to address: %s", label))
		}

		// every forward reference is a 12-bit address in the low bits of a
		// 16-bit word; the high nibble holds the opcode
		a.ROM[address] = byte(t.val.(int)>>8&0xF) | a.ROM[address]&0xF0
		a.ROM[address+1] = byte(t.val.(int) & 0xFF)

		delete(a.unresolved, address)
	}
}

// assemble a single line.
func (a *Assembly) assemble(s *tokenScanner) {
	t := s.scanToken()

	if t.typ == tokenLabel {
		t = a.assembleLabel(t.val.(string), s)
	}

	switch t.typ {
	case tokenInstruction:
		a.assembleInstruction(t.val.(string), s)
	case tokenBreak:
		a.assembleBreakpoint(s)
	case tokenEnd:
	default:
		panic("unexpected token")
	}
}

// assembleLabel adds a label at the current address, or a constant when
// followed by EQU.
func (a *Assembly) assembleLabel(label string, s *tokenScanner) token {
	if _, exists := a.labels[label]; exists {
		panic(fmt.Errorf("duplicate label: %s", label))
	}

	// by default, the label is assigned the current address
	a.labels[label] = token{typ: tokenLit, val: len(a.ROM)}

	t := s.scanToken()
	if t.typ != tokenEqu {
		return t
	}

	// constants are literals or register aliases
	v := a.assembleOperand(s.scanToken(), -1)
	if v.typ != tokenLit && v.typ != tokenV {
		panic("illegal constant")
	}

	a.labels[label] = v

	if t = s.scanToken(); t.typ != tokenEnd {
		panic("unexpected token")
	}

	return t
}

// assembleBreakpoint creates a new breakpoint at the current address.
func (a *Assembly) assembleBreakpoint(s *tokenScanner) {
	reason := s.scanToEnd().val.(string)

	a.Breakpoints = append(a.Breakpoints, Breakpoint{
		Address: uint16(len(a.ROM)),
		Reason:  reason,
	})
}

// assembleInstruction compiles a single instruction or directive.
func (a *Assembly) assembleInstruction(i string, s *tokenScanner) {
	tokens := s.scanOperands()

	var b []byte

	switch i {
	case "CLS":
		b = a.assembleNoOperands(tokens, 0x00E0)
	case "RET":
		b = a.assembleNoOperands(tokens, 0x00EE)
	case "SYS":
		b = a.assembleAddress(tokens, 0x0000)
	case "JP":
		b = a.assembleJP(tokens)
	case "CALL":
		b = a.assembleAddress(tokens, 0x2000)
	case "SE":
		b = a.assembleCompare(tokens, 0x3000, 0x5000)
	case "SNE":
		b = a.assembleCompare(tokens, 0x4000, 0x9000)
	case "SKP":
		b = a.assembleRegister(tokens, 0xE09E)
	case "SKNP":
		b = a.assembleRegister(tokens, 0xE0A1)
	case "OR":
		b = a.assembleRegisters(tokens, 0x8001)
	case "AND":
		b = a.assembleRegisters(tokens, 0x8002)
	case "XOR":
		b = a.assembleRegisters(tokens, 0x8003)
	case "SUB":
		b = a.assembleRegisters(tokens, 0x8005)
	case "SUBN":
		b = a.assembleRegisters(tokens, 0x8007)
	case "SHR":
		b = a.assembleShift(tokens, 0x8006)
	case "SHL":
		b = a.assembleShift(tokens, 0x800E)
	case "ADD":
		b = a.assembleADD(tokens)
	case "RND":
		b = a.assembleRND(tokens)
	case "DRW":
		b = a.assembleDRW(tokens)
	case "LD":
		b = a.assembleLD(tokens)
	case "BYTE":
		b = a.assembleBYTE(tokens)
	case "WORD":
		b = a.assembleWORD(tokens)
	case "ALIGN":
		b = a.assembleALIGN(tokens)
	case "PAD":
		b = a.assemblePAD(tokens)
	}

	a.ROM = append(a.ROM, b...)
}

// assembleOperand expands label references. Unknown labels are recorded
// as unresolved at the current address plus offset, unless offset is
// negative, and assemble as ProgramStart.
func (a *Assembly) assembleOperand(t token, offset int) token {
	if t.typ != tokenRef {
		return t
	}

	label := t.val.(string)
	if v, exists := a.labels[label]; exists {
		return v
	}

	if offset < 0 {
		panic(fmt.Errorf("undefined constant: %s", label))
	}

	a.unresolved[len(a.ROM)+offset] = label

	return token{typ: tokenLit, val: ProgramStart}
}

// assembleOperands matches the desired token types against the tokens,
// expanding labels. Indirections must wrap I.
func (a *Assembly) assembleOperands(tokens []token, m ...tokenType) ([]token, bool) {
	if len(tokens) != len(m) {
		return nil, false
	}

	ops := make([]token, 0, len(m))

	for i, typ := range m {
		t := tokens[i]

		if t.typ == tokenAddress {
			if inner := t.val.(token); inner.typ != tokenI {
				return nil, false
			}
		} else if t.typ == tokenRef {
			if typ != tokenLit && typ != tokenV {
				return nil, false
			}

			// only commit a forward reference if this form matches
			if _, exists := a.labels[t.val.(string)]; !exists && typ != tokenLit {
				return nil, false
			}

			t = a.assembleOperand(t, 0)
		}

		if t.typ != typ {
			return nil, false
		}

		ops = append(ops, t)
	}

	return ops, true
}

// byteOperand panics if the instruction being assembled took a forward
// reference, which only resolves to a 12-bit address.
func (a *Assembly) byteOperand() {
	if label, ok := a.unresolved[len(a.ROM)]; ok {
		panic(fmt.Errorf("forward reference in byte operand: %s", label))
	}
}

// word splits a 16-bit instruction into big-endian bytes.
func word(w int) []byte {
	return []byte{byte(w >> 8), byte(w)}
}

func (a *Assembly) assembleNoOperands(tokens []token, w int) []byte {
	if len(tokens) == 0 {
		return word(w)
	}

	panic("illegal instruction")
}

// assembleAddress assembles an instruction taking a 12-bit address.
func (a *Assembly) assembleAddress(tokens []token, w int) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenLit); ok {
		n := ops[0].val.(int)

		if n >= 0 && n < 0x1000 {
			return word(w | n)
		}
	}

	panic("illegal instruction")
}

func (a *Assembly) assembleJP(tokens []token) []byte {
	if len(tokens) == 1 {
		return a.assembleAddress(tokens, 0x1000)
	}

	if ops, ok := a.assembleOperands(tokens, tokenV, tokenLit); ok {
		v := ops[0].val.(int)
		n := ops[1].val.(int)

		if v == 0 && n >= 0 && n < 0x1000 {
			return word(0xB000 | n)
		}
	}

	panic("illegal instruction")
}

// assembleCompare assembles SE and SNE in their byte and register forms.
func (a *Assembly) assembleCompare(tokens []token, byteForm, regForm int) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV, tokenV); ok {
		x := ops[0].val.(int)
		y := ops[1].val.(int)

		return word(regForm | x<<8 | y<<4)
	}

	if ops, ok := a.assembleOperands(tokens, tokenV, tokenLit); ok {
		x := ops[0].val.(int)
		b := ops[1].val.(int)

		a.byteOperand()

		if b >= 0 && b < 0x100 {
			return word(byteForm | x<<8 | b)
		}
	}

	panic("illegal instruction")
}

// assembleRegister assembles an instruction taking only Vx.
func (a *Assembly) assembleRegister(tokens []token, w int) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV); ok {
		return word(w | ops[0].val.(int)<<8)
	}

	panic("illegal instruction")
}

// assembleRegisters assembles an instruction taking Vx, Vy.
func (a *Assembly) assembleRegisters(tokens []token, w int) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV, tokenV); ok {
		x := ops[0].val.(int)
		y := ops[1].val.(int)

		return word(w | x<<8 | y<<4)
	}

	panic("illegal instruction")
}

// assembleShift assembles SHR and SHL as "Vx" or "Vx, Vy".
func (a *Assembly) assembleShift(tokens []token, w int) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV); ok {
		x := ops[0].val.(int)

		return word(w | x<<8 | x<<4)
	}

	return a.assembleRegisters(tokens, w)
}

func (a *Assembly) assembleADD(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV, tokenV); ok {
		x := ops[0].val.(int)
		y := ops[1].val.(int)

		return word(0x8004 | x<<8 | y<<4)
	}

	if ops, ok := a.assembleOperands(tokens, tokenI, tokenV); ok {
		return word(0xF01E | ops[1].val.(int)<<8)
	}

	if ops, ok := a.assembleOperands(tokens, tokenV, tokenLit); ok {
		x := ops[0].val.(int)
		b := ops[1].val.(int)

		a.byteOperand()

		// allow negative immediates, they wrap
		if b >= -0x80 && b < 0x100 {
			return word(0x7000 | x<<8 | b&0xFF)
		}
	}

	panic("illegal instruction")
}

func (a *Assembly) assembleRND(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV, tokenLit); ok {
		x := ops[0].val.(int)
		b := ops[1].val.(int)

		a.byteOperand()

		if b >= 0 && b < 0x100 {
			return word(0xC000 | x<<8 | b)
		}
	}

	panic("illegal instruction")
}

func (a *Assembly) assembleDRW(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV, tokenV, tokenLit); ok {
		x := ops[0].val.(int)
		y := ops[1].val.(int)
		n := ops[2].val.(int)

		a.byteOperand()

		if n >= 0 && n < 0x10 {
			return word(0xD000 | x<<8 | y<<4 | n)
		}
	}

	panic("illegal instruction")
}

func (a *Assembly) assembleLD(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV, tokenV); ok {
		x := ops[0].val.(int)
		y := ops[1].val.(int)

		return word(0x8000 | x<<8 | y<<4)
	}

	if ops, ok := a.assembleOperands(tokens, tokenV, tokenDT); ok {
		return word(0xF007 | ops[0].val.(int)<<8)
	}

	if ops, ok := a.assembleOperands(tokens, tokenV, tokenK); ok {
		return word(0xF00A | ops[0].val.(int)<<8)
	}

	if ops, ok := a.assembleOperands(tokens, tokenDT, tokenV); ok {
		return word(0xF015 | ops[1].val.(int)<<8)
	}

	if ops, ok := a.assembleOperands(tokens, tokenST, tokenV); ok {
		return word(0xF018 | ops[1].val.(int)<<8)
	}

	if ops, ok := a.assembleOperands(tokens, tokenF, tokenV); ok {
		return word(0xF029 | ops[1].val.(int)<<8)
	}

	if ops, ok := a.assembleOperands(tokens, tokenB, tokenV); ok {
		return word(0xF033 | ops[1].val.(int)<<8)
	}

	if ops, ok := a.assembleOperands(tokens, tokenAddress, tokenV); ok {
		return word(0xF055 | ops[1].val.(int)<<8)
	}

	if ops, ok := a.assembleOperands(tokens, tokenV, tokenAddress); ok {
		return word(0xF065 | ops[0].val.(int)<<8)
	}

	if ops, ok := a.assembleOperands(tokens, tokenI, tokenLit); ok {
		n := ops[1].val.(int)

		if n >= 0 && n < 0x1000 {
			return word(0xA000 | n)
		}
	}

	if ops, ok := a.assembleOperands(tokens, tokenV, tokenLit); ok {
		x := ops[0].val.(int)
		b := ops[1].val.(int)

		a.byteOperand()

		if b >= -0x80 && b < 0x100 {
			return word(0x6000 | x<<8 | b&0xFF)
		}
	}

	panic("illegal instruction")
}

// assembleBYTE assembles byte literals and strings.
func (a *Assembly) assembleBYTE(tokens []token) []byte {
	b := make([]byte, 0, len(tokens))

	for _, t := range tokens {
		op := a.assembleOperand(t, -1)

		switch op.typ {
		case tokenLit:
			n := op.val.(int)
			if n < -0x80 || n > 0xFF {
				panic("invalid byte")
			}

			b = append(b, byte(n))
		case tokenText:
			b = append(b, op.val.(string)...)
		default:
			panic("invalid byte")
		}
	}

	return b
}

// assembleWORD assembles big-endian 16-bit words. Words may reference
// labels defined later.
func (a *Assembly) assembleWORD(tokens []token) []byte {
	b := make([]byte, 0, len(tokens)*2)

	for i, t := range tokens {
		op := a.assembleOperand(t, 2*i)

		if op.typ != tokenLit || op.val.(int) < 0 || op.val.(int) > 0xFFFF {
			panic("invalid word")
		}

		b = append(b, word(op.val.(int))...)
	}

	return b
}

// assembleALIGN pads to a power of two boundary.
func (a *Assembly) assembleALIGN(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenLit); ok {
		n := ops[0].val.(int)

		if n > 0 && n&(n-1) == 0 {
			if offset := len(a.ROM) & (n - 1); offset != 0 {
				return make([]byte, n-offset)
			}
			return nil
		}
	}

	panic("illegal alignment")
}

// assemblePAD reserves n zero bytes.
func (a *Assembly) assemblePAD(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenLit); ok {
		n := ops[0].val.(int)

		if n >= 0 && n <= MemorySize-len(a.ROM) {
			return make([]byte, n)
		}
	}

	panic("illegal size")
}
