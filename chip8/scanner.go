package chip8

import (
	"fmt"
	"strconv"
	"strings"
)

// Type for scanned tokens.
type tokenType uint

// Lexical assembly tokens.
const (
	tokenEnd tokenType = iota
	tokenChar
	tokenLabel
	tokenRef
	tokenInstruction
	tokenAddress
	tokenOperand
	tokenV
	tokenB
	tokenI
	tokenF
	tokenK
	tokenDT
	tokenST
	tokenLit
	tokenText
	tokenBreak
	tokenEqu
)

// A parsed, lexical token.
type token struct {
	typ tokenType

	// tokens can have an optional value associated with them
	val interface{}
}

// CHIP-8 assembler token scanner over a single line.
type tokenScanner struct {
	bytes []byte

	// scan position
	pos int
}

// scanToken reads the next token from the line.
func (s *tokenScanner) scanToken() token {
	for len(s.bytes) > s.pos && s.bytes[s.pos] < 33 {
		s.pos++
	}

	// at the end of the line
	if len(s.bytes) <= s.pos {
		return token{typ: tokenEnd, val: ""}
	}

	c := s.bytes[s.pos]

	switch {
	case c == ';':
		return s.scanToEnd()
	case c == '.' && s.pos == 0:
		return s.scanLabel()
	case s.pos == 0:
		panic("expected .label")
	case c == '[':
		return s.scanIndirection()
	case c == ',':
		return s.scanOperand()
	case c == '#':
		return s.scanHexLit()
	case c == '$':
		return s.scanBinLit()
	case c == '-' || (c >= '0' && c <= '9'):
		return s.scanDecLit()
	case c >= 'A' && c <= 'Z':
		return s.scanIdentifier()
	case c == '"' || c == '\'':
		return s.scanString(c)
	}

	return s.scanChar()
}

// scanOperands scans a list of comma-separated tokens.
func (s *tokenScanner) scanOperands() []token {
	tokens := make([]token, 0, 3)

	for t := s.scanToken(); t.typ != tokenEnd; {
		tokens = append(tokens, t)

		// get another token, are we at the end?
		if t = s.scanToken(); t.typ != tokenOperand {
			if t.typ == tokenEnd {
				break
			}

			panic("unexpected token")
		}

		// expand the operand
		t = t.val.(token)
	}

	return tokens
}

// scanChar scans a single character.
func (s *tokenScanner) scanChar() token {
	i := s.pos
	s.pos++

	return token{typ: tokenChar, val: s.bytes[i]}
}

// scanToEnd consumes the rest of the line.
func (s *tokenScanner) scanToEnd() token {
	text := string(s.bytes[s.pos:])
	s.pos = len(s.bytes)

	return token{typ: tokenEnd, val: strings.TrimSpace(text)}
}

// scanOperand scans a comma-separated operand token.
func (s *tokenScanner) scanOperand() token {
	s.pos++

	t := s.scanToken()
	if t.typ == tokenEnd {
		panic("expected operand")
	}

	return token{typ: tokenOperand, val: t}
}

// scanLabel scans a label, which is a specific type of identifier.
func (s *tokenScanner) scanLabel() token {
	s.pos++

	if s.pos < len(s.bytes) && s.bytes[s.pos] >= 'A' && s.bytes[s.pos] <= 'Z' {
		if id := s.scanIdentifier(); id.typ == tokenRef {
			return token{typ: tokenLabel, val: id.val}
		}
	}

	panic("expected label")
}

// scanIdentifier scans an instruction, register, keyword or label
// reference.
func (s *tokenScanner) scanIdentifier() token {
	i := s.pos

	for ; s.pos < len(s.bytes); s.pos++ {
		c := s.bytes[s.pos]

		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '_' {
			break
		}
	}

	id := string(s.bytes[i:s.pos])

	// V0..VF registers
	if len(id) == 2 && id[0] == 'V' {
		if n, err := strconv.ParseUint(id[1:], 16, 8); err == nil {
			return token{typ: tokenV, val: int(n)}
		}
	}

	switch id {
	case "I":
		return token{typ: tokenI}
	case "B":
		return token{typ: tokenB}
	case "F":
		return token{typ: tokenF}
	case "K":
		return token{typ: tokenK}
	case "D", "DT":
		return token{typ: tokenDT}
	case "S", "ST":
		return token{typ: tokenST}
	case "CLS", "RET", "SYS", "JP", "CALL", "SE", "SNE", "SKP", "SKNP", "LD", "OR", "AND", "XOR", "ADD", "SUB", "SUBN", "SHR", "SHL", "RND", "DRW", "BYTE", "WORD", "ALIGN", "PAD":
		return token{typ: tokenInstruction, val: id}
	case "BREAK":
		return token{typ: tokenBreak}
	case "EQU":
		return token{typ: tokenEqu}
	}

	return token{typ: tokenRef, val: id}
}

// scanIndirection scans [I].
func (s *tokenScanner) scanIndirection() token {
	s.pos++

	t := s.scanToken()

	// the next token should close the indirection
	if c := s.scanToken(); c.typ != tokenChar || c.val.(byte) != ']' {
		panic("illegal indirection")
	}

	return token{typ: tokenAddress, val: t}
}

// scanDecLit scans a decimal literal.
func (s *tokenScanner) scanDecLit() token {
	i := s.pos

	// skip a unary minus negation
	if s.bytes[i] == '-' {
		s.pos++
	}

	for ; s.pos < len(s.bytes); s.pos++ {
		if strings.IndexByte("0123456789", s.bytes[s.pos]) < 0 {
			break
		}
	}

	if n, err := strconv.ParseInt(string(s.bytes[i:s.pos]), 10, 32); err == nil {
		return token{typ: tokenLit, val: int(n)}
	}

	panic(fmt.Errorf("illegal decimal value: %s", string(s.bytes[i:s.pos])))
}

// scanHexLit scans a #hex literal.
func (s *tokenScanner) scanHexLit() token {
	i := s.pos

	for s.pos++; s.pos < len(s.bytes); s.pos++ {
		if strings.IndexByte("0123456789ABCDEF", s.bytes[s.pos]) < 0 {
			break
		}
	}

	if n, err := strconv.ParseInt(string(s.bytes[i+1:s.pos]), 16, 32); err == nil {
		return token{typ: tokenLit, val: int(n)}
	}

	panic(fmt.Errorf("illegal hex value: %s", string(s.bytes[i:s.pos])))
}

// scanBinLit scans a $binary literal, where '.' is a 0 bit.
func (s *tokenScanner) scanBinLit() token {
	i := s.pos

	for s.pos++; s.pos < len(s.bytes); s.pos++ {
		if strings.IndexByte(".01", s.bytes[s.pos]) < 0 {
			break
		}
	}

	v := strings.ReplaceAll(string(s.bytes[i+1:s.pos]), ".", "0")

	if n, err := strconv.ParseInt(v, 2, 32); err == nil {
		return token{typ: tokenLit, val: int(n)}
	}

	panic(fmt.Errorf("illegal binary value: %s", string(s.bytes[i:s.pos])))
}

// scanString scans a quoted string.
func (s *tokenScanner) scanString(term byte) token {
	s.pos++

	i := s.pos

	for s.pos < len(s.bytes) && s.bytes[s.pos] != term {
		s.pos++
	}

	if s.pos == len(s.bytes) {
		panic("unterminated string")
	}

	text := string(s.bytes[i:s.pos])

	// skip the closing quote
	s.pos++

	return token{typ: tokenText, val: text}
}
