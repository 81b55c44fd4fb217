package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDecodeRoundTrip(t *testing.T) {
	seen := make(map[Op]bool)

	for w := 0; w <= 0xFFFF; w++ {
		word := uint16(w)

		inst, err := Decode(word)
		if err != nil {
			assert.True(t, errors.Is(err, ErrUnknownOpcode))
			continue
		}

		if got := inst.Encode(); got != word {
			t.Fatalf("Encode(Decode(#%04X)) = #%04X", word, got)
		}

		seen[inst.Op] = true
	}

	// every instruction decodes from some word
	assert.Equal(t, int(opCount)-1, len(seen))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		word uint16
		want Instruction
	}{
		{0x00E0, Instruction{Op: OpCLS, X: 0, Y: 0xE, N: 0, KK: 0xE0, NNN: 0x0E0}},
		{0x0123, Instruction{Op: OpSYS, X: 1, Y: 2, N: 3, KK: 0x23, NNN: 0x123}},
		{0x7A05, Instruction{Op: OpADDByte, X: 0xA, Y: 0, N: 5, KK: 0x05, NNN: 0xA05}},
		{0x8AB6, Instruction{Op: OpSHR, X: 0xA, Y: 0xB, N: 6, KK: 0xB6, NNN: 0xAB6}},
		{0xD125, Instruction{Op: OpDRW, X: 1, Y: 2, N: 5, KK: 0x25, NNN: 0x125}},
		{0xF565, Instruction{Op: OpLDVxI, X: 5, Y: 6, N: 5, KK: 0x65, NNN: 0x565}},
	}

	for _, tt := range tests {
		inst, err := Decode(tt.word)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, inst)
	}
}

func TestDecodeUnknown(t *testing.T) {
	for _, word := range []uint16{0x5001, 0x900F, 0x8008, 0x800F, 0xE000, 0xE0FF, 0xF000, 0xF0FF} {
		_, err := Decode(word)
		assert.True(t, errors.Is(err, ErrUnknownOpcode))
	}
}

func TestInstructionString(t *testing.T) {
	tests := []struct {
		word uint16
		want string
	}{
		{0x00E0, "CLS"},
		{0x00EE, "RET"},
		{0x1234, "JP     #234"},
		{0x2ABC, "CALL   #ABC"},
		{0x3105, "SE     V1, #05"},
		{0x5120, "SE     V1, V2"},
		{0x6AFF, "LD     VA, #FF"},
		{0x8124, "ADD    V1, V2"},
		{0x8116, "SHR    V1"},
		{0x812E, "SHL    V1, V2"},
		{0xA300, "LD     I, #300"},
		{0xB200, "JP     V0, #200"},
		{0xC30F, "RND    V3, #0F"},
		{0xD015, "DRW    V0, V1, 5"},
		{0xE19E, "SKP    V1"},
		{0xF10A, "LD     V1, K"},
		{0xF229, "LD     F, V2"},
		{0xF333, "LD     B, V3"},
		{0xF355, "LD     [I], V3"},
		{0xF365, "LD     V3, [I]"},
	}

	for _, tt := range tests {
		inst, err := Decode(tt.word)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, inst.String())
	}
}
