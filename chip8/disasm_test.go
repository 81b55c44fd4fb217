package chip8

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDisassembleProgram(t *testing.T) {
	rom := append(program(0x00E0, 0x6A12, 0x0000, 0x5AB1, 0xF355), 0x7F)

	want := []string{
		"0200 - CLS",
		"0202 - LD     VA, #12",
		"0204 -",
		"0206 - ??     #5AB1",
		"0208 - LD     [I], V3",
		"020A - BYTE   #7F",
	}

	got := DisassembleProgram(rom, ProgramStart)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("listing: (-want, +got)\n%s", diff)
	}
}

func TestDisassembleAssembleRoundTrip(t *testing.T) {
	source := `
.START  ld i, SPRITE
        ld v0, 8
        drw v0, v0, 4
        shl v2
        jp START
.SPRITE byte $1..1, $.11., $.11., $1..1
`

	asm, err := Assemble([]byte(source))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		"0200 - LD     I, #20A",
		"0202 - LD     V0, #08",
		"0204 - DRW    V0, V0, 4",
		"0206 - SHL    V2",
		"0208 - JP     #200",
		"020A - SYS    #906",
		"020C - SYS    #609",
	}

	got := DisassembleProgram(asm.ROM, ProgramStart)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("listing: (-want, +got)\n%s", diff)
	}
}
