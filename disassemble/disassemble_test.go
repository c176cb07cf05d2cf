package disassemble_test

import (
	"testing"

	"github.com/ajokela/z80-retroshield-emulator/cpu"
	"github.com/ajokela/z80-retroshield-emulator/disassemble"
)

// flatMem backs both a cpu.Chip (to measure how many bytes Step actually
// consumes) and disassemble.Reader (to measure how many bytes Step
// reports), over the same byte image.
type flatMem struct {
	data [65536]uint8
}

func (m *flatMem) Read(addr uint16) uint8         { return m.data[addr] }
func (m *flatMem) ReadByte(addr uint16) uint8     { return m.data[addr] }
func (m *flatMem) WriteByte(addr uint16, v uint8) { m.data[addr] = v }
func (m *flatMem) PortIn(uint8) uint8             { return 0xFF }
func (m *flatMem) PortOut(uint8, uint8)           {}

// checkAgreement loads the given bytes at address 0, asks the
// disassembler how long the instruction is, then steps a fresh chip over
// the same image and checks the chip's PC advanced (ignoring any
// relative jump/call/rst redirection) by the same amount.
func checkAgreement(t *testing.T, bytes ...uint8) {
	t.Helper()
	checkAgreementWith(t, nil, bytes...)
}

// checkAgreementWith is checkAgreement with an optional setup hook run on
// the chip before the single Step, for instructions (like LDIR with
// BC==1) whose straight-line-vs-repeat behavior depends on register state.
func checkAgreementWith(t *testing.T, setup func(*cpu.Chip), bytes ...uint8) {
	t.Helper()
	m := &flatMem{}
	for i, b := range bytes {
		m.data[i] = b
	}
	text, length := disassemble.Step(0, m)

	c, err := cpu.New(cpu.BusHooks{
		ReadByte:  m.ReadByte,
		WriteByte: m.WriteByte,
		PortIn:    m.PortIn,
		PortOut:   m.PortOut,
	})
	if err != nil {
		t.Fatalf("cpu.New: %v", err)
	}
	if setup != nil {
		setup(c)
	}
	c.Step()

	// Instructions that redirect control flow (JP/JR/CALL/RET/RST/DJNZ)
	// leave PC pointing at the jump target, not start+length; only
	// straight-line instructions can be checked by PC delta.
	if isStraightLine(bytes[0]) {
		if int(c.PC) != length {
			t.Errorf("bytes %v: disassembler length %d (%q), cpu consumed %d", bytes, length, text, c.PC)
		}
	}
}

func isStraightLine(op uint8) bool {
	switch op {
	case 0xC3, 0xC2, 0xCA, 0xD2, 0xDA, 0xE2, 0xEA, 0xF2, 0xFA, // JP
		0x18, 0x20, 0x28, 0x30, 0x38, 0x10, // JR/DJNZ
		0xCD, 0xC4, 0xCC, 0xD4, 0xDC, 0xE4, 0xEC, 0xF4, 0xFC, // CALL
		0xC9, 0xC0, 0xC8, 0xD0, 0xD8, 0xE0, 0xE8, 0xF0, 0xF8, // RET
		0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF, // RST
		0xE9: // JP (HL)
		return false
	}
	return true
}

func TestLengthAgreementUnprefixed(t *testing.T) {
	cases := [][]uint8{
		{0x00},             // NOP
		{0x3E, 0x42},       // LD A,n
		{0x21, 0x34, 0x12}, // LD HL,nn
		{0x47},             // LD B,A
		{0x36, 0x99},       // LD (HL),n
		{0xC6, 0x01},       // ADD A,n
		{0x76},             // HALT -- straight-line (doesn't redirect PC)
	}
	for _, c := range cases {
		checkAgreement(t, c...)
	}
}

func TestLengthAgreementCBPrefix(t *testing.T) {
	cases := [][]uint8{
		{0xCB, 0x00}, // RLC B
		{0xCB, 0x46}, // BIT 0,(HL)
		{0xCB, 0xC1}, // SET 0,C
	}
	for _, c := range cases {
		checkAgreement(t, c...)
	}
}

func TestLengthAgreementEDPrefix(t *testing.T) {
	cases := [][]uint8{
		{0xED, 0x44},             // NEG
		{0xED, 0x43, 0x00, 0x10}, // LD (nn),BC
		{0xED, 0x78},             // IN A,(C)
	}
	for _, c := range cases {
		checkAgreement(t, c...)
	}
}

// TestLengthAgreementEDBlockNonRepeating pins BC=1 so LDIR completes in a
// single pass (no PC-2 repeat redirection), letting the straight-line
// length check apply to a block instruction.
func TestLengthAgreementEDBlockNonRepeating(t *testing.T) {
	checkAgreementWith(t, func(c *cpu.Chip) { c.SetBC(1) }, 0xED, 0xB0)
}

func TestLengthAgreementIndexedPrefix(t *testing.T) {
	cases := [][]uint8{
		{0xDD, 0x21, 0x00, 0x10}, // LD IX,nn
		{0xDD, 0x7E, 0x05},       // LD A,(IX+5)
		{0xFD, 0x36, 0x02, 0x99}, // LD (IY+2),n
		{0xDD, 0x7C},             // LD A,IXH
	}
	for _, c := range cases {
		checkAgreement(t, c...)
	}
}

func TestLengthAgreementDDCBFDCB(t *testing.T) {
	cases := [][]uint8{
		{0xDD, 0xCB, 0x05, 0x06}, // RLC (IX+5)
		{0xFD, 0xCB, 0x02, 0x46}, // BIT 0,(IY+2)
		{0xDD, 0xCB, 0x01, 0x00}, // RLC (IX+1),B (undocumented copy form)
	}
	for _, c := range cases {
		checkAgreement(t, c...)
	}
}
