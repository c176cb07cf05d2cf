// Package disassemble renders Z80 machine code as assembly text, one
// instruction at a time, following the same x/y/z/p/q opcode
// decomposition and DD/FD/CB/ED prefix handling as package cpu so the
// byte lengths it reports always agree with what cpu.Chip.Step actually
// consumes.
package disassemble

import "fmt"

// Reader is the read side of the address space the disassembler walks.
// memory.Bank satisfies it.
type Reader interface {
	Read(addr uint16) uint8
}

var reg8Name = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
var rpName = [4]string{"BC", "DE", "HL", "SP"}
var rp2Name = [4]string{"BC", "DE", "HL", "AF"}
var ccName = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}
var aluName = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}

// idxName carries the HL-vs-IX-vs-IY substitution for the current
// instruction's reg8/rp tables.
type idxName struct {
	hl   string
	l    string
	h    string
	mem  func(d int8) string
	none bool
}

func plainIdx() idxName {
	return idxName{hl: "HL", l: "L", h: "H", none: true}
}

func ixIdx() idxName {
	return idxName{hl: "IX", l: "IXL", h: "IXH", mem: func(d int8) string { return fmt.Sprintf("(IX%+d)", d) }}
}

func iyIdx() idxName {
	return idxName{hl: "IY", l: "IYL", h: "IYH", mem: func(d int8) string { return fmt.Sprintf("(IY%+d)", d) }}
}

func (ix idxName) reg8(r int, disp int8) string {
	switch r {
	case 4:
		return ix.h
	case 5:
		return ix.l
	case 6:
		if ix.none {
			return "(HL)"
		}
		return ix.mem(disp)
	default:
		return reg8Name[r]
	}
}

func (ix idxName) rp(p int) string {
	if p == 2 {
		return ix.hl
	}
	return rpName[p]
}

func (ix idxName) rp2(p int) string {
	if p == 2 {
		return ix.hl
	}
	return rp2Name[p]
}

func (ix idxName) hlName() string { return ix.hl }

// Step disassembles the instruction at pc and returns its text and
// length in bytes.
func Step(pc uint16, r Reader) (string, int) {
	start := pc
	op := r.Read(pc)
	pc++
	ix := plainIdx()
	for op == 0xDD || op == 0xFD {
		if op == 0xDD {
			ix = ixIdx()
		} else {
			ix = iyIdx()
		}
		op = r.Read(pc)
		pc++
	}

	switch op {
	case 0xCB:
		return stepCB(start, pc, r, ix)
	case 0xED:
		op2 := r.Read(pc)
		pc++
		return stepED(start, pc, op2, r)
	default:
		return stepMain(start, pc, op, r, ix)
	}
}

func u8(pc uint16, r Reader) (uint8, uint16) {
	return r.Read(pc), pc + 1
}

func u16(pc uint16, r Reader) (uint16, uint16) {
	lo := r.Read(pc)
	hi := r.Read(pc + 1)
	return uint16(hi)<<8 | uint16(lo), pc + 2
}

func stepCB(start, pc uint16, r Reader, ix idxName) (string, int) {
	var disp int8
	if !ix.none {
		d, npc := u8(pc, r)
		disp = int8(d)
		pc = npc
	}
	op2, npc := u8(pc, r)
	pc = npc
	x := int(op2 >> 6)
	y := int((op2 >> 3) & 7)
	z := int(op2 & 7)
	operand := ix.reg8(z, disp)
	if !ix.none {
		operand = ix.mem(disp)
	}

	var text string
	switch x {
	case 0:
		names := [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SLL", "SRL"}
		text = fmt.Sprintf("%s %s", names[y], operand)
		if !ix.none && z != 6 {
			text += fmt.Sprintf(",%s", reg8Name[z])
		}
	case 1:
		text = fmt.Sprintf("BIT %d,%s", y, operand)
	case 2:
		text = fmt.Sprintf("RES %d,%s", y, operand)
		if !ix.none && z != 6 {
			text += fmt.Sprintf(",%s", reg8Name[z])
		}
	default:
		text = fmt.Sprintf("SET %d,%s", y, operand)
		if !ix.none && z != 6 {
			text += fmt.Sprintf(",%s", reg8Name[z])
		}
	}
	return text, int(pc - start)
}

func stepED(start, pc uint16, op2 uint8, r Reader) (string, int) {
	x := int(op2 >> 6)
	y := int((op2 >> 3) & 7)
	z := int(op2 & 7)
	q := y & 1
	p := y >> 1

	var text string
	switch {
	case x == 1 && z == 0:
		if y == 6 {
			text = "IN (C)"
		} else {
			text = fmt.Sprintf("IN %s,(C)", reg8Name[y])
		}
	case x == 1 && z == 1:
		if y == 6 {
			text = "OUT (C),0"
		} else {
			text = fmt.Sprintf("OUT (C),%s", reg8Name[y])
		}
	case x == 1 && z == 2:
		if q == 0 {
			text = fmt.Sprintf("SBC HL,%s", rpName[p])
		} else {
			text = fmt.Sprintf("ADC HL,%s", rpName[p])
		}
	case x == 1 && z == 3:
		nn, npc := u16(pc, r)
		pc = npc
		if q == 0 {
			text = fmt.Sprintf("LD ($%04X),%s", nn, rpName[p])
		} else {
			text = fmt.Sprintf("LD %s,($%04X)", rpName[p], nn)
		}
	case x == 1 && z == 4:
		text = "NEG"
	case x == 1 && z == 5:
		if y == 1 {
			text = "RETI"
		} else {
			text = "RETN"
		}
	case x == 1 && z == 6:
		imTable := [8]int{0, 0, 1, 2, 0, 0, 1, 2}
		text = fmt.Sprintf("IM %d", imTable[y])
	case x == 1 && z == 7:
		names := [8]string{"LD I,A", "LD R,A", "LD A,I", "LD A,R", "RRD", "RLD", "NOP", "NOP"}
		text = names[y]
	case x == 2 && y >= 4 && z <= 3:
		table := [4][4]string{
			{"LDI", "CPI", "INI", "OUTI"},
			{"LDD", "CPD", "IND", "OUTD"},
			{"LDIR", "CPIR", "INIR", "OTIR"},
			{"LDDR", "CPDR", "INDR", "OTDR"},
		}
		text = table[y-4][z]
	default:
		text = fmt.Sprintf("DB $ED,$%02X", op2)
	}
	return text, int(pc - start)
}

func stepMain(start, pc uint16, op uint8, r Reader, ix idxName) (string, int) {
	x := int(op >> 6)
	y := int((op >> 3) & 7)
	z := int(op & 7)
	p := y >> 1
	q := y & 1

	var text string
	switch x {
	case 0:
		text, pc = disasmX0(pc, y, z, p, q, r, ix)
	case 1:
		if y == 6 && z == 6 {
			text = "HALT"
		} else {
			memOperand := y == 6 || z == 6
			var d int8
			if memOperand && !ix.none {
				db, npc := u8(pc, r)
				d = int8(db)
				pc = npc
			}
			dst, src := ix.reg8(y, d), ix.reg8(z, d)
			if memOperand && !ix.none {
				// The register beside an (IX+d)/(IY+d) operand is the
				// real H/L, not IXH/IXL, as in package cpu.
				if y != 6 {
					dst = reg8Name[y]
				}
				if z != 6 {
					src = reg8Name[z]
				}
			}
			text = fmt.Sprintf("LD %s,%s", dst, src)
		}
	case 2:
		memOperand := z == 6
		var d int8
		if memOperand && !ix.none {
			db, npc := u8(pc, r)
			d = int8(db)
			pc = npc
		}
		text = aluName[y] + ix.reg8(z, d)
	default:
		text, pc = disasmX3(pc, y, z, p, q, r, ix)
	}
	return text, int(pc - start)
}

func disasmX0(pc uint16, y, z, p, q int, r Reader, ix idxName) (string, uint16) {
	switch z {
	case 0:
		switch y {
		case 0:
			return "NOP", pc
		case 1:
			return "EX AF,AF'", pc
		case 2:
			d, npc := u8(pc, r)
			return fmt.Sprintf("DJNZ $%04X", npc+uint16(int8(d))), npc
		case 3:
			d, npc := u8(pc, r)
			return fmt.Sprintf("JR $%04X", npc+uint16(int8(d))), npc
		default:
			d, npc := u8(pc, r)
			return fmt.Sprintf("JR %s,$%04X", ccName[y-4], npc+uint16(int8(d))), npc
		}
	case 1:
		if q == 0 {
			nn, npc := u16(pc, r)
			return fmt.Sprintf("LD %s,$%04X", ix.rp(p), nn), npc
		}
		return fmt.Sprintf("ADD %s,%s", ix.hlName(), ix.rp(p)), pc
	case 2:
		return disasmIndirect(pc, q, p, r, ix)
	case 3:
		name := "INC"
		if q == 1 {
			name = "DEC"
		}
		return fmt.Sprintf("%s %s", name, ix.rp(p)), pc
	case 4:
		d, npc := dispIfMem(pc, y, r, ix)
		return fmt.Sprintf("INC %s", ix.reg8(y, d)), npc
	case 5:
		d, npc := dispIfMem(pc, y, r, ix)
		return fmt.Sprintf("DEC %s", ix.reg8(y, d)), npc
	case 6:
		d, npc := dispIfMem(pc, y, r, ix)
		n, npc2 := u8(npc, r)
		return fmt.Sprintf("LD %s,$%02X", ix.reg8(y, d), n), npc2
	default:
		names := [8]string{"RLCA", "RRCA", "RLA", "RRA", "DAA", "CPL", "SCF", "CCF"}
		return names[y], pc
	}
}

// dispIfMem reads the (IX+d)/(IY+d) displacement byte when slot r is the
// memory operand (r==6) under an active index prefix.
func dispIfMem(pc uint16, r int, rd Reader, ix idxName) (int8, uint16) {
	if r == 6 && !ix.none {
		d, npc := u8(pc, rd)
		return int8(d), npc
	}
	return 0, pc
}

func disasmIndirect(pc uint16, q, p int, r Reader, ix idxName) (string, uint16) {
	switch {
	case q == 0 && p == 0:
		return "LD (BC),A", pc
	case q == 0 && p == 1:
		return "LD (DE),A", pc
	case q == 0 && p == 2:
		nn, npc := u16(pc, r)
		return fmt.Sprintf("LD ($%04X),%s", nn, ix.hlName()), npc
	case q == 0 && p == 3:
		nn, npc := u16(pc, r)
		return fmt.Sprintf("LD ($%04X),A", nn), npc
	case q == 1 && p == 0:
		return "LD A,(BC)", pc
	case q == 1 && p == 1:
		return "LD A,(DE)", pc
	case q == 1 && p == 2:
		nn, npc := u16(pc, r)
		return fmt.Sprintf("LD %s,($%04X)", ix.hlName(), nn), npc
	default:
		nn, npc := u16(pc, r)
		return fmt.Sprintf("LD A,($%04X)", nn), npc
	}
}

func disasmX3(pc uint16, y, z, p, q int, r Reader, ix idxName) (string, uint16) {
	switch z {
	case 0:
		return fmt.Sprintf("RET %s", ccName[y]), pc
	case 1:
		if q == 0 {
			return fmt.Sprintf("POP %s", ix.rp2(p)), pc
		}
		switch p {
		case 0:
			return "RET", pc
		case 1:
			return "EXX", pc
		case 2:
			return fmt.Sprintf("JP (%s)", ix.hlName()), pc
		default:
			return fmt.Sprintf("LD SP,%s", ix.hlName()), pc
		}
	case 2:
		nn, npc := u16(pc, r)
		return fmt.Sprintf("JP %s,$%04X", ccName[y], nn), npc
	case 3:
		switch y {
		case 0:
			nn, npc := u16(pc, r)
			return fmt.Sprintf("JP $%04X", nn), npc
		case 2:
			n, npc := u8(pc, r)
			return fmt.Sprintf("OUT ($%02X),A", n), npc
		case 3:
			n, npc := u8(pc, r)
			return fmt.Sprintf("IN A,($%02X)", n), npc
		case 4:
			return fmt.Sprintf("EX (SP),%s", ix.hlName()), pc
		case 5:
			return "EX DE,HL", pc
		case 6:
			return "DI", pc
		default:
			return "EI", pc
		}
	case 4:
		nn, npc := u16(pc, r)
		return fmt.Sprintf("CALL %s,$%04X", ccName[y], nn), npc
	case 5:
		if q == 0 {
			return fmt.Sprintf("PUSH %s", ix.rp2(p)), pc
		}
		nn, npc := u16(pc, r)
		return fmt.Sprintf("CALL $%04X", nn), npc
	case 6:
		n, npc := u8(pc, r)
		return aluName[y] + fmt.Sprintf("$%02X", n), npc
	default:
		return fmt.Sprintf("RST $%02X", y*8), pc
	}
}
