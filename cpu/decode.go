package cpu

// execOne fetches and executes one instruction, including any DD/FD
// prefix chain, and returns the total T-states consumed.
func (c *Chip) execOne() int {
	extra := 0
	idx := idxNone
	op := c.fetchOp8()
	for op == 0xDD || op == 0xFD {
		if op == 0xDD {
			idx = idxIX
		} else {
			idx = idxIY
		}
		extra += 4
		op = c.fetchOp8()
	}
	return extra + c.execOpcode(op, idx)
}

// execByte executes a single opcode byte presented directly (IM 0
// interrupt acknowledge) rather than fetched from PC. Any additional
// bytes the opcode needs (displacements, immediates, addresses) are
// still read from memory at the current PC, which is exact for the
// common RST-on-the-bus case and an approximation for other IM 0
// vectors.
func (c *Chip) execByte(op uint8) int {
	return c.execOpcode(op, idxNone)
}

// fetchOp8 fetches an opcode-selecting byte (not an operand byte) and
// bumps the refresh register, matching the Z80's per-M1-cycle R
// auto-increment.
func (c *Chip) fetchOp8() uint8 {
	v := c.fetch8()
	c.bumpR()
	return v
}

// execOpcode dispatches on the CB/ED prefixes and otherwise hands off to
// the main opcode matrix.
func (c *Chip) execOpcode(op uint8, idx idxMode) int {
	switch op {
	case 0xCB:
		st := &instState{idx: idx}
		if idx == idxNone {
			op2 := c.fetchOp8()
			return c.execCB(op2, st)
		}
		d := int8(c.fetch8())
		op2 := c.fetch8()
		c.presetEffAddr(st, d)
		return c.execCB(op2, st)
	case 0xED:
		op2 := c.fetchOp8()
		return c.execED(op2, idx)
	default:
		st := &instState{idx: idx}
		return c.execMain(op, st)
	}
}

// execMain executes the unprefixed (and DD/FD-prefixed) opcode matrix
// using the canonical x/y/z/p/q decomposition.
func (c *Chip) execMain(op uint8, st *instState) int {
	x := int(op >> 6)
	y := int((op >> 3) & 7)
	z := int(op & 7)
	p := y >> 1
	q := y & 1
	indexed := st.idx != idxNone

	switch x {
	case 0:
		switch z {
		case 0:
			return c.execX0Z0(y)
		case 1:
			if q == 0 {
				nn := c.fetch16()
				c.rpSet(st, p, nn)
				return 10
			}
			hl := c.rpGet(st, 2)
			add := c.rpGet(st, p)
			res, f := add16Flags(hl, add)
			c.WZ = hl + 1
			c.F = c.F&(FlagS|FlagZ|FlagPV) | f
			c.rpSet(st, 2, res)
			return 11
		case 2:
			return c.execX0Z2(q, p, st)
		case 3:
			if q == 0 {
				c.rpSet(st, p, c.rpGet(st, p)+1)
			} else {
				c.rpSet(st, p, c.rpGet(st, p)-1)
			}
			return 6
		case 4:
			return c.incR(y, st, indexed)
		case 5:
			return c.decR(y, st, indexed)
		case 6:
			if y == 6 {
				addr := c.effAddr(st)
				n := c.fetch8()
				c.writeByte(addr, n)
				if indexed {
					return 15
				}
				return 10
			}
			n := c.fetch8()
			c.regWrite(st.idx, y, n, st)
			return 7
		default: // 7
			c.execX0Z7(y)
			return 4
		}
	case 1:
		if y == 6 && z == 6 {
			c.Halted = true
			return 4
		}
		memOperand := y == 6 || z == 6
		srcIdx, dstIdx := st.idx, st.idx
		if memOperand {
			srcIdx, dstIdx = idxNone, idxNone
		}
		v := c.regRead(srcIdx, z, st)
		c.regWrite(dstIdx, y, v, st)
		if memOperand {
			if indexed {
				return 15
			}
			return 7
		}
		return 4
	case 2:
		v := c.regRead(st.idx, z, st)
		c.applyALU(y, v)
		if z == 6 {
			if indexed {
				return 15
			}
			return 7
		}
		return 4
	default: // 3
		return c.execX3(y, z, p, q, st, indexed)
	}
}

func (c *Chip) execX0Z0(y int) int {
	switch y {
	case 0:
		return 4 // NOP
	case 1:
		c.A, c.A2 = c.A2, c.A
		c.F, c.F2 = c.F2, c.F
		return 4
	case 2:
		d := int8(c.fetch8())
		c.B--
		if c.B != 0 {
			c.PC = uint16(int32(c.PC) + int32(d))
			c.WZ = c.PC
			return 13
		}
		return 8
	case 3:
		d := int8(c.fetch8())
		c.PC = uint16(int32(c.PC) + int32(d))
		c.WZ = c.PC
		return 12
	default:
		cc := y - 4
		d := int8(c.fetch8())
		if c.testCC(cc) {
			c.PC = uint16(int32(c.PC) + int32(d))
			c.WZ = c.PC
			return 12
		}
		return 7
	}
}

func (c *Chip) execX0Z2(q, p int, st *instState) int {
	switch {
	case q == 0 && p == 0:
		addr := c.BC()
		c.writeByte(addr, c.A)
		c.WZ = uint16(c.A)<<8 | (addr+1)&0xFF
		return 7
	case q == 0 && p == 1:
		addr := c.DE()
		c.writeByte(addr, c.A)
		c.WZ = uint16(c.A)<<8 | (addr+1)&0xFF
		return 7
	case q == 0 && p == 2:
		nn := c.fetch16()
		v := c.rpGet(st, 2)
		c.writeByte(nn, uint8(v))
		c.writeByte(nn+1, uint8(v>>8))
		c.WZ = nn + 1
		return 16
	case q == 0 && p == 3:
		nn := c.fetch16()
		c.writeByte(nn, c.A)
		c.WZ = uint16(c.A)<<8 | (nn+1)&0xFF
		return 13
	case q == 1 && p == 0:
		addr := c.BC()
		c.A = c.readByte(addr)
		c.WZ = addr + 1
		return 7
	case q == 1 && p == 1:
		addr := c.DE()
		c.A = c.readByte(addr)
		c.WZ = addr + 1
		return 7
	case q == 1 && p == 2:
		nn := c.fetch16()
		lo := c.readByte(nn)
		hi := c.readByte(nn + 1)
		c.rpSet(st, 2, uint16(hi)<<8|uint16(lo))
		c.WZ = nn + 1
		return 16
	default: // q==1, p==3
		nn := c.fetch16()
		c.A = c.readByte(nn)
		c.WZ = nn + 1
		return 13
	}
}

func (c *Chip) incR(y int, st *instState, indexed bool) int {
	if y == 6 {
		addr := c.effAddr(st)
		v := c.readByte(addr)
		res, f := incFlags8(v)
		f |= c.F & FlagC
		c.writeByte(addr, res)
		c.F = f
		if indexed {
			return 19
		}
		return 11
	}
	v := c.regRead(st.idx, y, st)
	res, f := incFlags8(v)
	f |= c.F & FlagC
	c.regWrite(st.idx, y, res, st)
	c.F = f
	return 4
}

func (c *Chip) decR(y int, st *instState, indexed bool) int {
	if y == 6 {
		addr := c.effAddr(st)
		v := c.readByte(addr)
		res, f := decFlags8(v)
		f |= c.F & FlagC
		c.writeByte(addr, res)
		c.F = f
		if indexed {
			return 19
		}
		return 11
	}
	v := c.regRead(st.idx, y, st)
	res, f := decFlags8(v)
	f |= c.F & FlagC
	c.regWrite(st.idx, y, res, st)
	c.F = f
	return 4
}

func (c *Chip) execX0Z7(y int) {
	switch y {
	case 0: // RLCA
		carry := c.A&0x80 != 0
		c.A = c.A<<1 | c.A>>7
		c.F = c.F&(FlagS|FlagZ|FlagPV) | xyFlags(c.A) | boolFlag(carry, FlagC)
	case 1: // RRCA
		carry := c.A&0x01 != 0
		c.A = c.A>>1 | c.A<<7
		c.F = c.F&(FlagS|FlagZ|FlagPV) | xyFlags(c.A) | boolFlag(carry, FlagC)
	case 2: // RLA
		carryIn := uint8(0)
		if c.flag(FlagC) {
			carryIn = 1
		}
		carryOut := c.A&0x80 != 0
		c.A = c.A<<1 | carryIn
		c.F = c.F&(FlagS|FlagZ|FlagPV) | xyFlags(c.A) | boolFlag(carryOut, FlagC)
	case 3: // RRA
		carryIn := uint8(0)
		if c.flag(FlagC) {
			carryIn = 0x80
		}
		carryOut := c.A&0x01 != 0
		c.A = c.A>>1 | carryIn
		c.F = c.F&(FlagS|FlagZ|FlagPV) | xyFlags(c.A) | boolFlag(carryOut, FlagC)
	case 4:
		c.execDAA()
	case 5: // CPL
		c.A = ^c.A
		c.F = c.F&(FlagS|FlagZ|FlagPV|FlagC) | FlagH | FlagN | xyFlags(c.A)
	case 6: // SCF
		c.F = c.F&(FlagS|FlagZ|FlagPV) | FlagC | xyFlags(c.A)
	default: // 7: CCF
		carry := c.flag(FlagC)
		f := c.F&(FlagS|FlagZ|FlagPV) | xyFlags(c.A)
		if carry {
			f |= FlagH
		} else {
			f |= FlagC
		}
		c.F = f
	}
}

func boolFlag(v bool, mask uint8) uint8 {
	if v {
		return mask
	}
	return 0
}

func (c *Chip) execDAA() {
	a := c.A
	adjust := uint8(0)
	carry := c.flag(FlagC)
	halfCarry := c.flag(FlagH)
	subtract := c.flag(FlagN)

	if halfCarry || (!subtract && a&0x0F > 9) {
		adjust |= 0x06
	}
	if carry || (!subtract && a > 0x99) {
		adjust |= 0x60
		carry = true
	}

	var res uint8
	if subtract {
		res = a - adjust
	} else {
		res = a + adjust
	}

	f := szFlags(res)
	if parityTable[res] {
		f |= FlagPV
	}
	if subtract {
		f |= FlagN
		if halfCarry && a&0x0F < 0x06 {
			f |= FlagH
		}
	} else if a&0x0F > 0x09 {
		f |= FlagH
	}
	if carry {
		f |= FlagC
	}
	c.A = res
	c.F = f
}

func (c *Chip) execX3(y, z, p, q int, st *instState, indexed bool) int {
	switch z {
	case 0: // RET cc
		if c.testCC(y) {
			c.PC = c.pop16()
			c.WZ = c.PC
			return 11
		}
		return 5
	case 1:
		if q == 0 {
			c.rp2Set(st, p, c.pop16())
			return 10
		}
		switch p {
		case 0: // RET
			c.PC = c.pop16()
			c.WZ = c.PC
			return 10
		case 1: // EXX
			c.B, c.B2 = c.B2, c.B
			c.C, c.C2 = c.C2, c.C
			c.D, c.D2 = c.D2, c.D
			c.E, c.E2 = c.E2, c.E
			c.H, c.H2 = c.H2, c.H
			c.L, c.L2 = c.L2, c.L
			return 4
		case 2: // JP (HL)/(IX)/(IY)
			c.PC = c.rpGet(st, 2)
			return 4
		default: // 3: LD SP,HL/IX/IY
			c.SP = c.rpGet(st, 2)
			return 6
		}
	case 2: // JP cc,nn
		nn := c.fetch16()
		c.WZ = nn
		if c.testCC(y) {
			c.PC = nn
		}
		return 10
	case 3:
		switch y {
		case 0: // JP nn
			nn := c.fetch16()
			c.PC, c.WZ = nn, nn
			return 10
		case 2: // OUT (n),A
			n := c.fetch8()
			c.portOut(n, c.A)
			c.WZ = uint16(c.A)<<8 | uint16(n+1)&0xFF
			return 11
		case 3: // IN A,(n)
			n := c.fetch8()
			c.WZ = uint16(c.A)<<8 | uint16(n) + 1
			c.A = c.portIn(n)
			return 11
		case 4: // EX (SP),HL/IX/IY
			addr := c.SP
			lo := c.readByte(addr)
			hi := c.readByte(addr + 1)
			v := c.rpGet(st, 2)
			c.writeByte(addr, uint8(v))
			c.writeByte(addr+1, uint8(v>>8))
			c.rpSet(st, 2, uint16(hi)<<8|uint16(lo))
			c.WZ = c.rpGet(st, 2)
			return 19
		case 5: // EX DE,HL -- always the real HL, unaffected by index prefix
			d, e := c.D, c.E
			c.D, c.E = c.H, c.L
			c.H, c.L = d, e
			return 4
		case 6: // DI
			c.IFF1, c.IFF2 = false, false
			return 4
		default: // 7: EI
			c.IFF1, c.IFF2 = true, true
			c.iffDelay = 1
			return 4
		}
	case 4: // CALL cc,nn
		nn := c.fetch16()
		c.WZ = nn
		if c.testCC(y) {
			c.push16(c.PC)
			c.PC = nn
			return 17
		}
		return 10
	case 5:
		if q == 0 {
			c.push16(c.rp2Get(st, p))
			return 11
		}
		// p==0: CALL nn. p==1/2/3 are the DD/ED/FD prefixes, stripped
		// before execMain is reached.
		nn := c.fetch16()
		c.WZ = nn
		c.push16(c.PC)
		c.PC = nn
		return 17
	case 6: // ALU A,n
		n := c.fetch8()
		c.applyALU(y, n)
		return 7
	default: // 7: RST y*8
		c.push16(c.PC)
		c.PC = uint16(y) * 8
		c.WZ = c.PC
		return 11
	}
}
