package cpu

// instState holds the per-instruction scratch the decoder needs: the
// active index-register mode and a lazily-fetched, instruction-lifetime
// (IX+d)/(IY+d) effective address so a single displacement byte serves
// every operand reference within one opcode.
type instState struct {
	idx     idxMode
	dValid  bool
	eaCache uint16
}

// effAddr returns the effective address for register slot 6 ((HL), or
// (IX+d)/(IY+d) under an active index prefix), fetching and caching the
// displacement byte on first use within this instruction.
func (c *Chip) effAddr(st *instState) uint16 {
	if st.idx == idxNone {
		return c.HL()
	}
	if !st.dValid {
		d := int8(c.fetch8())
		base := c.IX
		if st.idx == idxIY {
			base = c.IY
		}
		st.eaCache = uint16(int32(base) + int32(d))
		st.dValid = true
		c.WZ = st.eaCache
	}
	return st.eaCache
}

// presetEffAddr is used by the DDCB/FDCB decoder, which reads the
// displacement byte before the opcode byte rather than lazily.
func (c *Chip) presetEffAddr(st *instState, d int8) {
	base := c.IX
	if st.idx == idxIY {
		base = c.IY
	}
	st.eaCache = uint16(int32(base) + int32(d))
	st.dValid = true
	c.WZ = st.eaCache
}

// regRead reads the 8-bit register/operand selected by a 3-bit field
// (0=B 1=C 2=D 3=E 4=H 5=L 6=(HL) 7=A). idx controls H/L substitution
// for slots 4/5 (pass idxNone to force real H/L even under an active
// prefix, as real hardware does for the non-memory operand of an LD
// r,(HL)-turned-(IX+d) or LD (HL),r-turned-(IX+d) pairing); st.idx
// always governs the slot-6 effective address regardless of idx.
func (c *Chip) regRead(idx idxMode, r int, st *instState) uint8 {
	switch r {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		switch idx {
		case idxIX:
			return uint8(c.IX >> 8)
		case idxIY:
			return uint8(c.IY >> 8)
		default:
			return c.H
		}
	case 5:
		switch idx {
		case idxIX:
			return uint8(c.IX)
		case idxIY:
			return uint8(c.IY)
		default:
			return c.L
		}
	case 6:
		return c.readByte(c.effAddr(st))
	default: // 7
		return c.A
	}
}

// regWrite writes the 8-bit register/operand selected by a 3-bit field.
// See regRead for the meaning of idx vs st.idx.
func (c *Chip) regWrite(idx idxMode, r int, v uint8, st *instState) {
	switch r {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		switch idx {
		case idxIX:
			c.IX = c.IX&0x00FF | uint16(v)<<8
		case idxIY:
			c.IY = c.IY&0x00FF | uint16(v)<<8
		default:
			c.H = v
		}
	case 5:
		switch idx {
		case idxIX:
			c.IX = c.IX&0xFF00 | uint16(v)
		case idxIY:
			c.IY = c.IY&0xFF00 | uint16(v)
		default:
			c.L = v
		}
	case 6:
		c.writeByte(c.effAddr(st), v)
	default: // 7
		c.A = v
	}
}

// rpGet reads the 16-bit register pair selected by a 2-bit field in the
// "dd"/"ss" position (0=BC 1=DE 2=HL/IX/IY 3=SP).
func (c *Chip) rpGet(st *instState, p int) uint16 {
	switch p {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		switch st.idx {
		case idxIX:
			return c.IX
		case idxIY:
			return c.IY
		default:
			return c.HL()
		}
	default: // 3
		return c.SP
	}
}

// rpSet writes the 16-bit register pair selected by a 2-bit field in the
// "dd"/"ss" position.
func (c *Chip) rpSet(st *instState, p int, v uint16) {
	switch p {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		switch st.idx {
		case idxIX:
			c.IX = v
		case idxIY:
			c.IY = v
		default:
			c.SetHL(v)
		}
	default: // 3
		c.SP = v
	}
}

// rp2Get reads the 16-bit register pair selected in the PUSH/POP
// position (0=BC 1=DE 2=HL/IX/IY 3=AF).
func (c *Chip) rp2Get(st *instState, p int) uint16 {
	if p == 3 {
		return c.AF()
	}
	return c.rpGet(st, p)
}

// rp2Set writes the 16-bit register pair selected in the PUSH/POP
// position.
func (c *Chip) rp2Set(st *instState, p int, v uint16) {
	if p == 3 {
		c.SetAF(v)
		return
	}
	c.rpSet(st, p, v)
}

// testCC evaluates one of the eight condition codes (NZ Z NC C PO PE P M).
func (c *Chip) testCC(y int) bool {
	switch y {
	case 0:
		return !c.flag(FlagZ)
	case 1:
		return c.flag(FlagZ)
	case 2:
		return !c.flag(FlagC)
	case 3:
		return c.flag(FlagC)
	case 4:
		return !c.flag(FlagPV)
	case 5:
		return c.flag(FlagPV)
	case 6:
		return !c.flag(FlagS)
	default: // 7
		return c.flag(FlagS)
	}
}
