// Package bus implements C8: it routes the Z80 core's memory and I/O
// callbacks to the memory map and to whichever peripheral owns a given
// port, exactly as described by the port map in spec.md §6. Ports owned
// by no peripheral read 0xFF and drop writes.
package bus

import "github.com/ajokela/z80-retroshield-emulator/memory"

const (
	portUSARTData   = 0x00
	portUSARTStatus = 0x01

	portSDCmd     = 0x10
	portSDStatus  = 0x11
	portSDData    = 0x12
	portSDFname   = 0x13
	portSDSeekLo  = 0x14
	portSDSeekHi  = 0x15

	portACIAStatus = 0x80
	portACIAData   = 0x81
)

// USART is the subset of usart.Peripheral the bus drives.
type USART interface {
	ReadData() uint8
	WriteData(uint8)
	ReadStatus() uint8
	WriteCtrl(uint8)
}

// ACIA is the subset of acia.Peripheral the bus drives.
type ACIA interface {
	ReadData() uint8
	WriteData(uint8)
	ReadStatus() uint8
	WriteCtrl(uint8)
}

// SD is the subset of sd.Peripheral the bus drives.
type SD interface {
	ReadStatus() uint8
	ReadData() uint8
	WriteData(uint8)
	WriteCommand(uint8)
	WriteFilename(uint8)
	WriteSeekLo(uint8)
	WriteSeekHi(uint8)
}

// Bus wires the CPU core's four bus callbacks to the memory map and the
// three peripherals. Peripheral ownership of a port is fixed at
// construction and immutable for the lifetime of the process.
type Bus struct {
	Mem   memory.Bank
	USART USART
	ACIA  ACIA
	SD    SD
}

// New creates a Bus over the given memory map and peripherals. Any of
// USART, ACIA, SD may be nil if that peripheral is not wired up in this
// configuration; its ports then behave as unowned (0xFF / dropped).
func New(mem memory.Bank, usart USART, acia ACIA, sd SD) *Bus {
	return &Bus{Mem: mem, USART: usart, ACIA: acia, SD: sd}
}

// ReadByte implements cpu.ReadByte.
func (b *Bus) ReadByte(addr uint16) uint8 { return b.Mem.Read(addr) }

// WriteByte implements cpu.WriteByte.
func (b *Bus) WriteByte(addr uint16, v uint8) { b.Mem.Write(addr, v) }

// PortIn implements cpu.PortIn.
func (b *Bus) PortIn(port uint8) uint8 {
	switch port {
	case portUSARTData:
		if b.USART != nil {
			return b.USART.ReadData()
		}
	case portUSARTStatus:
		if b.USART != nil {
			return b.USART.ReadStatus()
		}
	case portSDStatus:
		if b.SD != nil {
			return b.SD.ReadStatus()
		}
	case portSDData:
		if b.SD != nil {
			return b.SD.ReadData()
		}
	case portACIAStatus:
		if b.ACIA != nil {
			return b.ACIA.ReadStatus()
		}
	case portACIAData:
		if b.ACIA != nil {
			return b.ACIA.ReadData()
		}
	}
	return 0xFF
}

// PortOut implements cpu.PortOut.
func (b *Bus) PortOut(port uint8, v uint8) {
	switch port {
	case portUSARTData:
		if b.USART != nil {
			b.USART.WriteData(v)
		}
	case portUSARTStatus:
		if b.USART != nil {
			b.USART.WriteCtrl(v)
		}
	case portSDCmd:
		if b.SD != nil {
			b.SD.WriteCommand(v)
		}
	case portSDData:
		if b.SD != nil {
			b.SD.WriteData(v)
		}
	case portSDFname:
		if b.SD != nil {
			b.SD.WriteFilename(v)
		}
	case portSDSeekLo:
		if b.SD != nil {
			b.SD.WriteSeekLo(v)
		}
	case portSDSeekHi:
		if b.SD != nil {
			b.SD.WriteSeekHi(v)
		}
	case portACIAStatus:
		if b.ACIA != nil {
			b.ACIA.WriteCtrl(v)
		}
	case portACIAData:
		if b.ACIA != nil {
			b.ACIA.WriteData(v)
		}
	}
}
