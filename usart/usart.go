// Package usart models an 8251-style USART UART: a two-port peripheral
// (data, status/control) that feeds the interrupt scheduler via a
// sticky "ever touched" latch.
package usart

import (
	"github.com/ajokela/z80-retroshield-emulator/io"
)

const (
	statusTxRDY = 0x01
	statusRxRDY = 0x02
	statusTxE   = 0x04
	statusDSR   = 0x80
)

// Peripheral is an 8251-style USART.
type Peripheral struct {
	In   *io.Queue
	Sink io.Sink

	// uses8251 latches true the first time any port on this peripheral
	// is touched and never clears; see DESIGN.md for the Open Question
	// this resolves literally rather than requiring an explicit mode bit.
	uses8251 bool
}

// New creates a USART peripheral against the given input queue and
// output sink.
func New(in *io.Queue, sink io.Sink) *Peripheral {
	return &Peripheral{In: in, Sink: sink}
}

// Uses8251 reports whether this peripheral has ever been touched,
// consumed by the interrupt scheduler (C7) to decide whether this ROM
// uses the interrupt-driven input model.
func (p *Peripheral) Uses8251() bool {
	return p.uses8251
}

// ReadStatus implements the DATA/CTRL-STATUS port read at STATUS.
func (p *Peripheral) ReadStatus() uint8 {
	p.uses8251 = true
	st := uint8(statusTxRDY | statusTxE | statusDSR)
	if p.In.Peek() {
		st |= statusRxRDY
	}
	return st
}

// WriteCtrl implements the STATUS/CTRL port write: mode and command
// bytes are accepted and ignored.
func (p *Peripheral) WriteCtrl(uint8) {
	p.uses8251 = true
}

// ReadData implements the DATA port read: consumed ASCII lowercase
// letters are uppercased and every other byte is returned unchanged, a
// firmware-compatibility quirk the target ROM's input path relies on.
func (p *Peripheral) ReadData() uint8 {
	p.uses8251 = true
	b, ok := p.In.Pop()
	if !ok {
		return 0
	}
	if b >= 'a' && b <= 'z' {
		b -= 'a' - 'A'
	}
	return b
}

// WriteData implements the DATA port write: emit the byte to the sink.
func (p *Peripheral) WriteData(v uint8) {
	p.uses8251 = true
	_ = p.Sink.WriteByte(v)
}
