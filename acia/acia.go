// Package acia models a 6850-style ACIA UART: a two-port peripheral
// (status/control, data) that firmwares poll rather than interrupt-drive.
package acia

import "github.com/ajokela/z80-retroshield-emulator/io"

const (
	statusTDRE = 0x02 // transmit-data-register-empty, always set
	statusRDRF = 0x01 // receive-data-register-full
)

// Peripheral is a 6850-style ACIA. Output is pushed to Sink; input is
// drawn from In, a shared SPSC queue the front end feeds.
type Peripheral struct {
	In   *io.Queue
	Sink io.Sink

	ctrl uint8
}

// New creates an ACIA peripheral against the given input queue and
// output sink.
func New(in *io.Queue, sink io.Sink) *Peripheral {
	return &Peripheral{In: in, Sink: sink}
}

// ReadStatus implements the STATUS/CTRL port read.
func (p *Peripheral) ReadStatus() uint8 {
	st := uint8(statusTDRE)
	if p.In.Peek() {
		st |= statusRDRF
	}
	return st
}

// WriteCtrl implements the STATUS/CTRL port write: the value is stored
// as an opaque latch with no behavioral effect; no port read returns it.
func (p *Peripheral) WriteCtrl(v uint8) {
	p.ctrl = v
}

// ReadData implements the DATA port read.
func (p *Peripheral) ReadData() uint8 {
	b, ok := p.In.Pop()
	if !ok {
		return 0
	}
	return b
}

// WriteData implements the DATA port write: emit the byte to the sink.
// Sink errors are not surfaced to the CPU; the core has no error channel.
func (p *Peripheral) WriteData(v uint8) {
	_ = p.Sink.WriteByte(v)
}
