// Package scheduler implements the interrupt scheduler (C7): it lifts a
// host-side input event into a single Z80 maskable interrupt per
// character, for ROMs that drive the USART's interrupt-driven input
// model rather than polling.
package scheduler

import (
	"github.com/ajokela/z80-retroshield-emulator/io"
	"github.com/ajokela/z80-retroshield-emulator/irq"
)

// CPUState is the subset of cpu.Chip the scheduler needs to observe and
// drive. It is satisfied directly by *cpu.Chip: irq.Receiver supplies
// the interrupt-raising half, the two IFF accessors the observing half.
type CPUState interface {
	irq.Receiver
	IFF1Set() bool
	IFFDelaySet() bool
}

// USART reports whether the USART peripheral has ever been touched by
// the running firmware, gating whether the scheduler is active at all.
type USART interface {
	Uses8251() bool
}

// Scheduler raises one RST 38h (vector 0xFF, the IM 1 vector) per
// queued input byte, once per byte, as soon as the CPU is able to
// accept it. A latch suppresses duplicate raises until the firmware
// disables interrupts, which happens naturally once it has acknowledged
// and masked off the character it was given.
type Scheduler struct {
	cpu     CPUState
	usart   USART
	in      *io.Queue
	pending bool
}

// New creates a scheduler observing the given USART peripheral's input
// queue and driving interrupts into cpu.
func New(cpu CPUState, usart USART, in *io.Queue) *Scheduler {
	return &Scheduler{cpu: cpu, usart: usart, in: in}
}

// AfterStep is called once per cpu.Chip.Step boundary and raises an
// interrupt when all of the spec's gating conditions hold.
func (s *Scheduler) AfterStep() {
	if s.pending && !s.cpu.IFF1Set() {
		s.pending = false
	}
	if !s.usart.Uses8251() {
		return
	}
	if s.pending {
		return
	}
	if !s.in.Peek() {
		return
	}
	if !s.cpu.IFF1Set() || s.cpu.IFFDelaySet() {
		return
	}
	s.cpu.RaiseInt(0xFF)
	s.pending = true
}
