package scheduler_test

import (
	"testing"

	"github.com/ajokela/z80-retroshield-emulator/io"
	"github.com/ajokela/z80-retroshield-emulator/scheduler"
)

// fakeCPU is a minimal scheduler.CPUState double driven directly by the
// test, independent of the real cpu package's EI/DI semantics.
type fakeCPU struct {
	iff1     bool
	iffDelay bool
	raised   []uint8
}

func (c *fakeCPU) RaiseInt(v uint8)  { c.raised = append(c.raised, v) }
func (c *fakeCPU) RaiseNMI()         {}
func (c *fakeCPU) IFF1Set() bool     { return c.iff1 }
func (c *fakeCPU) IFFDelaySet() bool { return c.iffDelay }

type fakeUSART struct{ used bool }

func (u *fakeUSART) Uses8251() bool { return u.used }

func TestNoInterruptWhileUSARTNeverTouched(t *testing.T) {
	cpu := &fakeCPU{iff1: true}
	u := &fakeUSART{used: false}
	in := io.NewQueue()
	in.Push('x')
	s := scheduler.New(cpu, u, in)

	s.AfterStep()
	if len(cpu.raised) != 0 {
		t.Errorf("interrupt raised though USART was never touched: %v", cpu.raised)
	}
}

func TestNoInterruptWithInterruptsDisabled(t *testing.T) {
	cpu := &fakeCPU{iff1: false}
	u := &fakeUSART{used: true}
	in := io.NewQueue()
	in.Push('x')
	s := scheduler.New(cpu, u, in)

	s.AfterStep()
	if len(cpu.raised) != 0 {
		t.Errorf("interrupt raised though IFF1 is clear: %v", cpu.raised)
	}
}

func TestNoInterruptDuringIFFDelay(t *testing.T) {
	cpu := &fakeCPU{iff1: true, iffDelay: true}
	u := &fakeUSART{used: true}
	in := io.NewQueue()
	in.Push('x')
	s := scheduler.New(cpu, u, in)

	s.AfterStep()
	if len(cpu.raised) != 0 {
		t.Errorf("interrupt raised during the EI one-instruction delay: %v", cpu.raised)
	}
}

// TestOneInterruptPerEnqueueNoDuplicate reproduces the property from
// spec.md §8: one RaiseInt per queued byte, no duplicate raise before the
// firmware disables interrupts to acknowledge it.
func TestOneInterruptPerEnqueueNoDuplicate(t *testing.T) {
	cpu := &fakeCPU{iff1: true}
	u := &fakeUSART{used: true}
	in := io.NewQueue()
	in.Push('x')
	s := scheduler.New(cpu, u, in)

	s.AfterStep()
	if len(cpu.raised) != 1 {
		t.Fatalf("raised = %v, want exactly one interrupt", cpu.raised)
	}

	// firmware hasn't acknowledged yet (IFF1 still set): must not raise again
	s.AfterStep()
	s.AfterStep()
	if len(cpu.raised) != 1 {
		t.Fatalf("raised = %v, duplicate interrupt before acknowledgment", cpu.raised)
	}

	// firmware disables interrupts to service it: its ISR reads (and
	// thereby pops) the byte off the USART data port, then re-enables
	cpu.iff1 = false
	s.AfterStep()
	in.Pop()
	cpu.iff1 = true
	s.AfterStep()
	if len(cpu.raised) != 1 {
		t.Fatalf("raised = %v, want still one (byte already consumed)", cpu.raised)
	}

	// a second byte arrives: now a second interrupt is expected
	in.Push('y')
	s.AfterStep()
	if len(cpu.raised) != 2 {
		t.Fatalf("raised = %v, want a second interrupt for the new byte", cpu.raised)
	}
}

func TestNoInterruptOnEmptyQueue(t *testing.T) {
	cpu := &fakeCPU{iff1: true}
	u := &fakeUSART{used: true}
	in := io.NewQueue()
	s := scheduler.New(cpu, u, in)

	s.AfterStep()
	if len(cpu.raised) != 0 {
		t.Errorf("interrupt raised on an empty queue: %v", cpu.raised)
	}
}
