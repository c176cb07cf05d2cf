package acia_test

import (
	"testing"

	"github.com/ajokela/z80-retroshield-emulator/acia"
	"github.com/ajokela/z80-retroshield-emulator/io"
)

func TestReadStatusReflectsQueue(t *testing.T) {
	in := io.NewQueue()
	p := acia.New(in, io.FuncSink(func(byte) error { return nil }))

	if st := p.ReadStatus(); st&0x01 != 0 {
		t.Errorf("RDRF set on empty queue: %#02x", st)
	}
	if st := p.ReadStatus(); st&0x02 == 0 {
		t.Errorf("TDRE not always set: %#02x", st)
	}

	in.Push('Q')
	if st := p.ReadStatus(); st&0x01 == 0 {
		t.Errorf("RDRF not set after push: %#02x", st)
	}
}

func TestReadDataDoesNotUppercase(t *testing.T) {
	in := io.NewQueue()
	p := acia.New(in, io.FuncSink(func(byte) error { return nil }))
	in.Push('q')
	if got := p.ReadData(); got != 'q' {
		t.Errorf("ReadData = %q, want lowercase 'q' unchanged", got)
	}
}

func TestReadDataEmptyReturnsZero(t *testing.T) {
	p := acia.New(io.NewQueue(), io.FuncSink(func(byte) error { return nil }))
	if got := p.ReadData(); got != 0 {
		t.Errorf("ReadData on empty queue = %#02x, want 0", got)
	}
}

func TestWriteDataEmitsToSink(t *testing.T) {
	var got []byte
	sink := io.FuncSink(func(b byte) error {
		got = append(got, b)
		return nil
	})
	p := acia.New(io.NewQueue(), sink)
	p.WriteData('A')
	p.WriteData('B')
	if string(got) != "AB" {
		t.Errorf("sink received %q, want \"AB\"", got)
	}
}
