package usart_test

import (
	"testing"

	"github.com/ajokela/z80-retroshield-emulator/io"
	"github.com/ajokela/z80-retroshield-emulator/usart"
)

func TestReadDataUppercases(t *testing.T) {
	in := io.NewQueue()
	p := usart.New(in, io.FuncSink(func(byte) error { return nil }))
	in.Push('q')
	if got := p.ReadData(); got != 'Q' {
		t.Errorf("ReadData = %q, want uppercase 'Q'", got)
	}
}

func TestUses8251StartsFalse(t *testing.T) {
	p := usart.New(io.NewQueue(), io.FuncSink(func(byte) error { return nil }))
	if p.Uses8251() {
		t.Fatal("Uses8251 true before any port touched")
	}
}

func TestUses8251LatchesAndSticks(t *testing.T) {
	p := usart.New(io.NewQueue(), io.FuncSink(func(byte) error { return nil }))
	p.ReadStatus()
	if !p.Uses8251() {
		t.Fatal("Uses8251 not latched after ReadStatus")
	}
	// the latch never clears, even though nothing else touches the
	// peripheral again
	for i := 0; i < 3; i++ {
		if !p.Uses8251() {
			t.Fatalf("Uses8251 cleared on call %d", i)
		}
	}
}

func TestWriteCtrlAlsoLatches(t *testing.T) {
	p := usart.New(io.NewQueue(), io.FuncSink(func(byte) error { return nil }))
	p.WriteCtrl(0x4E)
	if !p.Uses8251() {
		t.Fatal("Uses8251 not latched after WriteCtrl")
	}
}

func TestRxRDYReflectsQueue(t *testing.T) {
	in := io.NewQueue()
	p := usart.New(in, io.FuncSink(func(byte) error { return nil }))
	if st := p.ReadStatus(); st&0x02 != 0 {
		t.Errorf("RxRDY set on empty queue: %#02x", st)
	}
	in.Push('z')
	if st := p.ReadStatus(); st&0x02 == 0 {
		t.Errorf("RxRDY not set after push: %#02x", st)
	}
}
