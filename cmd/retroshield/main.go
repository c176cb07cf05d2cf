// Command retroshield is a headless front end for the Z80 RetroShield
// core: it loads a ROM image, wires memory and peripherals onto a bus,
// and drives the CPU until it halts with interrupts disabled or the
// -max_steps budget runs out, printing ACIA/USART output to stdout and
// feeding stdin into both the USART and the ACIA input queues. Stdin is
// read in whatever mode the shell leaves the terminal in; it is not
// switched to raw mode.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/ajokela/z80-retroshield-emulator/acia"
	"github.com/ajokela/z80-retroshield-emulator/bus"
	"github.com/ajokela/z80-retroshield-emulator/cpu"
	"github.com/ajokela/z80-retroshield-emulator/io"
	"github.com/ajokela/z80-retroshield-emulator/memory"
	"github.com/ajokela/z80-retroshield-emulator/scheduler"
	"github.com/ajokela/z80-retroshield-emulator/sd"
	"github.com/ajokela/z80-retroshield-emulator/usart"
)

var (
	romPath    = flag.String("rom", "", "Path to the ROM image to load at address 0")
	romCeiling = flag.Int("rom_ceiling", 0x2000, "Address below which writes are dropped")
	sdDir      = flag.String("sd_dir", "", "Directory to expose as the SD peripheral's storage backend; empty disables persistence across runs")
	maxSteps   = flag.Uint64("max_steps", 0, "Stop after this many CPU steps; 0 runs until halted with interrupts disabled")
)

func main() {
	flag.Parse()

	if *romPath == "" {
		log.Fatal("retroshield: -rom is required")
	}
	img, err := ioutil.ReadFile(*romPath)
	if err != nil {
		log.Fatalf("retroshield: reading rom: %v", err)
	}

	mem, err := memory.New(0)
	if err != nil {
		log.Fatalf("retroshield: creating memory: %v", err)
	}
	mem.PowerOn()
	if err := mem.LoadROM(img, *romCeiling); err != nil {
		log.Fatalf("retroshield: loading rom: %v", err)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	sink := io.FuncSink(func(b byte) error {
		_, err := out.Write([]byte{b})
		out.Flush()
		return err
	})

	usartIn := io.NewQueue()
	aciaIn := io.NewQueue()
	usartPeriph := usart.New(usartIn, sink)
	aciaPeriph := acia.New(aciaIn, sink)

	backend := sd.MemBackend()
	if *sdDir != "" {
		backend = sd.OSBackend(*sdDir)
	}
	sdPeriph := sd.New(backend)

	b := bus.New(mem, usartPeriph, aciaPeriph, sdPeriph)
	chip, err := cpu.New(cpu.BusHooks{
		ReadByte:  b.ReadByte,
		WriteByte: b.WriteByte,
		PortIn:    b.PortIn,
		PortOut:   b.PortOut,
	})
	if err != nil {
		log.Fatalf("retroshield: %v", err)
	}

	sched := scheduler.New(chip, usartPeriph, usartIn)

	stdinReader := bufio.NewReader(os.Stdin)
	go feedStdin(stdinReader, usartIn, aciaIn)

	var steps uint64
	for {
		chip.Step()
		sched.AfterStep()
		steps++
		if chip.Halted && !chip.IFF1Set() {
			break
		}
		if *maxSteps != 0 && steps >= *maxSteps {
			break
		}
	}
	fmt.Fprintf(os.Stderr, "retroshield: stopped after %d steps, %d cycles\n", steps, chip.Cyc)
}

// feedStdin copies host keystrokes into both peripherals' input queues;
// only the one actually driven by the running firmware has any observable
// effect, since the other's queue is simply never drained.
func feedStdin(r *bufio.Reader, usartIn, aciaIn *io.Queue) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return
		}
		usartIn.Push(b)
		aciaIn.Push(b)
	}
}
