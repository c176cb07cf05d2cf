// Command z80dasm disassembles a raw Z80 binary image, one instruction
// per line, in the same mnemonic syntax and instruction boundaries
// package cpu uses to execute it.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"

	"github.com/ajokela/z80-retroshield-emulator/disassemble"
)

var (
	inPath = flag.String("in", "", "Path to the binary image to disassemble")
	start  = flag.Uint("start", 0, "Address the image's first byte is loaded at")
	count  = flag.Uint("count", 0, "Number of instructions to print; 0 disassembles the whole image")
)

type flatImage struct {
	data []byte
	base uint16
}

func (f flatImage) Read(addr uint16) uint8 {
	off := int(addr) - int(f.base)
	if off < 0 || off >= len(f.data) {
		return 0
	}
	return f.data[off]
}

func main() {
	flag.Parse()
	if *inPath == "" {
		log.Fatal("z80dasm: -in is required")
	}
	data, err := ioutil.ReadFile(*inPath)
	if err != nil {
		log.Fatalf("z80dasm: reading image: %v", err)
	}

	img := flatImage{data: data, base: uint16(*start)}
	pc := uint16(*start)
	end := uint16(*start) + uint16(len(data))
	n := 0
	for pc < end {
		if *count != 0 && uint(n) >= *count {
			break
		}
		text, length := disassemble.Step(pc, img)
		fmt.Printf("%04X: %s\n", pc, text)
		pc += uint16(length)
		n++
	}
}
