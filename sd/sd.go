// Package sd models the SD peripheral (C6): a byte-streamed file and
// directory device driven by six command/data ports and an ASCII
// filename protocol.
package sd

import (
	"io"

	"github.com/spf13/afero"
)

// Command byte values accepted on the command port.
const (
	CmdOpenRead = iota
	CmdCreate
	CmdOpenAppend
	CmdSeekStart
	CmdClose
	CmdListDir
	CmdOpenReadWrite
	CmdSeekToByte
)

// Status register bits.
const (
	statusReady = 0x01
	statusError = 0x02
	statusData  = 0x04
)

const maxFilename = 64

// Peripheral is the SD state machine. At most one file handle and one
// directory listing are open at a time; opening either closes the
// other's class of handle first.
type Peripheral struct {
	backend StorageBackend

	filename    []byte
	fnameClosed bool

	seekLo, seekHi uint8

	file afero.File

	dirEntries []string
	dirIdx     int
	dirBuf     []byte
	dirOpen    bool

	lastErr bool
}

// New creates an SD peripheral against the given storage backend.
func New(backend StorageBackend) *Peripheral {
	return &Peripheral{backend: backend}
}

// WriteFilename implements the FNAME port write: append to the bounded
// filename buffer; a zero byte terminates and finalises the name.
// Buffer overflow silently truncates at the penultimate byte.
func (p *Peripheral) WriteFilename(b uint8) {
	if p.fnameClosed {
		p.filename = p.filename[:0]
		p.fnameClosed = false
	}
	if b == 0 {
		p.fnameClosed = true
		return
	}
	if len(p.filename) >= maxFilename-1 {
		p.filename[maxFilename-2] = b
		return
	}
	p.filename = append(p.filename, b)
}

func (p *Peripheral) name() string {
	return string(p.filename)
}

// WriteSeekLo implements the SEEK LO port write.
func (p *Peripheral) WriteSeekLo(b uint8) { p.seekLo = b }

// WriteSeekHi implements the SEEK HI port write.
func (p *Peripheral) WriteSeekHi(b uint8) { p.seekHi = b }

func (p *Peripheral) seekPos() int64 {
	return int64(uint16(p.seekHi)<<8 | uint16(p.seekLo))
}

// WriteCommand implements the CMD port write, dispatching one of the
// eight supported commands.
func (p *Peripheral) WriteCommand(cmd uint8) {
	switch cmd {
	case CmdOpenRead:
		p.closeFile()
		p.openFile(func() (afero.File, error) { return p.backend.OpenRead(p.name()) })
	case CmdCreate:
		p.closeFile()
		p.openFile(func() (afero.File, error) { return p.backend.OpenWriteTrunc(p.name()) })
	case CmdOpenAppend:
		p.closeFile()
		p.openFile(func() (afero.File, error) { return p.backend.OpenAppend(p.name()) })
	case CmdSeekStart:
		p.lastErr = false
		if p.file != nil {
			if _, err := p.file.Seek(0, io.SeekStart); err != nil {
				p.lastErr = true
			}
		}
	case CmdClose:
		p.closeFile()
		p.closeDir()
		p.lastErr = false
	case CmdListDir:
		p.closeFile()
		p.openDir()
	case CmdOpenReadWrite:
		p.closeFile()
		p.openFile(func() (afero.File, error) { return p.backend.OpenReadWrite(p.name()) })
	case CmdSeekToByte:
		p.lastErr = false
		if p.file != nil {
			if _, err := p.file.Seek(p.seekPos(), io.SeekStart); err != nil {
				p.lastErr = true
			}
		}
	}
}

func (p *Peripheral) openFile(open func() (afero.File, error)) {
	p.closeDir()
	f, err := open()
	if err != nil {
		p.lastErr = true
		p.file = nil
		return
	}
	p.lastErr = false
	p.file = f
}

func (p *Peripheral) closeFile() {
	if p.file != nil {
		p.file.Close()
		p.file = nil
	}
}

func (p *Peripheral) openDir() {
	p.closeFile()
	names, err := p.backend.List()
	if err != nil {
		p.lastErr = true
		p.dirOpen = false
		return
	}
	p.lastErr = false
	p.dirEntries = names
	p.dirIdx = 0
	p.dirOpen = true
	p.dirBuf = nil
	p.fillDirBuf()
}

func (p *Peripheral) closeDir() {
	p.dirOpen = false
	p.dirEntries = nil
	p.dirBuf = nil
}

// fillDirBuf advances to the next non-dot directory entry and loads its
// "NAME\r\n" text into dirBuf, or closes the directory if exhausted.
func (p *Peripheral) fillDirBuf() {
	for p.dirIdx < len(p.dirEntries) {
		name := p.dirEntries[p.dirIdx]
		p.dirIdx++
		if name == "." || name == ".." {
			continue
		}
		p.dirBuf = append([]byte(name), '\r', '\n')
		return
	}
	p.closeDir()
}

// ReadStatus implements the STATUS port read.
func (p *Peripheral) ReadStatus() uint8 {
	st := uint8(statusReady)
	if p.lastErr {
		st |= statusError
	}
	if p.file != nil || (p.dirOpen && len(p.dirBuf) > 0) {
		st |= statusData
	}
	return st
}

// ReadData implements the DATA port read.
func (p *Peripheral) ReadData() uint8 {
	if p.file != nil {
		buf := make([]byte, 1)
		n, err := p.file.Read(buf)
		if n == 0 || err != nil {
			p.closeFile()
			return 0
		}
		return buf[0]
	}
	if p.dirOpen && len(p.dirBuf) > 0 {
		b := p.dirBuf[0]
		p.dirBuf = p.dirBuf[1:]
		if len(p.dirBuf) == 0 {
			p.fillDirBuf()
		}
		return b
	}
	return 0
}

// WriteData implements the DATA port write: append the byte to the open
// file at its current position.
func (p *Peripheral) WriteData(b uint8) {
	if p.file == nil {
		return
	}
	if _, err := p.file.Write([]byte{b}); err != nil {
		p.lastErr = true
	}
}
