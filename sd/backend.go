package sd

import (
	"io"
	"os"
	"sort"

	"github.com/spf13/afero"
)

// StorageBackend is the abstract storage contract C6 is built against,
// per spec.md's external-interfaces section: a small set of open modes
// plus directory listing. Everything past open() reuses afero.File's own
// Read/Write/Seek/Close rather than re-wrapping it, since afero already
// gives every implementation (real filesystem, in-memory, a denying
// stub) that surface for free.
type StorageBackend interface {
	OpenRead(name string) (afero.File, error)
	OpenWriteTrunc(name string) (afero.File, error)
	OpenReadWrite(name string) (afero.File, error)
	OpenAppend(name string) (afero.File, error)
	List() ([]string, error)
}

// aferoBackend adapts any afero.Fs to StorageBackend.
type aferoBackend struct {
	fs afero.Fs
}

// OSBackend returns a storage backend rooted at dir on the host
// filesystem; paths outside dir are unreachable.
func OSBackend(dir string) StorageBackend {
	return &aferoBackend{fs: afero.NewBasePathFs(afero.NewOsFs(), dir)}
}

// MemBackend returns an in-memory storage backend, for tests and for
// ROMs that don't need file persistence across runs.
func MemBackend() StorageBackend {
	return &aferoBackend{fs: afero.NewMemMapFs()}
}

func (b *aferoBackend) OpenRead(name string) (afero.File, error) {
	return b.fs.Open(name)
}

func (b *aferoBackend) OpenWriteTrunc(name string) (afero.File, error) {
	return b.fs.Create(name)
}

func (b *aferoBackend) OpenReadWrite(name string) (afero.File, error) {
	return b.fs.OpenFile(name, os.O_RDWR|os.O_CREATE, 0o644)
}

func (b *aferoBackend) OpenAppend(name string) (afero.File, error) {
	f, err := b.fs.OpenFile(name, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func (b *aferoBackend) List() ([]string, error) {
	infos, err := afero.ReadDir(b.fs, ".")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, fi := range infos {
		names = append(names, fi.Name())
	}
	sort.Strings(names)
	return names, nil
}
