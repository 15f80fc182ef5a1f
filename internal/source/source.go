// Package source opens bounded readers over byte ranges of an input file.
// Every Open returns an independent reader, so workers never share a file
// offset.
package source

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/mmap"

	"github.com/weirdgiraffe/1brc-chunked/internal/chunk"
)

type Source interface {
	// Size is the total input length in bytes.
	Size() int64
	// Open returns a reader that yields exactly the bytes of r.
	Open(r chunk.Range) (io.ReadCloser, error)
}

type Kind string

const (
	KindFile Kind = "file"
	KindMmap Kind = "mmap"
)

// New stats path and returns a source of the given kind. A missing or
// unreadable file is reported here, before any range is opened.
func New(kind Kind, path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("input %q is not a regular file", path)
	}

	switch kind {
	case KindFile, "":
		return &File{path: path, size: info.Size()}, nil
	case KindMmap:
		return &Mmap{path: path, size: info.Size()}, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", kind)
	}
}

type readCloser struct {
	io.Reader
	io.Closer
}

// File reads ranges through a fresh *os.File per range.
type File struct {
	path string
	size int64
}

func (f *File) Size() int64 {
	return f.size
}

func (f *File) Open(r chunk.Range) (io.ReadCloser, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	if r.Start != 0 {
		if _, err := file.Seek(r.Start, io.SeekStart); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to seek to %d: %w", r.Start, err)
		}
	}
	return readCloser{
		Reader: io.LimitReader(file, r.Len()),
		Closer: file,
	}, nil
}

// Mmap maps the file once per range and reads it through a section reader.
type Mmap struct {
	path string
	size int64
}

func (m *Mmap) Size() int64 {
	return m.size
}

func (m *Mmap) Open(r chunk.Range) (io.ReadCloser, error) {
	ra, err := mmap.Open(m.path)
	if err != nil {
		return nil, fmt.Errorf("failed to map file: %w", err)
	}
	if r.End > int64(ra.Len()) {
		ra.Close()
		return nil, fmt.Errorf("range %v is past the end of the mapping (%d bytes)", r, ra.Len())
	}
	return readCloser{
		Reader: io.NewSectionReader(ra, r.Start, r.Len()),
		Closer: ra,
	}, nil
}
