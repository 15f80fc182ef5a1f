// Package buffer implements a byte buffer that can be topped up to capacity
// without discarding the bytes that have not been read yet.
package buffer

import "io"

// DefaultSize is the capacity used when New is given a non-positive size.
const DefaultSize = 64 * 1024

// Buffer is a bounded byte region with a read cursor and a filled marker.
//
// The backing slice doubles as the bookkeeping for initialized memory: its
// length is the high-water mark of bytes ever written and its capacity is the
// buffer capacity. So 0 <= read <= filled <= len(b) <= cap(b) always holds,
// and only b[read:filled] is valid unread data.
type Buffer struct {
	b      []byte
	read   int
	filled int
}

func New(size int) *Buffer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Buffer{b: make([]byte, 0, size)}
}

// View returns the unread bytes. The slice aliases the buffer and is only
// valid until the next Fill or Compact.
func (b *Buffer) View() []byte {
	return b.b[b.read:b.filled]
}

func (b *Buffer) Len() int {
	return b.filled - b.read
}

func (b *Buffer) Cap() int {
	return cap(b.b)
}

// Initialized returns how many bytes at the start of the buffer have ever
// been written to.
func (b *Buffer) Initialized() int {
	return len(b.b)
}

// Consume marks n unread bytes as read. It never moves past the filled
// region.
func (b *Buffer) Consume(n int) {
	if n <= 0 {
		return
	}
	b.read = min(b.read+n, b.filled)
}

// Compact moves the unread bytes to the front of the buffer so the next Fill
// can use the whole remaining capacity.
func (b *Buffer) Compact() {
	if b.read == 0 {
		return
	}
	n := copy(b.b, b.b[b.read:b.filled])
	b.read = 0
	b.filled = n
}

// Fill appends bytes read from r after the filled region and returns how many
// were appended. Unread bytes are left untouched. A zero count means r is
// exhausted. When the filled region already reaches capacity the buffer
// doubles first, so a record larger than the buffer is never mistaken for the
// end of input. Errors other than io.EOF are returned unchanged.
func (b *Buffer) Fill(r io.Reader) (int, error) {
	if b.filled == cap(b.b) {
		b.grow()
	}

	n, err := io.ReadAtLeast(r, b.b[b.filled:cap(b.b)], 1)
	b.filled += n
	if b.filled > len(b.b) {
		b.b = b.b[:b.filled]
	}
	if err == io.EOF {
		return n, nil
	}
	return n, err
}

func (b *Buffer) grow() {
	size := 2 * cap(b.b)
	if size == 0 {
		size = DefaultSize
	}
	nb := make([]byte, b.Len(), size)
	copy(nb, b.View())
	b.b = nb
	b.read = 0
	b.filled = len(nb)
}
