package flash

import (
	"fmt"
	"io"
)

// MemDevice is an in-memory Device holding a full flash image, initialized
// to the erased state. It is used by tests, examples and host tools.
type MemDevice struct {
	buf []byte
}

// NewMemDevice returns an erased in-memory device of the given size.
func NewMemDevice(size int) *MemDevice {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = ErasedByte
	}
	return &MemDevice{buf: buf}
}

// Size returns the device size in bytes.
func (d *MemDevice) Size() int { return len(d.buf) }

// Bytes returns the backing image. The slice aliases device storage.
func (d *MemDevice) Bytes() []byte { return d.buf }

func (d *MemDevice) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(d.buf)) {
		return 0, fmt.Errorf("read at 0x%x: outside device of %d bytes", off, len(d.buf))
	}
	n := copy(p, d.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (d *MemDevice) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(d.buf)) {
		return 0, fmt.Errorf("write %d bytes at 0x%x: outside device of %d bytes", len(p), off, len(d.buf))
	}
	return copy(d.buf[off:], p), nil
}
